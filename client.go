package sweater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the http api of a running sweater server.
type Client interface {
	// Apply executes command blocks, atomically when atomic is set.
	Apply(ctx context.Context, input string, atomic bool) ([]Result, error)
	// Graph returns the graphviz export of the whole graph.
	Graph(ctx context.Context) (string, error)
	// Get returns the thesis ref names, by id or alias.
	Get(ctx context.Context, ref string) (*Thesis, error)
	// Tagged returns the ids of the theses carrying tag.
	Tagged(ctx context.Context, tag string) ([]string, error)
}

type Result struct {
	Block   int      `json:"block"`
	Op      string   `json:"op"`
	ID      string   `json:"id"`
	Existed bool     `json:"existed,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

type Text struct {
	Parts      []string `json:"parts"`
	References []string `json:"references"`
}

type Relation struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

type Content struct {
	Text     *Text     `json:"text,omitempty"`
	Relation *Relation `json:"relation,omitempty"`
}

type Thesis struct {
	ID      string   `json:"id"`
	Alias   string   `json:"alias,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Content Content  `json:"content"`
}

// Error is a failed api call. Results holds the blocks applied before the failure.
type Error struct {
	Status  int
	Message string
	Results []Result
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", http.StatusText(e.Status), e.Message)
}

type client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the server at address, e.g. http://localhost:4040.
func NewClient(address string) (Client, error) {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}

	return &client{
		base: strings.TrimSuffix(u.String(), "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *client) Apply(ctx context.Context, input string, atomic bool) ([]Result, error) {
	endpoint := c.base + "/v1/commands?atomic=" + strconv.FormatBool(atomic)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(input))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	var res struct {
		Results []Result `json:"results"`
		Error   string   `json:"error"`
	}
	status, err := c.do(req, &res)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return res.Results, &Error{Status: status, Message: res.Error, Results: res.Results}
	}

	return res.Results, nil
}

func (c *client) Graph(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/graph", nil)
	if err != nil {
		return "", err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", decodeError(res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (c *client) Get(ctx context.Context, ref string) (*Thesis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/theses/"+url.PathEscape(ref), nil)
	if err != nil {
		return nil, err
	}

	thesis := &Thesis{}
	if err := c.get(req, thesis); err != nil {
		return nil, err
	}

	return thesis, nil
}

func (c *client) Tagged(ctx context.Context, tag string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/tags/"+url.PathEscape(tag), nil)
	if err != nil {
		return nil, err
	}

	var res struct {
		IDs []string `json:"ids"`
	}
	if err := c.get(req, &res); err != nil {
		return nil, err
	}

	return res.IDs, nil
}

func (c *client) get(req *http.Request, v any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decodeError(res)
	}

	return json.NewDecoder(res.Body).Decode(v)
}

func (c *client) do(req *http.Request, v any) (int, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return res.StatusCode, fmt.Errorf("decode response: %w", err)
	}

	return res.StatusCode, nil
}

func decodeError(res *http.Response) error {
	var failure struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(res.Body).Decode(&failure)

	return &Error{Status: res.StatusCode, Message: failure.Error}
}
