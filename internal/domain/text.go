package domain

import (
	"fmt"
	"strings"

	"github.com/emrgen/sweater/internal/oid"
)

const (
	referenceOpen  = '['
	referenceClose = ']'
)

// TextSource is text as written by a user: raw parts around reference tokens.
// Tokens are identifiers or aliases that still have to be resolved.
type TextSource struct {
	Parts  []string
	Tokens []string
}

// ParseText splits raw text into parts and bracketed reference tokens.
func ParseText(raw string) (TextSource, error) {
	var src TextSource
	var part strings.Builder

	rest := raw
	for {
		open := strings.IndexAny(rest, "[]")
		if open < 0 {
			part.WriteString(rest)
			break
		}
		if rest[open] == referenceClose {
			return TextSource{}, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidText, referenceClose, raw)
		}

		part.WriteString(rest[:open])
		rest = rest[open+1:]

		end := strings.IndexAny(rest, "[]")
		if end < 0 || rest[end] == referenceOpen {
			return TextSource{}, fmt.Errorf("%w: unterminated reference in %q", ErrInvalidText, raw)
		}

		token := strings.TrimSpace(rest[:end])
		if token == "" {
			return TextSource{}, fmt.Errorf("%w: empty reference in %q", ErrInvalidText, raw)
		}

		src.Parts = append(src.Parts, part.String())
		src.Tokens = append(src.Tokens, token)
		part.Reset()
		rest = rest[end+1:]
	}
	src.Parts = append(src.Parts, part.String())

	return src, nil
}

// Validate checks the raw parts without resolving references.
func (s TextSource) Validate() error {
	if len(s.Parts) != len(s.Tokens)+1 {
		return fmt.Errorf("%w: %d parts for %d references", ErrInvalidText, len(s.Parts), len(s.Tokens))
	}
	return validateTextParts(s.Parts)
}

// String writes the source back in its bracketed form.
func (s TextSource) String() string {
	return compose(s.Parts, s.Tokens)
}

// Text is stored text content. References are always resolved identifiers,
// so renaming an alias never changes the identity of a text.
type Text struct {
	Parts      []string `json:"parts"`
	References []oid.ID `json:"references"`
}

func (t Text) Validate() error {
	if len(t.Parts) != len(t.References)+1 {
		return fmt.Errorf("%w: %d parts for %d references", ErrInvalidText, len(t.Parts), len(t.References))
	}
	return validateTextParts(t.Parts)
}

// Composed is the canonical text form the identity is derived from.
func (t Text) Composed() string {
	return compose(t.Parts, oid.Strings(t.References))
}

// Display composes the text with every reference rendered by name.
func (t Text) Display(name func(oid.ID) string) string {
	names := make([]string, 0, len(t.References))
	for _, ref := range t.References {
		names = append(names, name(ref))
	}
	return compose(t.Parts, names)
}

func (t Text) ID() oid.ID {
	return oid.Sum([]byte(t.Composed()))
}

func compose(parts []string, tokens []string) string {
	var b strings.Builder
	for i, part := range parts {
		b.WriteString(part)
		if i < len(tokens) {
			b.WriteRune(referenceOpen)
			b.WriteString(tokens[i])
			b.WriteRune(referenceClose)
		}
	}
	return b.String()
}
