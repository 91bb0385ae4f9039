package command

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/emrgen/sweater/internal/domain"
)

var (
	blockSeparator = regexp.MustCompile(`\n{2,}`)
	lineEndings    = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	firstLine      = regexp.MustCompile(`^ *([+\-#^@])(?: +(\S+))? *$`)
	referenceRegex = regexp.MustCompile(`^[^\s\[\]]+$`)
)

// Parser reads command blocks one at a time. Blocks are separated by two or
// more line breaks, each of which may be \n, \r\n or \r.
type Parser struct {
	blocks []string
	next   int
}

func NewParser(input string) *Parser {
	var blocks []string
	for _, block := range blockSeparator.Split(lineEndings.Replace(input), -1) {
		if block = strings.TrimSpace(block); block != "" {
			blocks = append(blocks, block)
		}
	}

	return &Parser{blocks: blocks}
}

// Next parses the next block, returning io.EOF after the last one.
func (p *Parser) Next() (Command, error) {
	if p.next >= len(p.blocks) {
		return Command{}, io.EOF
	}

	p.next++
	return parseBlock(p.next, p.blocks[p.next-1])
}

// Len returns the number of blocks in the input.
func (p *Parser) Len() int {
	return len(p.blocks)
}

// Parse parses every block of input, failing on the first malformed one.
func Parse(input string) ([]Command, error) {
	parser := NewParser(input)
	commands := make([]Command, 0, parser.Len())
	for {
		cmd, err := parser.Next()
		if err == io.EOF {
			return commands, nil
		}
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}
}

func parseBlock(block int, text string) (Command, error) {
	lines := strings.Split(text, "\n")
	fail := func(line int, err error) (Command, error) {
		return Command{}, &ParseError{Block: block, Line: line, Text: lines[line-1], Err: err}
	}

	match := firstLine.FindStringSubmatch(lines[0])
	if match == nil {
		return fail(1, ErrUnknownOperation)
	}
	op, alias := match[1], match[2]
	args := lines[1:]
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}

	if alias != "" {
		if err := domain.ValidateAlias(alias); err != nil {
			return fail(1, err)
		}
		if op != "+" && op != "@" {
			return fail(1, fmt.Errorf("%w: %q takes no alias", ErrUnexpectedAlias, op))
		}
	}

	cmd := Command{Block: block, Alias: alias}

	switch {
	case op == "+" && len(args) == 1:
		src, err := domain.ParseText(args[0])
		if err == nil {
			err = src.Validate()
		}
		if err == nil {
			err = validateReferences(src.Tokens...)
		}
		if err != nil {
			return fail(2, err)
		}
		cmd.Op = OpAdd
		cmd.Text = &src

	case op == "+" && len(args) == 3:
		if err := validateReferences(args[0]); err != nil {
			return fail(2, err)
		}
		if err := domain.ValidateRelationKind(args[1]); err != nil {
			return fail(3, err)
		}
		if err := validateReferences(args[2]); err != nil {
			return fail(4, err)
		}
		cmd.Op = OpAdd
		cmd.Relation = &domain.RelationSource{From: args[0], Kind: args[1], To: args[2]}

	case op == "-" && len(args) == 1:
		if err := validateReferences(args[0]); err != nil {
			return fail(2, err)
		}
		cmd.Op = OpRemove
		cmd.Ref = args[0]

	case (op == "#" || op == "^") && len(args) >= 2:
		if err := validateReferences(args[0]); err != nil {
			return fail(2, err)
		}
		for i, tag := range args[1:] {
			if err := domain.ValidateTag(tag); err != nil {
				return fail(i+3, err)
			}
		}
		cmd.Op = OpTag
		if op == "^" {
			cmd.Op = OpUntag
		}
		cmd.Ref = args[0]
		cmd.Tags = args[1:]

	case op == "@" && len(args) == 1:
		if alias == "" {
			return fail(1, ErrMissingAlias)
		}
		if err := validateReferences(args[0]); err != nil {
			return fail(2, err)
		}
		cmd.Op = OpSetAlias
		cmd.Ref = args[0]

	default:
		return fail(1, fmt.Errorf("%w: %q can not be followed by %d lines, "+
			"expected '+' with 1 line for text or 3 lines for relation, "+
			"'-' with 1 line, '#' and '^' with 2 or more lines, '@' with 1 line",
			ErrLineCount, op, len(args)))
	}

	return cmd, nil
}

func validateReferences(tokens ...string) error {
	for _, token := range tokens {
		if !referenceRegex.MatchString(token) {
			return fmt.Errorf("%w: %q must be an identifier or an alias", ErrMalformedReference, token)
		}
	}
	return nil
}
