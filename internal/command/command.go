package command

import (
	"fmt"

	"github.com/emrgen/sweater/internal/domain"
)

// Op is the operation a command block asks for.
type Op string

const (
	OpAdd      Op = "add"
	OpRemove   Op = "remove"
	OpTag      Op = "tag"
	OpUntag    Op = "untag"
	OpSetAlias Op = "alias"
)

// Command is one parsed command block. References are kept as written, they
// are resolved when the command is executed.
type Command struct {
	Op    Op
	Block int

	// Alias is the optional alias of an added thesis, or the new alias for OpSetAlias.
	Alias string

	// Text or Relation is set for OpAdd.
	Text     *domain.TextSource
	Relation *domain.RelationSource

	// Ref is the target of OpRemove, OpTag, OpUntag and OpSetAlias.
	Ref  string
	Tags []string
}

func (c Command) String() string {
	switch c.Op {
	case OpAdd:
		if c.Relation != nil {
			return fmt.Sprintf("add relation %s %s %s", c.Relation.From, c.Relation.Kind, c.Relation.To)
		}
		if c.Text != nil {
			return fmt.Sprintf("add text %q", c.Text.String())
		}
	case OpTag, OpUntag:
		return fmt.Sprintf("%s %s %v", c.Op, c.Ref, c.Tags)
	case OpSetAlias:
		return fmt.Sprintf("alias %s as %s", c.Ref, c.Alias)
	}
	return fmt.Sprintf("%s %s", c.Op, c.Ref)
}
