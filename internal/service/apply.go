package service

import (
	"context"
	"fmt"
	"io"

	"github.com/emrgen/sweater/internal/command"
	"github.com/emrgen/sweater/internal/oid"
	"github.com/emrgen/sweater/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of one executed command.
type Result struct {
	Block   int        `json:"block"`
	Op      command.Op `json:"op"`
	ID      oid.ID     `json:"id"`
	Existed bool       `json:"existed,omitempty"`
	Removed []oid.ID   `json:"removed,omitempty"`
}

// Execute runs one parsed command in its own transaction.
func (s *ThesisService) Execute(ctx context.Context, cmd command.Command) (*Result, error) {
	var result *Result
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		result, err = s.execute(ctx, tx, cmd)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	return result, nil
}

// Apply parses input and executes its blocks in order, each in its own
// transaction. It stops at the first failing block, the blocks before it stay
// committed and their results are returned with the error.
func (s *ThesisService) Apply(ctx context.Context, input string) ([]*Result, error) {
	log := logrus.WithField("batch", uuid.New().String())
	parser := command.NewParser(input)
	results := make([]*Result, 0, parser.Len())

	for {
		cmd, err := parser.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warnf("apply stopped after %d blocks: %v", len(results), err)
			return results, err
		}

		result, err := s.Execute(ctx, cmd)
		if err != nil {
			log.Warnf("apply stopped at block %d: %v", cmd.Block, err)
			return results, fmt.Errorf("block %d: %w", cmd.Block, err)
		}
		results = append(results, result)
	}

	log.Infof("applied %d blocks", len(results))

	return results, nil
}

// ApplyAtomic parses the whole input first and executes every block in a
// single transaction. Any failure rolls back the whole input.
func (s *ThesisService) ApplyAtomic(ctx context.Context, input string) ([]*Result, error) {
	log := logrus.WithField("batch", uuid.New().String())

	commands, err := command.Parse(input)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(commands))
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		for _, cmd := range commands {
			result, err := s.execute(ctx, tx, cmd)
			if err != nil {
				return fmt.Errorf("block %d: %w", cmd.Block, err)
			}
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		log.Warnf("atomic apply rolled back: %v", err)
		return nil, classify(err)
	}

	log.Infof("applied %d blocks atomically", len(results))

	return results, nil
}

func (s *ThesisService) execute(ctx context.Context, tx store.Store, cmd command.Command) (*Result, error) {
	result := &Result{Block: cmd.Block, Op: cmd.Op}

	var err error
	switch {
	case cmd.Op == command.OpAdd && cmd.Text != nil:
		result.ID, result.Existed, err = s.addText(ctx, tx, cmd.Alias, *cmd.Text)
	case cmd.Op == command.OpAdd && cmd.Relation != nil:
		result.ID, result.Existed, err = s.addRelation(ctx, tx, cmd.Alias, *cmd.Relation)
	case cmd.Op == command.OpRemove:
		result.Removed, err = s.remove(ctx, tx, cmd.Ref)
		if err == nil {
			result.ID = result.Removed[0]
		}
	case cmd.Op == command.OpTag:
		result.ID, err = s.tag(ctx, tx, cmd.Ref, cmd.Tags, true)
	case cmd.Op == command.OpUntag:
		result.ID, err = s.tag(ctx, tx, cmd.Ref, cmd.Tags, false)
	case cmd.Op == command.OpSetAlias:
		result.ID, err = s.setAlias(ctx, tx, cmd.Alias, cmd.Ref)
	default:
		return nil, &command.ParseError{Block: cmd.Block, Line: 1, Text: cmd.String(), Err: command.ErrUnknownOperation}
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}
