// Package txn applies several record updates as one logical unit on top of
// a store that has no transactions of its own.
package txn

import (
	"errors"
	"fmt"
	"sync"
)

// Step is one (check, apply) pair. Check must not mutate anything. Undo is
// optional and only runs when a later step fails to apply.
type Step struct {
	Name  string
	Check func() error
	Apply func() error
	Undo  func() error
}

// Commit runs every Check before any Apply. If all checks pass the steps are
// applied in order; when one fails, the steps already applied are undone in
// reverse and the apply error is returned.
func Commit(steps ...Step) error {
	for _, step := range steps {
		if step.Check == nil {
			continue
		}
		if err := step.Check(); err != nil {
			return err
		}
	}

	for i, step := range steps {
		if step.Apply == nil {
			continue
		}
		if err := step.Apply(); err != nil {
			if undoErr := rollback(steps[:i]); undoErr != nil {
				return errors.Join(err, undoErr)
			}
			return err
		}
	}
	return nil
}

func rollback(applied []Step) error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		step := applied[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(); err != nil {
			errs = append(errs, fmt.Errorf("undo %s: %w", step.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Serial runs ledger operations one at a time for the whole process.
type Serial struct {
	mu sync.Mutex
}

func (s *Serial) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
