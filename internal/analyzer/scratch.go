package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Scratch is a temporary script file owned by one fragment analysis. While it
// is held, an interrupt cancels the returned context so the analyzer is
// killed and the file is removed before the signal propagates.
type Scratch struct {
	Path string

	stop context.CancelFunc
	once sync.Once
	err  error
}

// Acquire reserves path and installs the interrupt handler. Callers must
// call Release on every exit path.
func Acquire(ctx context.Context, path string) (*Scratch, context.Context, error) {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	s := &Scratch{Path: path, stop: stop}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		stop()
		return nil, nil, fmt.Errorf("clearing scratch file %s: %w", path, err)
	}
	return s, sigCtx, nil
}

// Write stores the fragment text.
func (s *Scratch) Write(text string) error {
	if err := os.WriteFile(s.Path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("writing scratch file: %w", err)
	}
	return nil
}

// Release removes the file and restores the previous signal disposition. It
// is safe to call more than once.
func (s *Scratch) Release() error {
	s.once.Do(func() {
		s.stop()
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.err = fmt.Errorf("removing scratch file %s: %w", s.Path, err)
		}
	})
	return s.err
}
