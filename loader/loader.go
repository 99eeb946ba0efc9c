// Package loader starts the embedded interactive module.
//
// A load is fire-and-forget: Go runs it on its own goroutine, recovers any
// panic, and reports the outcome only through the package logger. Nothing is
// retried and no error reaches the caller that started it.
package loader

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/wippyai/keybridge/errors"
)

// Loader loads the module at path.
type Loader interface {
	Load(ctx context.Context, path string) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string) error

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Task is a running or finished load.
type Task struct {
	err   error
	done  chan struct{}
	path  string
	start time.Time
}

// Go starts l.Load(ctx, path) in the background.
func Go(ctx context.Context, l Loader, path string) *Task {
	t := &Task{
		done:  make(chan struct{}),
		path:  path,
		start: time.Now(),
	}
	go t.run(ctx, l)
	return t
}

func (t *Task) run(ctx context.Context, l Loader) {
	defer close(t.done)

	var err error
	var pc panics.Catcher
	pc.Try(func() {
		err = l.Load(ctx, t.path)
	})
	if r := pc.Recovered(); r != nil {
		err = errors.Panic(errors.PhaseLoad, r.Value, string(r.Stack))
	}
	t.err = err

	if err != nil {
		Logger().Error("module load failed",
			zap.String("path", t.path),
			zap.Error(err),
		)
		return
	}
	Logger().Info("module loaded",
		zap.String("path", t.path),
		zap.Duration("elapsed", time.Since(t.start)),
	)
}

// Path returns the module path being loaded.
func (t *Task) Path() string {
	return t.path
}

// Done is closed when the load has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err waits for the load and returns its outcome.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

// Finished reports whether the load has completed, without blocking.
func (t *Task) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
