package expr

import (
	"context"
	"fmt"
	"sync"

	"github.com/aescanero/dago-levelset/internal/grid"
)

// Evaluator compiles expressions and caches the resulting programs by source
// text
type Evaluator struct {
	cache map[string]*Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]*Program),
	}
}

// Compile returns the cached program for text, compiling it on first use.
// Failed compilations are not cached.
func (e *Evaluator) Compile(text string) (*Program, error) {
	key := text

	// Check cache first (read lock)
	e.mu.RLock()
	if program, ok := e.cache[key]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if program, ok := e.cache[key]; ok {
		return program, nil
	}

	program, err := Compile(key)
	if err != nil {
		return nil, err
	}

	e.cache[key] = program
	return program, nil
}

// Evaluate compiles text (or reuses the cached program) and evaluates it over
// the given grids
func (e *Evaluator) Evaluate(ctx context.Context, text string, x, y *grid.Grid) (*grid.Grid, error) {
	program, err := e.Compile(text)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return program.Evaluate(x, y)
}

// Validate compiles text without caching it
func (e *Evaluator) Validate(text string) error {
	_, err := Compile(text)
	return err
}

// Len returns the number of cached programs
func (e *Evaluator) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// ClearCache clears the compiled program cache
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*Program)
}
