package eval

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultProgramCacheSize = 2048

// ProgramCache holds compiled expression programs keyed by source text.
// It is created once at engine initialization and shared by every invocation;
// reads dominate, each distinct expression is compiled at most a handful of
// times (losing a compile race is harmless, both programs are equivalent).
type ProgramCache struct {
	cache *lru.Cache[string, *vm.Program]
	mu    sync.RWMutex
}

// NewProgramCache creates a program cache bounded to size entries.
func NewProgramCache(size int) *ProgramCache {
	if size <= 0 {
		size = defaultProgramCacheSize
	}
	cache, _ := lru.New[string, *vm.Program](size)
	return &ProgramCache{cache: cache}
}

// GetOrCompile returns the compiled program for source, compiling and caching
// it on first use.
func (c *ProgramCache) GetOrCompile(source string) (*vm.Program, error) {
	// Fast path: read lock only.
	c.mu.RLock()
	if program, ok := c.cache.Get(source); ok {
		c.mu.RUnlock()
		return program, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring the write lock.
	if program, ok := c.cache.Get(source); ok {
		return program, nil
	}

	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, evalErrorf(source, err, "cannot compile expression")
	}

	c.cache.Add(source, program)
	return program, nil
}

// Len reports the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.Len()
}

// Purge drops every cached program.
func (c *ProgramCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}
