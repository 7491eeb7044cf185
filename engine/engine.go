package engine

import (
	"github.com/forgeline/dynsql/cache"
	"github.com/forgeline/dynsql/database"
	"github.com/forgeline/dynsql/dialect"
	"github.com/forgeline/dynsql/eval"
	"github.com/forgeline/dynsql/mapper"
)

const defaultStatementCacheSize = 256

// Engine executes registered mapper statements against a database. It is
// safe for concurrent use; per-call state lives in the evaluation context.
type Engine struct {
	db        database.Database
	config    *mapper.Configuration
	dialect   dialect.Dialect
	evaluator *eval.Evaluator
	stmts     *cache.StatementCache
}

// Option configures an Engine.
type Option func(*Engine)

// WithDialect selects the target database dialect. Its name is exposed to
// templates as _databaseId and its placeholder syntax replaces the generic
// markers before execution.
func WithDialect(d dialect.Dialect) Option {
	return func(e *Engine) { e.dialect = d }
}

// WithEvaluator supplies a dedicated expression evaluator, typically to
// isolate the program cache.
func WithEvaluator(ev *eval.Evaluator) Option {
	return func(e *Engine) { e.evaluator = ev }
}

// WithStatementCacheSize bounds the prepared statement cache.
func WithStatementCacheSize(size int) Option {
	return func(e *Engine) {
		e.stmts = cache.NewStatementCache(size)
	}
}

// New builds an Engine over a database and a statement registry. The dialect
// defaults to SQLite, whose ? placeholders match most database/sql drivers.
func New(db database.Database, config *mapper.Configuration, opts ...Option) *Engine {
	e := &Engine{
		db:        db,
		config:    config,
		dialect:   dialect.SQLite{},
		evaluator: eval.Default,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.stmts == nil {
		e.stmts = cache.NewStatementCache(defaultStatementCacheSize)
	}
	return e
}

// Dialect returns the engine's dialect.
func (e *Engine) Dialect() dialect.Dialect { return e.dialect }

// Close releases the prepared statement cache. The database handle stays
// open; the caller owns it.
func (e *Engine) Close() error {
	return e.stmts.Close()
}
