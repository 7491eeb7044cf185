package engine

import (
	"context"
	"fmt"

	"github.com/forgeline/dynsql/binder"
	"github.com/forgeline/dynsql/database"
	"github.com/forgeline/dynsql/dialect"
	"github.com/forgeline/dynsql/mapper"
	"github.com/forgeline/dynsql/schema"
	"github.com/forgeline/dynsql/utils"
)

// SelectList runs a select statement and scans every row into dest, a pointer
// to a slice of structs.
func (e *Engine) SelectList(ctx context.Context, id string, parameter any, dest any) error {
	rows, err := e.query(ctx, id, parameter)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := schema.ScanAll(rows, dest); err != nil {
		return err
	}
	return rows.Err()
}

// SelectOne runs a select statement and scans the first row into dest, a
// pointer to a struct. An empty result set yields sql.ErrNoRows.
func (e *Engine) SelectOne(ctx context.Context, id string, parameter any, dest any) error {
	rows, err := e.query(ctx, id, parameter)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := schema.ScanOne(rows, dest); err != nil {
		return err
	}
	return rows.Err()
}

// Exec runs an insert, update or delete statement. Inserts first apply key
// generation to the argument so generated values reach both the statement and
// the caller.
func (e *Engine) Exec(ctx context.Context, id string, parameter any) (database.Result, error) {
	st, err := e.config.Statement(id)
	if err != nil {
		return nil, err
	}
	if st.Kind == mapper.KindSelect {
		return nil, fmt.Errorf("statement %s is a select, use SelectList or SelectOne", st.FullID())
	}
	if st.Kind == mapper.KindInsert {
		if err := e.applyKeys(st, parameter); err != nil {
			return nil, err
		}
	}

	stmt, args, err := e.prepare(ctx, st, parameter)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

// Bound evaluates a registered statement without executing it. Useful for
// logging and tests.
func (e *Engine) Bound(id string, parameter any) (*binder.BoundStatement, error) {
	st, err := e.config.Statement(id)
	if err != nil {
		return nil, err
	}
	return e.bind(st, parameter)
}

func (e *Engine) query(ctx context.Context, id string, parameter any) (database.Rows, error) {
	st, err := e.config.Statement(id)
	if err != nil {
		return nil, err
	}
	if st.Kind != mapper.KindSelect {
		return nil, fmt.Errorf("statement %s is a %s, use Exec", st.FullID(), st.Kind)
	}
	stmt, args, err := e.prepare(ctx, st, parameter)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

func (e *Engine) bind(st *mapper.Statement, parameter any) (*binder.BoundStatement, error) {
	bound, err := EvaluateWith(st.Root, parameter, EvalOptions{
		Evaluator:  e.evaluator,
		DatabaseID: e.dialect.Name(),
		ArgType:    st.ParamType,
	})
	if err != nil {
		return nil, fmt.Errorf("statement %s: %w", st.FullID(), err)
	}
	return bound, nil
}

// prepare evaluates the statement, translates the placeholder markers for
// the dialect and resolves a prepared statement through the cache.
func (e *Engine) prepare(ctx context.Context, st *mapper.Statement, parameter any) (database.Stmt, []any, error) {
	bound, err := e.bind(st, parameter)
	if err != nil {
		return nil, nil, err
	}

	query := dialect.Translate(e.dialect, bound.SQL)
	key := utils.FingerprintString(query)
	stmt, err := e.stmts.GetOrPrepare(ctx, key, e.db, query)
	if err != nil {
		return nil, nil, err
	}
	return stmt, bound.Args(parameter), nil
}
