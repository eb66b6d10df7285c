package usecase

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"

	"firebase-kit/internal/docstore/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

var (
	filterEnvOnce sync.Once
	filterEnv     *cel.Env
	filterEnvErr  error
)

// newFilterEnv declares the variables a ReadWhere predicate can reference:
// the document fields as record and the document id as id.
func newFilterEnv() (*cel.Env, error) {
	filterEnvOnce.Do(func() {
		filterEnv, filterEnvErr = cel.NewEnv(
			cel.Declarations(
				decls.NewVar("record", decls.NewMapType(decls.String, decls.Dyn)),
				decls.NewVar("id", decls.String),
			),
		)
	})
	return filterEnv, filterEnvErr
}

// Filter is a compiled boolean predicate over one document.
type Filter struct {
	expression string
	program    cel.Program
}

// CompileFilter parses and type-checks expression.
func CompileFilter(expression string) (*Filter, error) {
	env, err := newFilterEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("CEL compilation error: %v", issues.Err())).
			WithCause(apperrors.ErrInvalidInput)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	return &Filter{expression: expression, program: program}, nil
}

// Match evaluates the predicate for one document.
func (f *Filter) Match(id string, record model.Record) (bool, error) {
	out, _, err := f.program.Eval(map[string]interface{}{
		"record": map[string]interface{}(record),
		"id":     id,
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error for %s: %w", id, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, apperrors.NewValidationError(fmt.Sprintf("filter %q did not return a boolean", f.expression))
	}
	return result, nil
}

func (f *Filter) String() string {
	return f.expression
}
