package finding

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Expression is a compiled CEL predicate over a finding. The variables
// available to the expression are:
//
//	kind          string
//	subject_id    int
//	subject_name  string
//	severity      string
//	magnitude     double  (0 for chain findings)
//	actual        double  (0 for chain findings)
//	depth         int     (0 for compensation findings)
//	limit         int     (0 for compensation findings)
//
// An Expression is safe for concurrent use.
type Expression struct {
	source  string
	program cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("kind", cel.StringType),
		cel.Variable("subject_id", cel.IntType),
		cel.Variable("subject_name", cel.StringType),
		cel.Variable("severity", cel.StringType),
		cel.Variable("magnitude", cel.DoubleType),
		cel.Variable("actual", cel.DoubleType),
		cel.Variable("depth", cel.IntType),
		cel.Variable("limit", cel.IntType),
	)
}

// CompileExpression parses and type-checks src. The expression must
// evaluate to a bool.
func CompileExpression(src string) (*Expression, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("create expression environment: %w", err)
	}

	ast, iss := env.Compile(src)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile expression %q: %w", src, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must evaluate to bool, got %s", src, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build expression program: %w", err)
	}
	return &Expression{source: src, program: program}, nil
}

// String returns the expression source.
func (e *Expression) String() string {
	return e.source
}

// Matches evaluates the expression against f.
func (e *Expression) Matches(f Finding) (bool, error) {
	out, _, err := e.program.Eval(map[string]any{
		"kind":         f.Kind.String(),
		"subject_id":   int64(f.SubjectID),
		"subject_name": f.SubjectName,
		"severity":     f.Severity.String(),
		"magnitude":    f.Magnitude,
		"actual":       f.Actual,
		"depth":        int64(f.Depth),
		"limit":        int64(f.Limit),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate expression %q: %w", e.source, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, want bool", e.source, out.Value())
	}
	return matched, nil
}
