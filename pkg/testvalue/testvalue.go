// Package testvalue provides optional eager evaluation of test values for
// dataflow variables, powered by expr-lang/expr with a compiled program cache.
package testvalue

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/yesoreyeram/pinnal/pkg/graph"
)

// Exprer is implemented by ops that can describe their first output as an
// expression over their input test values. The expression sees each input
// as in0, in1, ... and the whole list as inputs.
type Exprer interface {
	TestExpr() string
}

// Shaped is implemented by test values that carry an explicit shape.
type Shaped interface {
	Shape() []int
}

// Engine compiles and caches test-value expressions.
type Engine struct {
	programs map[string]*vm.Program
}

// NewEngine creates an Engine with an empty program cache.
func NewEngine() *Engine {
	return &Engine{programs: make(map[string]*vm.Program)}
}

var (
	// Global engine instance for reuse and caching
	globalEngine *Engine
	engineOnce   sync.Once
)

func getEngine() *Engine {
	engineOnce.Do(func() {
		globalEngine = NewEngine()
	})
	return globalEngine
}

// Set records val as the test value of v.
func Set(v *graph.Variable, val any) {
	v.Tag.TestValue = val
	v.Tag.Present = true
}

// Has reports whether v carries a stored test value. Constants always do.
func Has(v *graph.Variable) bool {
	return v.Tag.Present || v.IsConstant()
}

// Get returns the test value of v using the shared engine. See Engine.Get.
func Get(v *graph.Variable) (any, error) {
	return getEngine().Get(v)
}

// Get returns the test value of v. Stored values and constant literals are
// returned directly; otherwise the value is computed through the owner's
// TestExpr when the op provides one, recursing into the input test values.
// Variables with no source of a value fail with ErrNoTestValue.
func (e *Engine) Get(v *graph.Variable) (any, error) {
	if v.Tag.Present {
		return v.Tag.TestValue, nil
	}
	if val, ok := v.ConstValue(); ok {
		return val, nil
	}
	owner := v.Owner
	if owner == nil || v.Index != 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTestValue, v)
	}
	op, ok := owner.Op.(Exprer)
	if !ok {
		return nil, fmt.Errorf("%w: op %s has no test expression", ErrNoTestValue, owner)
	}

	env := make(map[string]any, len(owner.Inputs)+1)
	inputs := make([]any, len(owner.Inputs))
	for i, in := range owner.Inputs {
		val, err := e.Get(in)
		if err != nil {
			return nil, err
		}
		env[fmt.Sprintf("in%d", i)] = val
		inputs[i] = val
	}
	env["inputs"] = inputs

	out, err := e.eval(op.TestExpr(), env)
	if err != nil {
		return nil, fmt.Errorf("test value for %s: %w", v, err)
	}
	return out, nil
}

// eval runs source against env, compiling on first use. Programs are
// cached by source; env shapes are uniform (map[string]any) so a cached
// program is reusable across nodes of the same op.
func (e *Engine) eval(source string, env map[string]any) (any, error) {
	program, ok := e.programs[source]
	if !ok {
		var err error
		program, err = expr.Compile(source, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadExpr, err)
		}
		e.programs[source] = program
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvalFailed, err)
	}
	return out, nil
}

// ShapeOf derives the shape of a test value: Shaped values report their
// own, slices report nesting, scalars have an empty shape.
func ShapeOf(val any) []int {
	switch x := val.(type) {
	case Shaped:
		return x.Shape()
	case []any:
		if len(x) == 0 {
			return []int{0}
		}
		return append([]int{len(x)}, ShapeOf(x[0])...)
	case []float64:
		return []int{len(x)}
	case []float32:
		return []int{len(x)}
	case []int64:
		return []int{len(x)}
	default:
		return nil
	}
}

// SameShape reports whether two shapes are identical.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
