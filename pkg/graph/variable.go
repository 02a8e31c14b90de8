package graph

// Type is the opaque type handle carried by every Variable. The container
// only needs structural equality and a coercion hook; concrete type systems
// live outside this package (see pkg/types for the built-in one).
type Type interface {
	// Equal reports structural equality with another type.
	Equal(other Type) bool

	// FilterVariable coerces v to this type. When allowConvert is true the
	// implementation may build and return a converted variable; otherwise it
	// must return v unchanged or fail.
	FilterVariable(v *Variable, allowConvert bool) (*Variable, error)
}

// NullReporter is implemented by sentinel types that mark a poisoned value.
// Importing a variable whose type reports null fails immediately.
type NullReporter interface {
	WhyNull() string
}

// VarTag is the mutable metadata bag attached to every Variable.
type VarTag struct {
	// TestValue is an optional eagerly-computed value used to cross-check
	// replacements; Present distinguishes a stored nil from absence.
	TestValue any
	Present   bool

	// Trace names the construction site of the variable, when the creator
	// recorded one. It is echoed in missing-input errors.
	Trace string
}

// Variable is a value node of the dataflow graph. It is either produced by
// an Apply node (Owner is set), a graph input, or a constant. Identity is
// pointer identity; variables are never copied implicitly.
type Variable struct {
	Type  Type
	Name  string
	Owner *Apply
	// Index is the position of this variable in Owner.Outputs when Owner
	// is set.
	Index int
	Tag   VarTag

	constant bool
	value    any
}

// NewVariable creates a free variable of the given type. It has no owner
// until an Apply node adopts it as an output.
func NewVariable(t Type, name string) *Variable {
	return &Variable{Type: t, Name: name, Index: -1}
}

// NewConstant creates a constant carrying a literal value. Constants are
// never graph inputs and are shared freely between graphs.
func NewConstant(t Type, value any, name string) *Variable {
	return &Variable{Type: t, Name: name, Index: -1, constant: true, value: value}
}

// IsConstant reports whether the variable is a constant.
func (v *Variable) IsConstant() bool {
	return v.constant
}

// ConstValue returns the literal carried by a constant. The second return
// is false for non-constants.
func (v *Variable) ConstValue() (any, bool) {
	if !v.constant {
		return nil, false
	}
	return v.value, true
}

// Clone returns a copy of the variable with the same type, name, tag and
// constant payload but no owner. Used by CloneGetEquiv.
func (v *Variable) Clone() *Variable {
	c := &Variable{
		Type:     v.Type,
		Name:     v.Name,
		Index:    -1,
		Tag:      v.Tag,
		constant: v.constant,
		value:    v.value,
	}
	return c
}

// String renders the variable for debug output.
func (v *Variable) String() string {
	if v.Name != "" {
		return v.Name
	}
	if v.constant {
		return "<const>"
	}
	return "<var>"
}
