package types

import (
	"fmt"

	"github.com/yesoreyeram/pinnal/pkg/graph"
)

// DType identifies the element type of a tensor.
type DType string

const (
	Float32 DType = "float32"
	Float64 DType = "float64"
	Int64   DType = "int64"
	Bool    DType = "bool"
)

// convertible reports whether a constant of dtype from can be coerced to
// dtype to without loss of intent. Widening numeric conversions only.
func convertible(from, to DType) bool {
	if from == to {
		return true
	}
	switch {
	case from == Int64 && (to == Float32 || to == Float64):
		return true
	case from == Float32 && to == Float64:
		return true
	}
	return false
}

// TensorType is a dense value type: an element dtype plus a static shape.
// An empty shape is a scalar. TensorType implements graph.Type.
type TensorType struct {
	DType DType
	Shape []int
}

// NewTensorType creates a TensorType with the given dtype and shape.
func NewTensorType(dtype DType, shape ...int) *TensorType {
	return &TensorType{DType: dtype, Shape: shape}
}

// Scalar creates a zero-dimensional TensorType.
func Scalar(dtype DType) *TensorType {
	return &TensorType{DType: dtype}
}

// Equal implements graph.Type: same dtype and identical shape.
func (t *TensorType) Equal(other graph.Type) bool {
	o, ok := other.(*TensorType)
	if !ok {
		return false
	}
	if t.DType != o.DType || len(t.Shape) != len(o.Shape) {
		return false
	}
	for i := range t.Shape {
		if t.Shape[i] != o.Shape[i] {
			return false
		}
	}
	return true
}

// FilterVariable implements graph.Type. A variable of an equal type passes
// through unchanged. A constant of a convertible dtype is rebuilt as a
// constant of this type when allowConvert is set. Anything else fails with
// ErrTypeMismatch.
func (t *TensorType) FilterVariable(v *graph.Variable, allowConvert bool) (*graph.Variable, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil variable", ErrTypeMismatch)
	}
	if t.Equal(v.Type) {
		return v, nil
	}
	if allowConvert {
		if val, ok := v.ConstValue(); ok {
			if src, ok := v.Type.(*TensorType); ok && convertible(src.DType, t.DType) && sameShape(src.Shape, t.Shape) {
				conv := graph.NewConstant(t, convertValue(val, t.DType), v.Name)
				conv.Tag = v.Tag
				return conv, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: cannot coerce %v to %v", ErrTypeMismatch, v.Type, t)
}

func sameShape(a, b []int) bool {
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

// convertValue widens a scalar literal to the target dtype. Values the
// conversion table does not cover are passed through unchanged.
func convertValue(val any, to DType) any {
	switch to {
	case Float64:
		switch x := val.(type) {
		case int64:
			return float64(x)
		case int:
			return float64(x)
		case float32:
			return float64(x)
		}
	case Float32:
		switch x := val.(type) {
		case int64:
			return float32(x)
		case int:
			return float32(x)
		}
	}
	return val
}

// String renders the type for debug output.
func (t *TensorType) String() string {
	if len(t.Shape) == 0 {
		return string(t.DType)
	}
	return fmt.Sprintf("%s%v", t.DType, t.Shape)
}

// NullType is the sentinel type of a poisoned variable, typically produced
// by a rewrite that detected an undefined value. Importing a variable of
// this type fails immediately; the Why message is echoed in the error.
type NullType struct {
	Why string
}

// NewNullType creates a NullType carrying the reason the value is null.
func NewNullType(why string) *NullType {
	return &NullType{Why: why}
}

// WhyNull implements graph.NullReporter.
func (t *NullType) WhyNull() string {
	return t.Why
}

// Equal implements graph.Type; a NullType equals only itself.
func (t *NullType) Equal(other graph.Type) bool {
	return t == other
}

// FilterVariable implements graph.Type and always fails.
func (t *NullType) FilterVariable(v *graph.Variable, allowConvert bool) (*graph.Variable, error) {
	return nil, fmt.Errorf("%w: %s", ErrNullType, t.Why)
}

// String renders the type for debug output.
func (t *NullType) String() string {
	return "null"
}

// NewScalar creates a constant scalar of the given dtype.
func NewScalar(dtype DType, value any, name string) *graph.Variable {
	return graph.NewConstant(Scalar(dtype), value, name)
}
