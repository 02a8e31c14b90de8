package types

import (
	"errors"
	"testing"

	"github.com/yesoreyeram/pinnal/pkg/graph"
)

func TestTensorType_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b graph.Type
		want bool
	}{
		{"same scalar", Scalar(Float64), Scalar(Float64), true},
		{"different dtype", Scalar(Float64), Scalar(Int64), false},
		{"same shape", NewTensorType(Float32, 2, 3), NewTensorType(Float32, 2, 3), true},
		{"different rank", NewTensorType(Float32, 2), NewTensorType(Float32, 2, 3), false},
		{"different dim", NewTensorType(Float32, 2, 3), NewTensorType(Float32, 2, 4), false},
		{"tensor vs null", Scalar(Float64), NewNullType("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterVariable_PassThrough(t *testing.T) {
	ty := Scalar(Float64)
	v := graph.NewVariable(Scalar(Float64), "v")
	got, err := ty.FilterVariable(v, false)
	if err != nil {
		t.Fatalf("FilterVariable() error: %v", err)
	}
	if got != v {
		t.Error("equal-typed variable was not passed through")
	}
}

func TestFilterVariable_ConvertsConstants(t *testing.T) {
	ty := Scalar(Float64)
	k := NewScalar(Int64, int64(7), "seven")

	got, err := ty.FilterVariable(k, true)
	if err != nil {
		t.Fatalf("FilterVariable() error: %v", err)
	}
	if got == k {
		t.Fatal("conversion returned the original variable")
	}
	if !got.Type.Equal(ty) {
		t.Errorf("converted type = %v, want float64 scalar", got.Type)
	}
	if val, _ := got.ConstValue(); val != float64(7) {
		t.Errorf("converted value = %v, want 7.0", val)
	}

	// Without allowConvert the same coercion must fail.
	if _, err := ty.FilterVariable(k, false); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("FilterVariable(allowConvert=false) error = %v, want ErrTypeMismatch", err)
	}
}

func TestFilterVariable_RejectsNarrowing(t *testing.T) {
	ty := Scalar(Int64)
	k := NewScalar(Float64, 1.5, "half")
	if _, err := ty.FilterVariable(k, true); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("narrowing conversion error = %v, want ErrTypeMismatch", err)
	}
}

func TestFilterVariable_RejectsFreeVariables(t *testing.T) {
	ty := Scalar(Float64)
	v := graph.NewVariable(Scalar(Int64), "v")
	if _, err := ty.FilterVariable(v, true); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("free variable conversion error = %v, want ErrTypeMismatch", err)
	}
}

func TestNullType(t *testing.T) {
	n := NewNullType("overflow in rewrite")
	if n.WhyNull() != "overflow in rewrite" {
		t.Errorf("WhyNull() = %q", n.WhyNull())
	}
	if !n.Equal(n) || n.Equal(NewNullType("overflow in rewrite")) {
		t.Error("NullType equality must be identity")
	}
	v := graph.NewVariable(Scalar(Float64), "v")
	if _, err := n.FilterVariable(v, true); !errors.Is(err, ErrNullType) {
		t.Errorf("FilterVariable() error = %v, want ErrNullType", err)
	}
}
