package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/yesoreyeram/pinnal/pkg/graph"
	"github.com/yesoreyeram/pinnal/pkg/types"
)

// Codec translates the opaque Type and Op handles of a graph to and from
// their serialized forms.
type Codec interface {
	EncodeType(t graph.Type) (json.RawMessage, error)
	DecodeType(data json.RawMessage) (graph.Type, error)
	EncodeOp(op graph.Op) (json.RawMessage, error)
	DecodeOp(data json.RawMessage) (graph.Op, error)
}

// BasicCodec handles the built-in type system (pkg/types) and an op
// catalog registered by name. Decoded ops are the registered instances,
// preserving the identity equality the container relies on.
type BasicCodec struct {
	ops map[string]graph.Op
}

// NewBasicCodec creates a codec with an empty op catalog.
func NewBasicCodec() *BasicCodec {
	return &BasicCodec{ops: make(map[string]graph.Op)}
}

// RegisterOp adds an op to the catalog under its name. Re-registering a
// name replaces the previous entry.
func (c *BasicCodec) RegisterOp(op graph.Op) {
	c.ops[op.Name()] = op
}

type typeDoc struct {
	Kind  string      `json:"kind"`
	DType types.DType `json:"dtype,omitempty"`
	Shape []int       `json:"shape,omitempty"`
	Why   string      `json:"why,omitempty"`
}

type opDoc struct {
	Name string `json:"name"`
}

// EncodeType implements Codec for TensorType and NullType.
func (c *BasicCodec) EncodeType(t graph.Type) (json.RawMessage, error) {
	switch ty := t.(type) {
	case *types.TensorType:
		return json.Marshal(typeDoc{Kind: "tensor", DType: ty.DType, Shape: ty.Shape})
	case *types.NullType:
		return json.Marshal(typeDoc{Kind: "null", Why: ty.Why})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, t)
	}
}

// DecodeType implements Codec.
func (c *BasicCodec) DecodeType(data json.RawMessage) (graph.Type, error) {
	var doc typeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	switch doc.Kind {
	case "tensor":
		return types.NewTensorType(doc.DType, doc.Shape...), nil
	case "null":
		return types.NewNullType(doc.Why), nil
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnknownType, doc.Kind)
	}
}

// EncodeOp implements Codec; ops serialize as their catalog name.
func (c *BasicCodec) EncodeOp(op graph.Op) (json.RawMessage, error) {
	if _, ok := c.ops[op.Name()]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op.Name())
	}
	return json.Marshal(opDoc{Name: op.Name()})
}

// DecodeOp implements Codec.
func (c *BasicCodec) DecodeOp(data json.RawMessage) (graph.Op, error) {
	var doc opDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	op, ok := c.ops[doc.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, doc.Name)
	}
	return op, nil
}
