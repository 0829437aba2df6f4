package lower

import (
	"github.com/synoet/bebop/errors"
	"github.com/synoet/bebop/schema"
)

// Shape identifies the wire encoding strategy chosen for a type.
type Shape uint8

const (
	ShapeScalar    Shape = iota // fixed-width or length-prefixed scalar codec
	ShapeByteArray              // array of the single-byte unsigned scalar: raw blob
	ShapeArray                  // 4-byte element count + encoded elements
	ShapeMap                    // 4-byte entry count + encoded key/value pairs
	ShapeRecord                 // nested recursive call into a record codec
	ShapeEnum                   // enum aliased to its backing scalar
)

var shapeNames = [...]string{
	ShapeScalar:    "scalar",
	ShapeByteArray: "byte_array",
	ShapeArray:     "array",
	ShapeMap:       "map",
	ShapeRecord:    "record",
	ShapeEnum:      "enum",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

// Strategy is the classifier's answer for one type-graph node: how a value
// of that type is written to and read from the wire. Strategies form a tree
// mirroring the type's nesting; they are immutable once built.
type Strategy struct {
	Shape Shape

	// Scalar is set for ShapeScalar and, for ShapeEnum, holds the backing
	// scalar the enum aliases.
	Scalar schema.ScalarKind

	// Element is set for ShapeArray.
	Element *Strategy

	// Key and Value are set for ShapeMap.
	Key   *Strategy
	Value *Strategy

	// Target names the referenced definition for ShapeRecord and ShapeEnum.
	Target string
}

// Classify maps a type-graph node to its wire encoding strategy. A Defined
// reference is resolved against the schema's definition table; a reference
// to an enum aliases the backing scalar (exactly one indirection), any other
// record kind becomes a nested recursive call.
//
// Classification failures are fatal internal-invariant violations: the type
// graph is assumed pre-validated, so an unresolved reference or an
// unclassifiable shape means the producer broke the contract, not that the
// input is recoverable.
func Classify(sch *schema.Schema, t schema.Type) (*Strategy, error) {
	switch t := t.(type) {
	case schema.Scalar:
		return &Strategy{Shape: ShapeScalar, Scalar: t.Kind}, nil

	case schema.Array:
		// The fast path applies only when the element is exactly the
		// single-byte unsigned scalar.
		if elem, ok := t.Element.(schema.Scalar); ok && elem.Kind == schema.Byte {
			return &Strategy{Shape: ShapeByteArray}, nil
		}
		elem, err := Classify(sch, t.Element)
		if err != nil {
			return nil, err
		}
		return &Strategy{Shape: ShapeArray, Element: elem}, nil

	case schema.Map:
		key, err := Classify(sch, t.Key)
		if err != nil {
			return nil, err
		}
		value, err := Classify(sch, t.Value)
		if err != nil {
			return nil, err
		}
		return &Strategy{Shape: ShapeMap, Key: key, Value: value}, nil

	case schema.Defined:
		def, ok := sch.Resolve(t.Name)
		if !ok {
			return nil, errors.UnresolvedReference(errors.PhaseLower, "", t.Name)
		}
		switch def := def.(type) {
		case *schema.Enum:
			return &Strategy{Shape: ShapeEnum, Scalar: def.Backing, Target: def.Name}, nil
		case *schema.Struct, *schema.Message, *schema.Union:
			return &Strategy{Shape: ShapeRecord, Target: t.Name}, nil
		default:
			return nil, errors.New(errors.PhaseLower, errors.KindUnsupported).
				Definition(t.Name).
				Detail("reference resolves to a non-encodable definition").
				Build()
		}

	default:
		return nil, errors.Unsupported(errors.PhaseLower, "unclassifiable type shape")
	}
}
