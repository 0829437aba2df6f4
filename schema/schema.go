package schema

import (
	"github.com/google/uuid"

	"github.com/synoet/bebop/errors"
)

// Type is a node in the type graph. The set of implementations is closed:
// Scalar, Array, Map, and Defined. Every dispatch over Type must be
// exhaustive over these four shapes.
type Type interface {
	typeNode()
}

// Scalar is a leaf wire type.
type Scalar struct {
	Kind ScalarKind
}

// Array is a homogeneous sequence. An Array whose element is the single-byte
// unsigned scalar (Byte) takes the raw-blob fast path on the wire; all other
// element types use the general counted-element layout.
type Array struct {
	Element Type
}

// Map is a counted sequence of key/value pairs. Iteration order is the
// container's native order and is not normalized.
type Map struct {
	Key   Type
	Value Type
}

// Defined is a by-name reference into the schema's definition table.
type Defined struct {
	Name string
}

func (Scalar) typeNode()  {}
func (Array) typeNode()   {}
func (Map) typeNode()     {}
func (Defined) typeNode() {}

// Definition is one named schema entity. The set of implementations is
// closed: Enum, Struct, Message, Union, and Const.
type Definition interface {
	DefinitionName() string
	definition()
}

// Field is one declared field of a struct or message.
type Field struct {
	Name string
	Type Type
	// Tag is the wire tag for message fields and unused for struct fields.
	// Message tags are unique and non-zero; tag 0 is the reserved
	// end-of-message sentinel.
	Tag        uint8
	Deprecated bool
	Doc        string
}

// EnumMember is one named value of an enum.
type EnumMember struct {
	Name string
	// Value is the member's integer value interpreted in the enum's backing
	// scalar. Unsigned 64-bit members store their bit pattern here.
	Value int64
	Doc   string
}

// Enum is a named integer type aliasing a scalar backing type. Enums always
// resolve directly to a scalar, never to another enum.
type Enum struct {
	Name    string
	Backing ScalarKind
	Members []EnumMember
	Doc     string
}

// Struct is a fixed-order record: fields are concatenated on the wire in
// declaration order with no tags and no framing. Field order is part of the
// wire contract and must never change across schema evolution.
type Struct struct {
	Name   string
	Fields []Field
	Doc    string
}

// Message is a tagged, length-framed record. Every field is optional by
// construction and carries a unique non-zero tag.
type Message struct {
	Name   string
	Fields []Field
	Doc    string
}

// Branch is one alternative of a union, referencing a record definition by
// name. Discriminators are unique positive integers.
type Branch struct {
	Discriminator uint8
	Definition    string
	Doc           string
}

// Union is a discriminated record: a length frame, a discriminator byte,
// then the active branch's own encoding.
type Union struct {
	Name     string
	Branches []Branch
	Doc      string
}

// Const is a named typed constant. It produces no codec, only a lowered
// literal in generated output.
type Const struct {
	Name  string
	Kind  ScalarKind
	Value Literal
	Doc   string
}

func (d *Enum) DefinitionName() string    { return d.Name }
func (d *Struct) DefinitionName() string  { return d.Name }
func (d *Message) DefinitionName() string { return d.Name }
func (d *Union) DefinitionName() string   { return d.Name }
func (d *Const) DefinitionName() string   { return d.Name }

func (*Enum) definition()    {}
func (*Struct) definition()  {}
func (*Message) definition() {}
func (*Union) definition()   {}
func (*Const) definition()   {}

// LiteralKind discriminates the representation carried by a Literal.
type LiteralKind uint8

const (
	LiteralBool LiteralKind = iota
	LiteralInt
	LiteralUint
	LiteralFloat
	LiteralString
	LiteralGUID
)

// Literal is a typed constant value as it appears in const definitions.
// Exactly one payload field is meaningful, selected by Kind.
type Literal struct {
	Kind LiteralKind
	Bool bool
	Int  int64
	Uint uint64
	// Float carries ordinary float values. FloatText is set to "inf",
	// "-inf", or "nan" for the three special forms, in which case Float is
	// ignored.
	Float     float64
	FloatText string
	Str       string
	GUID      uuid.UUID
}

// Schema is the full set of definitions forming the type graph. It is built
// once and immutable for the duration of lowering.
type Schema struct {
	Definitions []Definition
	byName      map[string]Definition
}

// New builds a schema from definitions in declaration order. Duplicate names
// are rejected; all other semantic validation (tag uniqueness, reference
// resolution) is the responsibility of the producer of the type graph.
func New(defs ...Definition) (*Schema, error) {
	s := &Schema{
		Definitions: defs,
		byName:      make(map[string]Definition, len(defs)),
	}
	for _, d := range defs {
		name := d.DefinitionName()
		if _, ok := s.byName[name]; ok {
			return nil, errors.New(errors.PhaseLoad, errors.KindDuplicate).
				Definition(name).
				Detail("definition name declared twice").
				Build()
		}
		s.byName[name] = d
	}
	return s, nil
}

// Resolve looks a definition up by name.
func (s *Schema) Resolve(name string) (Definition, bool) {
	d, ok := s.byName[name]
	return d, ok
}
