package schema

import (
	"math"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/synoet/bebop/errors"
)

// Document layout for the structured type-graph format. The loader performs
// structural decoding only: it maps the document onto the type graph without
// validating tag uniqueness or reference resolution, which the producer of
// the document is expected to have done already.
//
//	definitions:
//	  - enum: Instrument
//	    backing: uint32
//	    members:
//	      - {name: sax, value: 0}
//	  - struct: Point
//	    fields:
//	      - {name: x, type: {scalar: int32}}
//	  - message: Song
//	    fields:
//	      - {name: title, type: {scalar: string}, tag: 1}
//	  - union: Shape
//	    branches:
//	      - {discriminator: 1, definition: Circle}
//	  - const: MaxTracks
//	    kind: uint32
//	    value: 64
type document struct {
	Definitions []definitionDoc `yaml:"definitions"`
}

type definitionDoc struct {
	Enum    string `yaml:"enum"`
	Struct  string `yaml:"struct"`
	Message string `yaml:"message"`
	Union   string `yaml:"union"`
	Const   string `yaml:"const"`

	Doc      string      `yaml:"doc"`
	Backing  string      `yaml:"backing"`
	Members  []memberDoc `yaml:"members"`
	Fields   []fieldDoc  `yaml:"fields"`
	Branches []branchDoc `yaml:"branches"`
	Kind     string      `yaml:"kind"`
	Value    yaml.Node   `yaml:"value"`
}

type memberDoc struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
	Doc   string `yaml:"doc"`
}

type fieldDoc struct {
	Name       string   `yaml:"name"`
	Type       *typeDoc `yaml:"type"`
	Tag        uint8    `yaml:"tag"`
	Deprecated bool     `yaml:"deprecated"`
	Doc        string   `yaml:"doc"`
}

type branchDoc struct {
	Discriminator uint8  `yaml:"discriminator"`
	Definition    string `yaml:"definition"`
	Doc           string `yaml:"doc"`
}

type typeDoc struct {
	Scalar  string   `yaml:"scalar"`
	Array   *typeDoc `yaml:"array"`
	Map     *mapDoc  `yaml:"map"`
	Defined string   `yaml:"defined"`
}

type mapDoc struct {
	Key   *typeDoc `yaml:"key"`
	Value *typeDoc `yaml:"value"`
}

// Load decodes a YAML (or JSON, which yaml.v3 accepts) type-graph document
// into a Schema.
func Load(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "decode schema document")
	}

	defs := make([]Definition, 0, len(doc.Definitions))
	for _, dd := range doc.Definitions {
		def, err := dd.build()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return New(defs...)
}

func (dd *definitionDoc) build() (Definition, error) {
	switch {
	case dd.Enum != "":
		backing, ok := scalarKindsByName[dd.Backing]
		if !ok {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Definition(dd.Enum).
				Detail("unknown backing scalar %q", dd.Backing).
				Build()
		}
		members := make([]EnumMember, len(dd.Members))
		for i, m := range dd.Members {
			members[i] = EnumMember{Name: m.Name, Value: m.Value, Doc: m.Doc}
		}
		return &Enum{Name: dd.Enum, Backing: backing, Members: members, Doc: dd.Doc}, nil

	case dd.Struct != "":
		fields, err := buildFields(dd.Struct, dd.Fields)
		if err != nil {
			return nil, err
		}
		return &Struct{Name: dd.Struct, Fields: fields, Doc: dd.Doc}, nil

	case dd.Message != "":
		fields, err := buildFields(dd.Message, dd.Fields)
		if err != nil {
			return nil, err
		}
		return &Message{Name: dd.Message, Fields: fields, Doc: dd.Doc}, nil

	case dd.Union != "":
		branches := make([]Branch, len(dd.Branches))
		for i, b := range dd.Branches {
			branches[i] = Branch{Discriminator: b.Discriminator, Definition: b.Definition, Doc: b.Doc}
		}
		return &Union{Name: dd.Union, Branches: branches, Doc: dd.Doc}, nil

	case dd.Const != "":
		kind, ok := scalarKindsByName[dd.Kind]
		if !ok {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Definition(dd.Const).
				Detail("unknown const kind %q", dd.Kind).
				Build()
		}
		lit, err := buildLiteral(dd.Const, kind, dd.Value)
		if err != nil {
			return nil, err
		}
		return &Const{Name: dd.Const, Kind: kind, Value: lit, Doc: dd.Doc}, nil

	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Detail("definition entry names no enum, struct, message, union, or const").
			Build()
	}
}

func buildFields(definition string, docs []fieldDoc) ([]Field, error) {
	fields := make([]Field, len(docs))
	for i, fd := range docs {
		if fd.Type == nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Definition(definition).
				Path(fd.Name).
				Detail("field has no type").
				Build()
		}
		typ, err := fd.Type.build(definition, fd.Name)
		if err != nil {
			return nil, err
		}
		fields[i] = Field{
			Name:       fd.Name,
			Type:       typ,
			Tag:        fd.Tag,
			Deprecated: fd.Deprecated,
			Doc:        fd.Doc,
		}
	}
	return fields, nil
}

func (td *typeDoc) build(definition, field string) (Type, error) {
	switch {
	case td.Scalar != "":
		kind, ok := scalarKindsByName[td.Scalar]
		if !ok {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Definition(definition).
				Path(field).
				Detail("unknown scalar %q", td.Scalar).
				Build()
		}
		return Scalar{Kind: kind}, nil

	case td.Array != nil:
		elem, err := td.Array.build(definition, field)
		if err != nil {
			return nil, err
		}
		return Array{Element: elem}, nil

	case td.Map != nil:
		if td.Map.Key == nil || td.Map.Value == nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Definition(definition).
				Path(field).
				Detail("map type requires both key and value").
				Build()
		}
		key, err := td.Map.Key.build(definition, field)
		if err != nil {
			return nil, err
		}
		value, err := td.Map.Value.build(definition, field)
		if err != nil {
			return nil, err
		}
		return Map{Key: key, Value: value}, nil

	case td.Defined != "":
		return Defined{Name: td.Defined}, nil

	default:
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Definition(definition).
			Path(field).
			Detail("type names no scalar, array, map, or defined reference").
			Build()
	}
}

// buildLiteral decodes a const value node. The node is declared by value,
// not by pointer: yaml.v3 only short-circuits decoding into a yaml.Node
// field when the field's type is exactly yaml.Node.
func buildLiteral(definition string, kind ScalarKind, node yaml.Node) (Literal, error) {
	badValue := func(detail string) error {
		return errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Definition(definition).
			Detail("%s", detail).
			Build()
	}
	if node.IsZero() {
		return Literal{}, badValue("const has no value")
	}

	switch kind {
	case Bool:
		var v bool
		if err := node.Decode(&v); err != nil {
			return Literal{}, badValue("const value is not a bool")
		}
		return Literal{Kind: LiteralBool, Bool: v}, nil

	case Byte, Int16, Uint16, Int32, Uint32, Int64:
		var v int64
		if err := node.Decode(&v); err != nil {
			return Literal{}, badValue("const value is not an integer")
		}
		return Literal{Kind: LiteralInt, Int: v}, nil

	case Uint64, Date:
		var v uint64
		if err := node.Decode(&v); err != nil {
			return Literal{}, badValue("const value is not an unsigned integer")
		}
		return Literal{Kind: LiteralUint, Uint: v}, nil

	case Float32, Float64:
		// The three special forms arrive as strings; everything else must
		// decode as a number.
		var text string
		if err := node.Decode(&text); err == nil {
			switch text {
			case "inf", "-inf", "nan":
				return Literal{Kind: LiteralFloat, FloatText: text}, nil
			}
		}
		var v float64
		if err := node.Decode(&v); err != nil {
			return Literal{}, badValue("const value is not a float")
		}
		if math.IsInf(v, 1) {
			return Literal{Kind: LiteralFloat, FloatText: "inf"}, nil
		}
		if math.IsInf(v, -1) {
			return Literal{Kind: LiteralFloat, FloatText: "-inf"}, nil
		}
		if math.IsNaN(v) {
			return Literal{Kind: LiteralFloat, FloatText: "nan"}, nil
		}
		return Literal{Kind: LiteralFloat, Float: v}, nil

	case String:
		var v string
		if err := node.Decode(&v); err != nil {
			return Literal{}, badValue("const value is not a string")
		}
		return Literal{Kind: LiteralString, Str: v}, nil

	case GUID:
		var text string
		if err := node.Decode(&text); err != nil {
			return Literal{}, badValue("const value is not a guid string")
		}
		id, err := uuid.Parse(text)
		if err != nil {
			return Literal{}, badValue("const value is not a valid guid")
		}
		return Literal{Kind: LiteralGUID, GUID: id}, nil

	default:
		return Literal{}, errors.Unsupported(errors.PhaseLoad, "const kind: "+kind.String())
	}
}
