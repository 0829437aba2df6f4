package gen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	beberrors "github.com/synoet/bebop/errors"
	"github.com/synoet/bebop/schema"
)

func libraryDefs(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.New(
		&schema.Enum{
			Name:    "instrument",
			Backing: schema.Uint32,
			Members: []schema.EnumMember{
				{Name: "sax", Value: 0},
				{Name: "trumpet", Value: 1},
				{Name: "clarinet", Value: 2},
			},
		},
		&schema.Struct{
			Name: "musician",
			Fields: []schema.Field{
				{Name: "name", Type: schema.Scalar{Kind: schema.String}},
				{Name: "plays", Type: schema.Defined{Name: "instrument"}},
			},
		},
		&schema.Message{
			Name: "song",
			Fields: []schema.Field{
				{Name: "title", Type: schema.Scalar{Kind: schema.String}, Tag: 1},
				{Name: "year", Type: schema.Scalar{Kind: schema.Uint16}, Tag: 2},
				{Name: "performers", Type: schema.Array{Element: schema.Defined{Name: "musician"}}, Tag: 3},
			},
		},
		&schema.Struct{
			Name: "library",
			Fields: []schema.Field{
				{Name: "songs", Type: schema.Map{
					Key:   schema.Scalar{Kind: schema.GUID},
					Value: schema.Defined{Name: "song"},
				}},
			},
		},
		&schema.Union{
			Name: "entry",
			Branches: []schema.Branch{
				{Discriminator: 1, Definition: "musician"},
				{Discriminator: 2, Definition: "song"},
			},
		},
	)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return sch
}

func generate(t *testing.T, sch *schema.Schema, opts Options) string {
	t.Helper()
	g, err := NewGenerator(sch, opts)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	src, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return string(src)
}

func mustContain(t *testing.T, src string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q", want)
		}
	}
}

func TestGenerateHeader(t *testing.T) {
	src := generate(t, libraryDefs(t), Options{Package: "library"})
	if !strings.HasPrefix(src, "// Code generated by bebopc. DO NOT EDIT.\n") {
		t.Fatalf("missing generated-code header, got prefix %q", src[:min(60, len(src))])
	}
	mustContain(t, src, "package library\n", `"github.com/synoet/bebop/wire"`)
}

func TestGenerateDefaultPackage(t *testing.T) {
	src := generate(t, libraryDefs(t), Options{})
	mustContain(t, src, "package bebopgen\n")
}

func TestGenerateEnum(t *testing.T) {
	src := generate(t, libraryDefs(t), Options{Package: "library"})
	mustContain(t, src,
		"type Instrument uint32",
		"InstrumentSax",
		"Instrument = 0",
		"InstrumentClarinet Instrument = 2",
	)
}

func TestGenerateDeclarationOrder(t *testing.T) {
	src := generate(t, libraryDefs(t), Options{Package: "library"})
	enum := strings.Index(src, "type Instrument uint32")
	record := strings.Index(src, "type Musician struct")
	if enum < 0 || record < 0 || enum > record {
		t.Fatalf("definitions out of declaration order: enum at %d, record at %d", enum, record)
	}
}

func TestGenerateStructCodec(t *testing.T) {
	src := generate(t, libraryDefs(t), Options{Package: "library"})
	mustContain(t, src,
		"func EncodeMusician(w *wire.Writer, v *Musician) error {",
		"w.WriteString(v.Name)",
		"w.WriteUint32(uint32(v.Plays))",
		"func DecodeMusician(r *wire.Reader, v *Musician) error {",
		"r.ReadString()",
		"v.Plays = Instrument(",
	)
	// Structs have no framing.
	musician := src[strings.Index(src, "func EncodeMusician"):]
	musician = musician[:strings.Index(musician, "\n}\n")]
	if strings.Contains(musician, "ReserveLength") {
		t.Error("struct encode must not reserve a length frame")
	}
}

func TestGenerateMessageCodec(t *testing.T) {
	src := generate(t, libraryDefs(t), Options{Package: "library"})
	mustContain(t, src,
		"type Song struct {",
		"Title *string",
		"Year *uint16",
		"Performers []Musician",
		"at := w.ReserveLength()",
		"if v.Title != nil {",
		"w.Byte(1)",
		"w.WriteString(*v.Title)",
		"if v.Performers != nil {",
		"w.Byte(3)",
		"w.Byte(0)",
		"w.PatchLength(at, uint32(w.Len()-start))",
	)
}

func TestGenerateMessageDecodeSkipsUnknownTags(t *testing.T) {
	src := generate(t, libraryDefs(t), Options{Package: "library"})
	decode := src[strings.Index(src, "func DecodeSong"):]
	decode = decode[:strings.Index(decode, "\n}\n")]
	mustContain(t, decode,
		"length, err := r.ReadLength()",
		"end := r.Position() + int(length)",
		"case 0:",
		"r.SetPosition(end)",
	)
}

func TestGenerateUnionCodec(t *testing.T) {
	src := generate(t, libraryDefs(t), Options{Package: "library"})
	mustContain(t, src,
		"type Entry struct {",
		"Discriminator uint8",
		"Musician *Musician",
		"Song *Song",
		"w.Byte(v.Discriminator)",
		"v.Discriminator = disc",
		"v.Song = new(Song)",
		`return errors.InvalidDiscriminator("entry", disc)`,
		`"github.com/synoet/bebop/errors"`,
	)
}

func TestGenerateMapTemporaries(t *testing.T) {
	src := generate(t, libraryDefs(t), Options{Package: "library"})
	encode := src[strings.Index(src, "func EncodeLibrary"):]
	encode = encode[:strings.Index(encode, "\n}\n")]
	mustContain(t, encode,
		"w.WriteUint32(uint32(len(v.Songs)))",
		"w.WriteGUID(k0)",
		"if err := EncodeSong(w, &e1); err != nil {",
	)
	decode := src[strings.Index(src, "func DecodeLibrary"):]
	decode = decode[:strings.Index(decode, "\n}\n")]
	mustContain(t, decode,
		"v.Songs = make(map[uuid.UUID]Song, n0)",
		"var k2 uuid.UUID",
		"var e3 Song",
		"v.Songs[k2] = e3",
	)
}

func TestGenerateByteArrayFastPath(t *testing.T) {
	sch, err := schema.New(&schema.Struct{
		Name: "frame",
		Fields: []schema.Field{
			{Name: "payload", Type: schema.Array{Element: schema.Scalar{Kind: schema.Byte}}},
		},
	})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	src := generate(t, sch, Options{Package: "media"})
	mustContain(t, src,
		"Payload []byte",
		"w.WriteByteSlice(v.Payload)",
		"r.ReadByteSlice()",
	)
	if strings.Contains(src, "for i") {
		t.Error("byte arrays must not generate an element loop")
	}
}

func TestGenerateImportsFollowUsage(t *testing.T) {
	sch, err := schema.New(&schema.Struct{
		Name: "event",
		Fields: []schema.Field{
			{Name: "id", Type: schema.Scalar{Kind: schema.GUID}},
			{Name: "at", Type: schema.Scalar{Kind: schema.Date}},
		},
	})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	src := generate(t, sch, Options{Package: "events"})
	mustContain(t, src,
		`"time"`,
		`"github.com/google/uuid"`,
		"Id uuid.UUID",
		"At time.Time",
		"w.WriteGUID(v.Id)",
		"w.WriteDate(v.At)",
	)
	if strings.Contains(src, `"github.com/synoet/bebop/errors"`) {
		t.Error("errors package imported without any union in the schema")
	}
	if strings.Contains(src, `"math"`) {
		t.Error("math imported without any float special literal")
	}
}

func TestGenerateConsts(t *testing.T) {
	sch, err := schema.New(
		&schema.Const{Name: "release", Kind: schema.String, Value: schema.Literal{Kind: schema.LiteralString, Str: "1.0-rc2"}},
		&schema.Const{Name: "maxScore", Kind: schema.Float64, Value: schema.Literal{Kind: schema.LiteralFloat, FloatText: "inf"}},
		&schema.Const{Name: "libraryID", Kind: schema.GUID, Value: schema.Literal{
			Kind: schema.LiteralGUID,
			GUID: uuid.MustParse("81c6987b-48b7-495f-ad01-ec20cc5f5be1"),
		}},
		&schema.Const{Name: "epochTicks", Kind: schema.Date, Value: schema.Literal{Kind: schema.LiteralUint, Uint: 621355968000000000}},
		&schema.Const{Name: "minGain", Kind: schema.Float32, Value: schema.Literal{Kind: schema.LiteralFloat, FloatText: "-inf"}},
	)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	src := generate(t, sch, Options{Package: "consts"})
	mustContain(t, src,
		`const Release string = "1.0-rc2"`,
		"var MaxScore float64 = math.Inf(1)",
		`"math"`,
		`var LibraryID uuid.UUID = uuid.MustParse("81c6987b-48b7-495f-ad01-ec20cc5f5be1")`,
		"const EpochTicks uint64 = 621355968000000000",
		"var MinGain float32 = float32(math.Inf(-1))",
	)
	// No records, so nothing in the file touches the wire package.
	if strings.Contains(src, "bebop/wire") {
		t.Error("wire imported by a consts-only schema")
	}
}

func TestLoweredLiteral(t *testing.T) {
	tests := []struct {
		name string
		kind schema.ScalarKind
		lit  schema.Literal
		want string
	}{
		{"bool true", schema.Bool, schema.Literal{Kind: schema.LiteralBool, Bool: true}, "true"},
		{"bool false", schema.Bool, schema.Literal{Kind: schema.LiteralBool}, "false"},
		{"int32", schema.Int32, schema.Literal{Kind: schema.LiteralInt, Int: -42}, "-42"},
		{"wide int", schema.Int64, schema.Literal{Kind: schema.LiteralInt, Int: -9007199254740993}, "-9007199254740993"},
		{"wide uint", schema.Uint64, schema.Literal{Kind: schema.LiteralUint, Uint: 18446744073709551615}, "18446744073709551615"},
		{"float", schema.Float64, schema.Literal{Kind: schema.LiteralFloat, Float: 2.5}, "2.5"},
		{"float inf", schema.Float64, schema.Literal{Kind: schema.LiteralFloat, FloatText: "inf"}, "math.Inf(1)"},
		{"float -inf", schema.Float64, schema.Literal{Kind: schema.LiteralFloat, FloatText: "-inf"}, "math.Inf(-1)"},
		{"float nan", schema.Float64, schema.Literal{Kind: schema.LiteralFloat, FloatText: "nan"}, "math.NaN()"},
		{"float32 inf", schema.Float32, schema.Literal{Kind: schema.LiteralFloat, FloatText: "inf"}, "float32(math.Inf(1))"},
		{"float32 nan", schema.Float32, schema.Literal{Kind: schema.LiteralFloat, FloatText: "nan"}, "float32(math.NaN())"},
		{"string", schema.String, schema.Literal{Kind: schema.LiteralString, Str: "hello\nworld"}, `"hello\nworld"`},
	}
	g := &Generator{imports: map[string]bool{}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.loweredLiteral(tt.kind, tt.lit)
			if err != nil {
				t.Fatalf("loweredLiteral: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
	if !g.imports["math"] {
		t.Error("float specials must record the math import")
	}
}

func TestLoweredLiteralRejectsNarrowOverflow(t *testing.T) {
	tests := []struct {
		name string
		kind schema.ScalarKind
		lit  schema.Literal
	}{
		{"byte too large", schema.Byte, schema.Literal{Kind: schema.LiteralInt, Int: 300}},
		{"byte negative", schema.Byte, schema.Literal{Kind: schema.LiteralInt, Int: -1}},
		{"int16 too large", schema.Int16, schema.Literal{Kind: schema.LiteralInt, Int: 40000}},
		{"uint16 negative", schema.Uint16, schema.Literal{Kind: schema.LiteralInt, Int: -5}},
		{"int32 too large", schema.Int32, schema.Literal{Kind: schema.LiteralInt, Int: 1 << 40}},
		{"uint32 too large", schema.Uint32, schema.Literal{Kind: schema.LiteralInt, Int: 1 << 33}},
	}
	g := &Generator{imports: map[string]bool{}}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.loweredLiteral(tc.kind, tc.lit)
			if err == nil {
				t.Fatal("expected overflow error")
			}
			if !errors.Is(err, &beberrors.Error{Phase: beberrors.PhaseGenerate, Kind: beberrors.KindOverflow}) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	// Boundary values stay renderable.
	for _, ok := range []struct {
		kind schema.ScalarKind
		v    int64
	}{
		{schema.Byte, 255},
		{schema.Int16, -32768},
		{schema.Uint16, 65535},
		{schema.Int32, 2147483647},
		{schema.Uint32, 4294967295},
	} {
		if _, err := g.loweredLiteral(ok.kind, schema.Literal{Kind: schema.LiteralInt, Int: ok.v}); err != nil {
			t.Errorf("%s %d: %v", ok.kind, ok.v, err)
		}
	}
}
