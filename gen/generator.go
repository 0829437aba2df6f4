package gen

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/synoet/bebop/errors"
	"github.com/synoet/bebop/lower"
	"github.com/synoet/bebop/schema"
)

// Options configure source rendering.
type Options struct {
	// Package is the package name of the generated file.
	Package string
}

// Generator renders a schema's record plans as Go source: one type
// declaration and one Encode/Decode function pair per record, enum types
// with member constants, and lowered constants.
type Generator struct {
	sch     *schema.Schema
	plans   map[string]*lower.RecordPlan
	opts    Options
	imports map[string]bool
}

// NewGenerator lowers the schema and returns a renderer over the plans.
func NewGenerator(sch *schema.Schema, opts Options) (*Generator, error) {
	if opts.Package == "" {
		opts.Package = "bebopgen"
	}
	plans, err := lower.PlanSchema(sch)
	if err != nil {
		return nil, err
	}
	return &Generator{
		sch:     sch,
		plans:   plans,
		opts:    opts,
		imports: make(map[string]bool),
	}, nil
}

// Generate renders the complete generated file.
func (g *Generator) Generate() ([]byte, error) {
	body := &buf{}
	for _, def := range g.sch.Definitions {
		var err error
		switch def := def.(type) {
		case *schema.Enum:
			err = g.renderEnum(body, def)
		case *schema.Struct:
			err = g.renderRecord(body, def.Name, def.Doc)
		case *schema.Message:
			err = g.renderRecord(body, def.Name, def.Doc)
		case *schema.Union:
			err = g.renderRecord(body, def.Name, def.Doc)
		case *schema.Const:
			err = g.renderConst(body, def)
		default:
			err = errors.Unsupported(errors.PhaseGenerate, "definition kind")
		}
		if err != nil {
			return nil, err
		}
	}

	out := &buf{}
	out.line("// Code generated by bebopc. DO NOT EDIT.")
	out.line("")
	out.line("package %s", g.opts.Package)
	out.line("")
	g.renderImports(out)
	out.b.WriteString(body.b.String())

	Logger().Debug("rendered schema",
		zap.Int("definitions", len(g.sch.Definitions)),
		zap.Int("records", len(g.plans)),
		zap.String("package", g.opts.Package))
	return []byte(out.b.String()), nil
}

func (g *Generator) renderImports(out *buf) {
	var std, thirdParty, local []string
	if g.imports["math"] {
		std = append(std, `"math"`)
	}
	if g.imports["time"] {
		std = append(std, `"time"`)
	}
	if g.imports["uuid"] {
		thirdParty = append(thirdParty, `"github.com/google/uuid"`)
	}
	if g.imports["errors"] {
		local = append(local, `"github.com/synoet/bebop/errors"`)
	}
	if g.imports["wire"] {
		local = append(local, `"github.com/synoet/bebop/wire"`)
	}
	if len(std)+len(thirdParty)+len(local) == 0 {
		return
	}

	out.line("import (")
	out.in()
	groups := [][]string{std, thirdParty, local}
	first := true
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		if !first {
			out.line("")
		}
		first = false
		for _, imp := range group {
			out.line("%s", imp)
		}
	}
	out.out()
	out.line(")")
	out.line("")
}

func (g *Generator) renderEnum(out *buf, def *schema.Enum) error {
	if def.Doc != "" {
		renderDoc(out, def.Doc)
	}
	name := exportName(def.Name)
	out.line("type %s %s", name, goScalarName(def.Backing))
	out.line("")
	if len(def.Members) == 0 {
		return nil
	}

	width := 0
	for _, m := range def.Members {
		if n := len(name + exportName(m.Name)); n > width {
			width = n
		}
	}
	out.line("const (")
	out.in()
	for _, m := range def.Members {
		lit, err := g.loweredLiteral(def.Backing, memberLiteral(def.Backing, m.Value))
		if err != nil {
			return err
		}
		member := name + exportName(m.Name)
		out.line("%-*s %s = %s", width, member, name, lit)
	}
	out.out()
	out.line(")")
	out.line("")
	return nil
}

// memberLiteral picks the literal representation for an enum member value in
// the enum's backing scalar.
func memberLiteral(backing schema.ScalarKind, value int64) schema.Literal {
	if backing == schema.Uint64 {
		return schema.Literal{Kind: schema.LiteralUint, Uint: uint64(value)}
	}
	return schema.Literal{Kind: schema.LiteralInt, Int: value}
}

func (g *Generator) renderConst(out *buf, def *schema.Const) error {
	if def.Doc != "" {
		renderDoc(out, def.Doc)
	}
	name := exportName(def.Name)
	lit, err := g.loweredLiteral(def.Kind, def.Value)
	if err != nil {
		return err
	}
	switch {
	case def.Value.Kind == schema.LiteralGUID:
		g.imports["uuid"] = true
		out.line("var %s uuid.UUID = uuid.MustParse(%s)", name, lit)
	case def.Value.Kind == schema.LiteralFloat && def.Value.FloatText != "":
		out.line("var %s %s = %s", name, goScalarName(def.Kind), lit)
	case def.Kind == schema.Date:
		// Date constants surface as their raw tick count.
		out.line("const %s uint64 = %s", name, lit)
	default:
		out.line("const %s %s = %s", name, goScalarName(def.Kind), lit)
	}
	out.line("")
	return nil
}

func (g *Generator) renderRecord(out *buf, name, doc string) error {
	plan := g.plans[name]
	if plan == nil {
		return errors.NotFound(errors.PhaseGenerate, "record plan", name)
	}
	// Only record codecs touch the wire package; enums and consts alone
	// must not drag the import in.
	g.imports["wire"] = true
	if err := g.renderRecordType(out, plan, doc); err != nil {
		return err
	}
	if err := g.renderEncode(out, plan); err != nil {
		return err
	}
	return g.renderDecode(out, plan)
}

func (g *Generator) renderRecordType(out *buf, plan *lower.RecordPlan, doc string) error {
	if doc != "" {
		renderDoc(out, doc)
	}
	name := exportName(plan.Name)
	out.line("type %s struct {", name)
	out.in()
	switch plan.Kind {
	case lower.RecordStruct:
		for _, f := range plan.Fields {
			out.line("%s %s", exportName(f.Name), g.goType(f.Strategy))
		}
	case lower.RecordMessage:
		// Message fields are optional by construction: nil means absent.
		for _, f := range plan.Fields {
			if pointerField(f.Strategy) {
				out.line("%s *%s", exportName(f.Name), g.goType(f.Strategy))
			} else {
				out.line("%s %s", exportName(f.Name), g.goType(f.Strategy))
			}
		}
	case lower.RecordUnion:
		out.line("Discriminator uint8")
		for _, b := range plan.Branches {
			out.line("%s *%s", exportName(b.Target), exportName(b.Target))
		}
	}
	out.out()
	out.line("}")
	out.line("")
	return nil
}

// pointerField reports whether a message field uses a pointer to express
// absence. Slices, maps, and byte blobs are already nil-able.
func pointerField(strat *lower.Strategy) bool {
	switch strat.Shape {
	case lower.ShapeByteArray, lower.ShapeArray, lower.ShapeMap:
		return false
	default:
		return true
	}
}

func (g *Generator) renderEncode(out *buf, plan *lower.RecordPlan) error {
	name := exportName(plan.Name)
	out.line("// Encode%s writes v to w.", name)
	out.line("func Encode%s(w *wire.Writer, v *%s) error {", name, name)
	out.in()
	e := &emitter{g: g, b: out}

	switch plan.Kind {
	case lower.RecordStruct:
		// Strict declaration order, no tags, no framing.
		for _, f := range plan.Fields {
			field := "v." + exportName(f.Name)
			if err := e.encodeValue(f.Strategy, field, "&"+field); err != nil {
				return err
			}
		}

	case lower.RecordMessage:
		out.line("at := w.ReserveLength()")
		out.line("start := w.Len()")
		for _, f := range plan.Fields {
			field := "v." + exportName(f.Name)
			out.line("if %s != nil {", field)
			out.in()
			out.line("w.Byte(%d)", f.Tag)
			val, ptr := field, "&"+field
			if pointerField(f.Strategy) {
				val, ptr = "*"+field, field
			}
			if err := e.encodeValue(f.Strategy, val, ptr); err != nil {
				return err
			}
			out.out()
			out.line("}")
		}
		out.line("w.Byte(0)")
		out.line("w.PatchLength(at, uint32(w.Len()-start))")

	case lower.RecordUnion:
		out.line("at := w.ReserveLength()")
		out.line("start := w.Len()")
		out.line("w.Byte(v.Discriminator)")
		out.line("switch v.Discriminator {")
		for _, b := range plan.Branches {
			target := exportName(b.Target)
			out.line("case %d:", b.Discriminator)
			out.in()
			out.line("if err := Encode%s(w, v.%s); err != nil {", target, target)
			out.in()
			out.line("return err")
			out.out()
			out.line("}")
			out.out()
		}
		out.line("default:")
		out.in()
		g.imports["errors"] = true
		out.line("return errors.New(errors.PhaseEncode, errors.KindInvalidDiscriminator).Definition(%q).Detail(\"discriminator %%d matches no branch\", v.Discriminator).Build()", plan.Name)
		out.out()
		out.line("}")
		out.line("w.PatchLength(at, uint32(w.Len()-start))")
	}

	out.line("return nil")
	out.out()
	out.line("}")
	out.line("")
	return nil
}

func (g *Generator) renderDecode(out *buf, plan *lower.RecordPlan) error {
	name := exportName(plan.Name)
	out.line("// Decode%s reads v from r.", name)
	out.line("func Decode%s(r *wire.Reader, v *%s) error {", name, name)
	out.in()
	e := &emitter{g: g, b: out}

	switch plan.Kind {
	case lower.RecordStruct:
		// No tag checks: relies on structural agreement with the producer.
		for _, f := range plan.Fields {
			if err := e.decodeValue(f.Strategy, "v."+exportName(f.Name)); err != nil {
				return err
			}
		}
		out.line("return nil")

	case lower.RecordMessage:
		out.line("length, err := r.ReadLength()")
		out.line("if err != nil {")
		out.in()
		out.line("return err")
		out.out()
		out.line("}")
		out.line("end := r.Position() + int(length)")
		out.line("for {")
		out.in()
		out.line("tag, err := r.ReadByte()")
		out.line("if err != nil {")
		out.in()
		out.line("return err")
		out.out()
		out.line("}")
		out.line("switch tag {")
		out.line("case 0:")
		out.in()
		out.line("return nil")
		out.out()
		for _, f := range plan.Fields {
			out.line("case %d:", f.Tag)
			out.in()
			if err := e.decodeMessageField(f); err != nil {
				return err
			}
			out.out()
		}
		out.line("default:")
		out.in()
		out.line("// Unknown tag: discard the rest of the message.")
		out.line("r.SetPosition(end)")
		out.line("return nil")
		out.out()
		out.line("}")
		out.out()
		out.line("}")

	case lower.RecordUnion:
		g.imports["errors"] = true
		out.line("length, err := r.ReadLength()")
		out.line("if err != nil {")
		out.in()
		out.line("return err")
		out.out()
		out.line("}")
		out.line("end := r.Position() + int(length)")
		out.line("disc, err := r.ReadByte()")
		out.line("if err != nil {")
		out.in()
		out.line("return err")
		out.out()
		out.line("}")
		out.line("v.Discriminator = disc")
		out.line("switch disc {")
		for _, b := range plan.Branches {
			target := exportName(b.Target)
			out.line("case %d:", b.Discriminator)
			out.in()
			out.line("v.%s = new(%s)", target, target)
			out.line("if err := Decode%s(r, v.%s); err != nil {", target, target)
			out.in()
			out.line("return err")
			out.out()
			out.line("}")
			out.out()
		}
		out.line("default:")
		out.in()
		out.line("r.SetPosition(end)")
		out.line("return errors.InvalidDiscriminator(%q, disc)", plan.Name)
		out.out()
		out.line("}")
		out.line("return nil")
	}

	out.out()
	out.line("}")
	out.line("")
	return nil
}

// emitter renders the operation sequence for one record function. Each
// nesting level gets fresh loop and temporary identifiers.
type emitter struct {
	g *Generator
	b *buf
	n int
}

func (e *emitter) fresh(prefix string) string {
	name := fmt.Sprintf("%s%d", prefix, e.n)
	e.n++
	return name
}

// encodeValue emits the write sequence for one value. val is a Go expression
// of the value's non-pointer type; ptr is an expression for its address,
// used for nested record calls.
func (e *emitter) encodeValue(strat *lower.Strategy, val, ptr string) error {
	b := e.b
	switch strat.Shape {
	case lower.ShapeScalar:
		b.line("%s", scalarWrite(strat.Scalar, val))
		return nil

	case lower.ShapeEnum:
		// Underlying scalar representation, never the symbolic name.
		cast := fmt.Sprintf("%s(%s)", goScalarName(strat.Scalar), val)
		b.line("%s", scalarWrite(strat.Scalar, cast))
		return nil

	case lower.ShapeByteArray:
		b.line("w.WriteByteSlice(%s)", val)
		return nil

	case lower.ShapeArray:
		i := e.fresh("i")
		b.line("w.WriteUint32(uint32(len(%s)))", val)
		b.line("for %s := range %s {", i, val)
		b.in()
		elem := fmt.Sprintf("%s[%s]", val, i)
		if err := e.encodeValue(strat.Element, elem, "&"+elem); err != nil {
			return err
		}
		b.out()
		b.line("}")
		return nil

	case lower.ShapeMap:
		k := e.fresh("k")
		m := e.fresh("e")
		b.line("w.WriteUint32(uint32(len(%s)))", val)
		b.line("for %s, %s := range %s {", k, m, val)
		b.in()
		if err := e.encodeValue(strat.Key, k, "&"+k); err != nil {
			return err
		}
		if err := e.encodeValue(strat.Value, m, "&"+m); err != nil {
			return err
		}
		b.out()
		b.line("}")
		return nil

	case lower.ShapeRecord:
		b.line("if err := Encode%s(w, %s); err != nil {", exportName(strat.Target), ptr)
		b.in()
		b.line("return err")
		b.out()
		b.line("}")
		return nil

	default:
		return errors.Unsupported(errors.PhaseGenerate, "strategy shape: "+strat.Shape.String())
	}
}

// decodeValue emits the read sequence assigning into dst, an addressable
// expression of the value's non-pointer type.
func (e *emitter) decodeValue(strat *lower.Strategy, dst string) error {
	b := e.b
	switch strat.Shape {
	case lower.ShapeScalar:
		t := e.fresh("t")
		b.line("%s, err := %s", t, scalarRead(strat.Scalar))
		e.errCheck()
		b.line("%s = %s", dst, t)
		return nil

	case lower.ShapeEnum:
		t := e.fresh("t")
		b.line("%s, err := %s", t, scalarRead(strat.Scalar))
		e.errCheck()
		b.line("%s = %s(%s)", dst, exportName(strat.Target), t)
		return nil

	case lower.ShapeByteArray:
		t := e.fresh("t")
		b.line("%s, err := r.ReadByteSlice()", t)
		e.errCheck()
		b.line("%s = %s", dst, t)
		return nil

	case lower.ShapeArray:
		n := e.fresh("n")
		i := e.fresh("i")
		b.line("%s, err := r.ReadUint32()", n)
		e.errCheck()
		b.line("%s = make(%s, %s)", dst, e.g.goType(strat), n)
		b.line("for %s := range %s {", i, dst)
		b.in()
		if err := e.decodeValue(strat.Element, fmt.Sprintf("%s[%s]", dst, i)); err != nil {
			return err
		}
		b.out()
		b.line("}")
		return nil

	case lower.ShapeMap:
		n := e.fresh("n")
		j := e.fresh("j")
		k := e.fresh("k")
		m := e.fresh("e")
		b.line("%s, err := r.ReadUint32()", n)
		e.errCheck()
		b.line("%s = make(%s, %s)", dst, e.g.goType(strat), n)
		b.line("for %s := uint32(0); %s < %s; %s++ {", j, j, n, j)
		b.in()
		b.line("var %s %s", k, e.g.goType(strat.Key))
		if err := e.decodeValue(strat.Key, k); err != nil {
			return err
		}
		b.line("var %s %s", m, e.g.goType(strat.Value))
		if err := e.decodeValue(strat.Value, m); err != nil {
			return err
		}
		b.line("%s[%s] = %s", dst, k, m)
		b.out()
		b.line("}")
		return nil

	case lower.ShapeRecord:
		b.line("if err := Decode%s(r, &%s); err != nil {", exportName(strat.Target), dst)
		b.in()
		b.line("return err")
		b.out()
		b.line("}")
		return nil

	default:
		return errors.Unsupported(errors.PhaseGenerate, "strategy shape: "+strat.Shape.String())
	}
}

// decodeMessageField emits one tag case body, assigning into the optional
// field.
func (e *emitter) decodeMessageField(f lower.FieldPlan) error {
	b := e.b
	field := "v." + exportName(f.Name)
	switch f.Strategy.Shape {
	case lower.ShapeScalar:
		t := e.fresh("t")
		b.line("%s, err := %s", t, scalarRead(f.Strategy.Scalar))
		e.errCheck()
		b.line("%s = &%s", field, t)
		return nil

	case lower.ShapeEnum:
		t := e.fresh("t")
		u := e.fresh("t")
		b.line("%s, err := %s", t, scalarRead(f.Strategy.Scalar))
		e.errCheck()
		b.line("%s := %s(%s)", u, exportName(f.Strategy.Target), t)
		b.line("%s = &%s", field, u)
		return nil

	case lower.ShapeRecord:
		target := exportName(f.Strategy.Target)
		b.line("%s = new(%s)", field, target)
		b.line("if err := Decode%s(r, %s); err != nil {", target, field)
		b.in()
		b.line("return err")
		b.out()
		b.line("}")
		return nil

	default:
		// Slices, maps, and byte blobs decode in place; nil-ability covers
		// absence.
		return e.decodeValue(f.Strategy, field)
	}
}

func (e *emitter) errCheck() {
	e.b.line("if err != nil {")
	e.b.in()
	e.b.line("return err")
	e.b.out()
	e.b.line("}")
}

// goType renders the Go type a strategy maps to.
func (g *Generator) goType(strat *lower.Strategy) string {
	switch strat.Shape {
	case lower.ShapeScalar:
		switch strat.Scalar {
		case schema.GUID:
			g.imports["uuid"] = true
		case schema.Date:
			g.imports["time"] = true
		}
		return goScalarName(strat.Scalar)
	case lower.ShapeEnum:
		return exportName(strat.Target)
	case lower.ShapeByteArray:
		return "[]byte"
	case lower.ShapeArray:
		return "[]" + g.goType(strat.Element)
	case lower.ShapeMap:
		return fmt.Sprintf("map[%s]%s", g.goType(strat.Key), g.goType(strat.Value))
	case lower.ShapeRecord:
		return exportName(strat.Target)
	default:
		return "any"
	}
}

func goScalarName(kind schema.ScalarKind) string {
	switch kind {
	case schema.Bool:
		return "bool"
	case schema.Byte:
		return "byte"
	case schema.Int16:
		return "int16"
	case schema.Uint16:
		return "uint16"
	case schema.Int32:
		return "int32"
	case schema.Uint32:
		return "uint32"
	case schema.Int64:
		return "int64"
	case schema.Uint64:
		return "uint64"
	case schema.Float32:
		return "float32"
	case schema.Float64:
		return "float64"
	case schema.String:
		return "string"
	case schema.GUID:
		return "uuid.UUID"
	case schema.Date:
		return "time.Time"
	default:
		return "any"
	}
}

func scalarWrite(kind schema.ScalarKind, val string) string {
	switch kind {
	case schema.Byte:
		return fmt.Sprintf("w.Byte(%s)", val)
	default:
		return fmt.Sprintf("w.Write%s(%s)", scalarMethod(kind), val)
	}
}

func scalarRead(kind schema.ScalarKind) string {
	return fmt.Sprintf("r.Read%s()", scalarMethod(kind))
}

func scalarMethod(kind schema.ScalarKind) string {
	switch kind {
	case schema.Bool:
		return "Bool"
	case schema.Byte:
		return "Byte"
	case schema.Int16:
		return "Int16"
	case schema.Uint16:
		return "Uint16"
	case schema.Int32:
		return "Int32"
	case schema.Uint32:
		return "Uint32"
	case schema.Int64:
		return "Int64"
	case schema.Uint64:
		return "Uint64"
	case schema.Float32:
		return "Float32"
	case schema.Float64:
		return "Float64"
	case schema.String:
		return "String"
	case schema.GUID:
		return "GUID"
	case schema.Date:
		return "Date"
	default:
		return "Unknown"
	}
}

// exportName makes a declared identifier exported. Full casing conventions
// are a concern of the output packaging layer, not the lowering core.
func exportName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func renderDoc(out *buf, doc string) {
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		if line == "" {
			out.line("//")
			continue
		}
		out.line("// %s", line)
	}
}

// buf accumulates indented source lines.
type buf struct {
	b      strings.Builder
	indent int
}

func (b *buf) in()  { b.indent++ }
func (b *buf) out() { b.indent-- }

func (b *buf) line(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	if s == "" {
		b.b.WriteByte('\n')
		return
	}
	for i := 0; i < b.indent; i++ {
		b.b.WriteByte('\t')
	}
	b.b.WriteString(s)
	b.b.WriteByte('\n')
}
