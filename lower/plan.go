package lower

import (
	"github.com/synoet/bebop/errors"
	"github.com/synoet/bebop/schema"
)

// RecordKind identifies the framing a record uses on the wire.
type RecordKind uint8

const (
	RecordStruct  RecordKind = iota // fixed field order, no framing
	RecordMessage                   // length frame, tagged optional fields, terminator
	RecordUnion                     // length frame, discriminator, branch payload
)

var recordKindNames = [...]string{
	RecordStruct:  "struct",
	RecordMessage: "message",
	RecordUnion:   "union",
}

func (k RecordKind) String() string {
	if int(k) < len(recordKindNames) {
		return recordKindNames[k]
	}
	return "unknown"
}

// FieldPlan is one encodable field of a struct or message: its declared name
// and tag plus the classified strategy for its type. Deprecated fields never
// appear in a plan.
type FieldPlan struct {
	Name     string
	Tag      uint8
	Strategy *Strategy
}

// BranchPlan is one alternative of a union.
type BranchPlan struct {
	Discriminator uint8
	Target        string
}

// RecordPlan is the complete lowering of one record definition: everything
// the dynamic codec and the source renderer need to drive one encode and one
// decode pass, in declaration order.
type RecordPlan struct {
	Kind     RecordKind
	Name     string
	Fields   []FieldPlan
	Branches []BranchPlan
}

// PlanRecord lowers a single record definition. It is a pure function of the
// definition plus read access to the schema's table; it holds no state
// across definitions, so independent records may be planned concurrently.
func PlanRecord(sch *schema.Schema, def schema.Definition) (*RecordPlan, error) {
	switch def := def.(type) {
	case *schema.Struct:
		fields, err := planFields(sch, def.Name, def.Fields)
		if err != nil {
			return nil, err
		}
		return &RecordPlan{Kind: RecordStruct, Name: def.Name, Fields: fields}, nil

	case *schema.Message:
		fields, err := planFields(sch, def.Name, def.Fields)
		if err != nil {
			return nil, err
		}
		return &RecordPlan{Kind: RecordMessage, Name: def.Name, Fields: fields}, nil

	case *schema.Union:
		branches := make([]BranchPlan, 0, len(def.Branches))
		for _, b := range def.Branches {
			target, ok := sch.Resolve(b.Definition)
			if !ok {
				return nil, errors.UnresolvedReference(errors.PhaseLower, def.Name, b.Definition)
			}
			switch target.(type) {
			case *schema.Struct, *schema.Message, *schema.Union:
			default:
				return nil, errors.New(errors.PhaseLower, errors.KindUnsupported).
					Definition(def.Name).
					Detail("branch %d references non-record %q", b.Discriminator, b.Definition).
					Build()
			}
			branches = append(branches, BranchPlan{Discriminator: b.Discriminator, Target: b.Definition})
		}
		return &RecordPlan{Kind: RecordUnion, Name: def.Name, Branches: branches}, nil

	default:
		return nil, errors.Unsupported(errors.PhaseLower, "definition kind has no record plan")
	}
}

func planFields(sch *schema.Schema, definition string, fields []schema.Field) ([]FieldPlan, error) {
	plans := make([]FieldPlan, 0, len(fields))
	for _, f := range fields {
		if f.Deprecated {
			continue
		}
		strat, err := Classify(sch, f.Type)
		if err != nil {
			if e, ok := err.(*errors.Error); ok && e.Definition == "" {
				e.Definition = definition
				e.Path = append([]string{f.Name}, e.Path...)
			}
			return nil, err
		}
		plans = append(plans, FieldPlan{Name: f.Name, Tag: f.Tag, Strategy: strat})
	}
	return plans, nil
}

// PlanSchema lowers every record definition in the schema, keyed by name.
// Enums and consts produce no plan; they surface only as aliased scalars and
// lowered literals.
func PlanSchema(sch *schema.Schema) (map[string]*RecordPlan, error) {
	plans := make(map[string]*RecordPlan)
	for _, def := range sch.Definitions {
		switch def.(type) {
		case *schema.Struct, *schema.Message, *schema.Union:
			plan, err := PlanRecord(sch, def)
			if err != nil {
				return nil, err
			}
			plans[def.DefinitionName()] = plan
		}
	}
	return plans, nil
}
