package codec

import (
	"go.uber.org/zap"

	"github.com/synoet/bebop/errors"
	"github.com/synoet/bebop/lower"
	"github.com/synoet/bebop/schema"
)

// UnionValue is the dynamic form of a union: the discriminator of the active
// branch and that branch's record value.
type UnionValue struct {
	Discriminator uint8
	Value         any
}

// Codec encodes and decodes dynamic values for every record in a schema by
// executing the schema's record plans directly against the wire format.
//
// Value forms:
//
//	bool, byte .. float64   matching Go scalar (byte as uint8)
//	string                  string
//	guid                    uuid.UUID
//	date                    time.Time
//	byte array              []byte
//	array                   []any
//	map                     map[any]any
//	struct, message         map[string]any (message fields absent = omitted)
//	union                   UnionValue
//	enum                    the backing scalar's Go type
//
// A Codec is immutable after New and safe for concurrent use; each call owns
// its writer or reader cursor exclusively.
type Codec struct {
	sch   *schema.Schema
	plans map[string]*lower.RecordPlan
}

// New lowers every record in the schema and returns a codec over the plans.
func New(sch *schema.Schema) (*Codec, error) {
	plans, err := lower.PlanSchema(sch)
	if err != nil {
		return nil, err
	}
	Logger().Debug("planned schema", zap.Int("records", len(plans)))
	return &Codec{sch: sch, plans: plans}, nil
}

func (c *Codec) plan(name string) (*lower.RecordPlan, error) {
	plan, ok := c.plans[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseEncode, "record", name)
	}
	return plan, nil
}
