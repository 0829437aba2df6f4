package codec

import (
	"strconv"

	"github.com/synoet/bebop/errors"
	"github.com/synoet/bebop/lower"
	"github.com/synoet/bebop/schema"
	"github.com/synoet/bebop/wire"
)

// Decode reconstructs a dynamic value of the named record type from buf.
func (c *Codec) Decode(name string, buf []byte) (any, error) {
	return c.DecodeFrom(wire.NewReader(buf), name)
}

// DecodeFrom reconstructs a value starting at the reader's cursor, leaving
// the cursor just past the record's bytes.
func (c *Codec) DecodeFrom(r *wire.Reader, name string) (any, error) {
	plan, ok := c.plans[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseDecode, "record", name)
	}
	return c.decodeRecord(r, plan, nil)
}

func (c *Codec) decodeRecord(r *wire.Reader, plan *lower.RecordPlan, path []string) (any, error) {
	switch plan.Kind {
	case lower.RecordStruct:
		return c.decodeStruct(r, plan, path)
	case lower.RecordMessage:
		return c.decodeMessage(r, plan, path)
	case lower.RecordUnion:
		return c.decodeUnion(r, plan, path)
	default:
		return nil, errors.Unsupported(errors.PhaseDecode, "record kind: "+plan.Kind.String())
	}
}

// decodeStruct reads each field in declaration order with no tag checks; it
// relies entirely on structural agreement between producer and consumer.
func (c *Codec) decodeStruct(r *wire.Reader, plan *lower.RecordPlan, path []string) (any, error) {
	fields := make(map[string]any, len(plan.Fields))
	for _, f := range plan.Fields {
		v, err := c.decodeValue(r, f.Strategy, append(path, f.Name))
		if err != nil {
			return nil, err
		}
		fields[f.Name] = v
	}
	return fields, nil
}

// decodeMessage reads the length frame and consumes (tag, value) pairs until
// the zero terminator. The first unrecognized tag discards the entire
// remainder of the message: the cursor jumps to the recorded end offset and
// the fields accumulated so far are returned. This is the coarse
// forward-compatibility contract - trailing newer-schema fields are ignored
// as a block, not skipped individually.
func (c *Codec) decodeMessage(r *wire.Reader, plan *lower.RecordPlan, path []string) (any, error) {
	length, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	end := r.Position() + int(length)

	fields := make(map[string]any, len(plan.Fields))
	for {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if tag == 0 {
			return fields, nil
		}
		f, ok := fieldByTag(plan, tag)
		if !ok {
			r.SetPosition(end)
			return fields, nil
		}
		v, err := c.decodeValue(r, f.Strategy, append(path, f.Name))
		if err != nil {
			return nil, err
		}
		fields[f.Name] = v
	}
}

// decodeUnion reads the length frame and discriminator, then dispatches to
// the matching branch's record decoder. An unrecognized discriminator is
// unrecoverable: the cursor moves to the recorded end offset and a decode
// error propagates to the caller.
func (c *Codec) decodeUnion(r *wire.Reader, plan *lower.RecordPlan, path []string) (any, error) {
	length, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	end := r.Position() + int(length)

	disc, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	for _, b := range plan.Branches {
		if b.Discriminator != disc {
			continue
		}
		branch, ok := c.plans[b.Target]
		if !ok {
			return nil, errors.NotFound(errors.PhaseDecode, "record", b.Target)
		}
		v, err := c.decodeRecord(r, branch, append(path, b.Target))
		if err != nil {
			return nil, err
		}
		return UnionValue{Discriminator: disc, Value: v}, nil
	}
	r.SetPosition(end)
	return nil, errors.InvalidDiscriminator(plan.Name, disc)
}

func fieldByTag(plan *lower.RecordPlan, tag uint8) (lower.FieldPlan, bool) {
	for _, f := range plan.Fields {
		if f.Tag == tag {
			return f, true
		}
	}
	return lower.FieldPlan{}, false
}

func (c *Codec) decodeValue(r *wire.Reader, strat *lower.Strategy, path []string) (any, error) {
	switch strat.Shape {
	case lower.ShapeScalar:
		return c.decodeScalar(r, strat.Scalar)

	case lower.ShapeEnum:
		// Reinterpret the scalar as the enum's value; membership against
		// the declared member set is not validated.
		return c.decodeScalar(r, strat.Scalar)

	case lower.ShapeByteArray:
		return r.ReadByteSlice()

	case lower.ShapeArray:
		count, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		// Every element occupies at least one byte, so a count beyond the
		// remaining bytes is malformed. Checked before allocating.
		if int(count) > r.Remaining() {
			return nil, errors.OutOfBounds(errors.PhaseDecode, path, int(count), r.Remaining())
		}
		items := make([]any, int(count))
		for i := range items {
			v, err := c.decodeValue(r, strat.Element, append(path, "["+strconv.Itoa(i)+"]"))
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil

	case lower.ShapeMap:
		count, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		if int(count) > r.Remaining() {
			return nil, errors.OutOfBounds(errors.PhaseDecode, path, int(count), r.Remaining())
		}
		entries := make(map[any]any, int(count))
		for i := 0; i < int(count); i++ {
			k, err := c.decodeValue(r, strat.Key, append(path, "key"))
			if err != nil {
				return nil, err
			}
			v, err := c.decodeValue(r, strat.Value, append(path, "value"))
			if err != nil {
				return nil, err
			}
			entries[k] = v
		}
		return entries, nil

	case lower.ShapeRecord:
		plan, ok := c.plans[strat.Target]
		if !ok {
			return nil, errors.NotFound(errors.PhaseDecode, "record", strat.Target)
		}
		return c.decodeRecord(r, plan, path)

	default:
		return nil, errors.Unsupported(errors.PhaseDecode, "strategy shape: "+strat.Shape.String())
	}
}

func (c *Codec) decodeScalar(r *wire.Reader, kind schema.ScalarKind) (any, error) {
	switch kind {
	case schema.Bool:
		return r.ReadBool()
	case schema.Byte:
		return r.ReadByte()
	case schema.Int16:
		return r.ReadInt16()
	case schema.Uint16:
		return r.ReadUint16()
	case schema.Int32:
		return r.ReadInt32()
	case schema.Uint32:
		return r.ReadUint32()
	case schema.Int64:
		return r.ReadInt64()
	case schema.Uint64:
		return r.ReadUint64()
	case schema.Float32:
		return r.ReadFloat32()
	case schema.Float64:
		return r.ReadFloat64()
	case schema.String:
		return r.ReadString()
	case schema.GUID:
		return r.ReadGUID()
	case schema.Date:
		return r.ReadDate()
	default:
		return nil, errors.Unsupported(errors.PhaseDecode, "scalar kind: "+kind.String())
	}
}
