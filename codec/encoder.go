package codec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/synoet/bebop/errors"
	"github.com/synoet/bebop/lower"
	"github.com/synoet/bebop/schema"
	"github.com/synoet/bebop/wire"
)

// Encode serializes a dynamic value of the named record type.
func (c *Codec) Encode(name string, value any) ([]byte, error) {
	w := wire.NewWriter()
	if err := c.EncodeTo(w, name, value); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo serializes into an existing writer, appending at its cursor.
func (c *Codec) EncodeTo(w *wire.Writer, name string, value any) error {
	plan, err := c.plan(name)
	if err != nil {
		return err
	}
	return c.encodeRecord(w, plan, value, nil)
}

func (c *Codec) encodeRecord(w *wire.Writer, plan *lower.RecordPlan, value any, path []string) error {
	switch plan.Kind {
	case lower.RecordStruct:
		return c.encodeStruct(w, plan, value, path)
	case lower.RecordMessage:
		return c.encodeMessage(w, plan, value, path)
	case lower.RecordUnion:
		return c.encodeUnion(w, plan, value, path)
	default:
		return errors.Unsupported(errors.PhaseEncode, "record kind: "+plan.Kind.String())
	}
}

// encodeStruct writes every field in strict declaration order with no tags
// and no length prefix.
func (c *Codec) encodeStruct(w *wire.Writer, plan *lower.RecordPlan, value any, path []string) error {
	fields, ok := value.(map[string]any)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), plan.Name)
	}
	for _, f := range plan.Fields {
		v, ok := fields[f.Name]
		if !ok {
			return errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Definition(plan.Name).
				Path(append(path, f.Name)...).
				Detail("struct field has no value").
				Build()
		}
		if err := c.encodeValue(w, f.Strategy, v, append(path, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

// encodeMessage reserves a length placeholder, writes (tag, value) pairs for
// every present field, terminates with tag 0, then patches the length with
// the byte count since the placeholder. The length includes the terminator,
// so a zero-field message occupies exactly five bytes.
func (c *Codec) encodeMessage(w *wire.Writer, plan *lower.RecordPlan, value any, path []string) error {
	fields, ok := value.(map[string]any)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), plan.Name)
	}
	at := w.ReserveLength()
	start := w.Len()
	for _, f := range plan.Fields {
		v, ok := fields[f.Name]
		if !ok {
			continue // message fields are optional by construction
		}
		w.Byte(f.Tag)
		if err := c.encodeValue(w, f.Strategy, v, append(path, f.Name)); err != nil {
			return err
		}
	}
	w.Byte(0)
	w.PatchLength(at, uint32(w.Len()-start))
	return nil
}

// encodeUnion reserves a length placeholder, writes the discriminator byte,
// dispatches to the active branch's record encoder, then patches the length
// with the byte count of discriminator plus payload.
func (c *Codec) encodeUnion(w *wire.Writer, plan *lower.RecordPlan, value any, path []string) error {
	uv, ok := value.(UnionValue)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), plan.Name)
	}
	for _, b := range plan.Branches {
		if b.Discriminator != uv.Discriminator {
			continue
		}
		at := w.ReserveLength()
		start := w.Len()
		w.Byte(b.Discriminator)
		branch, err := c.plan(b.Target)
		if err != nil {
			return err
		}
		if err := c.encodeRecord(w, branch, uv.Value, append(path, b.Target)); err != nil {
			return err
		}
		w.PatchLength(at, uint32(w.Len()-start))
		return nil
	}
	return errors.New(errors.PhaseEncode, errors.KindInvalidDiscriminator).
		Definition(plan.Name).
		Path(path...).
		Detail("discriminator %d matches no branch", uv.Discriminator).
		Build()
}

func (c *Codec) encodeValue(w *wire.Writer, strat *lower.Strategy, value any, path []string) error {
	switch strat.Shape {
	case lower.ShapeScalar:
		return c.encodeScalar(w, strat.Scalar, value, path)

	case lower.ShapeEnum:
		// The underlying scalar representation, never the symbolic name.
		// Membership is not revalidated.
		return c.encodeScalar(w, strat.Scalar, value, path)

	case lower.ShapeByteArray:
		data, ok := value.([]byte)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "byte[]")
		}
		w.WriteByteSlice(data)
		return nil

	case lower.ShapeArray:
		items, ok := value.([]any)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "array")
		}
		w.WriteUint32(uint32(len(items)))
		for i, item := range items {
			if err := c.encodeValue(w, strat.Element, item, append(path, "["+strconv.Itoa(i)+"]")); err != nil {
				return err
			}
		}
		return nil

	case lower.ShapeMap:
		entries, ok := value.(map[any]any)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "map")
		}
		w.WriteUint32(uint32(len(entries)))
		// Native iteration order; two value-equal maps may serialize to
		// different bytes.
		for k, v := range entries {
			if err := c.encodeValue(w, strat.Key, k, append(path, "key")); err != nil {
				return err
			}
			if err := c.encodeValue(w, strat.Value, v, append(path, fmt.Sprint(k))); err != nil {
				return err
			}
		}
		return nil

	case lower.ShapeRecord:
		plan, err := c.plan(strat.Target)
		if err != nil {
			return err
		}
		return c.encodeRecord(w, plan, value, path)

	default:
		return errors.Unsupported(errors.PhaseEncode, "strategy shape: "+strat.Shape.String())
	}
}

func (c *Codec) encodeScalar(w *wire.Writer, kind schema.ScalarKind, value any, path []string) error {
	mismatch := func() error {
		return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), kind.String())
	}
	switch kind {
	case schema.Bool:
		v, ok := value.(bool)
		if !ok {
			return mismatch()
		}
		w.WriteBool(v)
	case schema.Byte:
		v, ok := value.(uint8)
		if !ok {
			return mismatch()
		}
		w.Byte(v)
	case schema.Int16:
		v, ok := value.(int16)
		if !ok {
			return mismatch()
		}
		w.WriteInt16(v)
	case schema.Uint16:
		v, ok := value.(uint16)
		if !ok {
			return mismatch()
		}
		w.WriteUint16(v)
	case schema.Int32:
		v, ok := value.(int32)
		if !ok {
			return mismatch()
		}
		w.WriteInt32(v)
	case schema.Uint32:
		v, ok := value.(uint32)
		if !ok {
			return mismatch()
		}
		w.WriteUint32(v)
	case schema.Int64:
		v, ok := value.(int64)
		if !ok {
			return mismatch()
		}
		w.WriteInt64(v)
	case schema.Uint64:
		v, ok := value.(uint64)
		if !ok {
			return mismatch()
		}
		w.WriteUint64(v)
	case schema.Float32:
		v, ok := value.(float32)
		if !ok {
			return mismatch()
		}
		w.WriteFloat32(v)
	case schema.Float64:
		v, ok := value.(float64)
		if !ok {
			return mismatch()
		}
		w.WriteFloat64(v)
	case schema.String:
		v, ok := value.(string)
		if !ok {
			return mismatch()
		}
		w.WriteString(v)
	case schema.GUID:
		v, ok := value.(uuid.UUID)
		if !ok {
			return mismatch()
		}
		w.WriteGUID(v)
	case schema.Date:
		v, ok := value.(time.Time)
		if !ok {
			return mismatch()
		}
		w.WriteDate(v)
	default:
		return errors.Unsupported(errors.PhaseEncode, "scalar kind: "+kind.String())
	}
	return nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
