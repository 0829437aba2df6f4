package gen

import (
	"strconv"

	"github.com/synoet/bebop/errors"
	"github.com/synoet/bebop/schema"
)

// loweredLiteral converts a typed constant into Go source text. 64-bit-width
// targets are routed through the wide-integer path, kept separate from
// ordinary numerics because not every generation target can represent
// 64-bit integers losslessly as ordinary floating values.
func (g *Generator) loweredLiteral(kind schema.ScalarKind, lit schema.Literal) (string, error) {
	switch lit.Kind {
	case schema.LiteralBool:
		if lit.Bool {
			return "true", nil
		}
		return "false", nil

	case schema.LiteralInt:
		if kind.Wide() {
			return wideIntLiteral(lit.Int), nil
		}
		if err := checkIntRange(kind, lit.Int); err != nil {
			return "", err
		}
		return strconv.FormatInt(lit.Int, 10), nil

	case schema.LiteralUint:
		if kind.Wide() {
			return wideUintLiteral(lit.Uint), nil
		}
		return strconv.FormatUint(lit.Uint, 10), nil

	case schema.LiteralFloat:
		switch lit.FloatText {
		case "inf":
			g.imports["math"] = true
			return floatSpecial(kind, "math.Inf(1)"), nil
		case "-inf":
			g.imports["math"] = true
			return floatSpecial(kind, "math.Inf(-1)"), nil
		case "nan":
			g.imports["math"] = true
			return floatSpecial(kind, "math.NaN()"), nil
		}
		return strconv.FormatFloat(lit.Float, 'g', -1, 64), nil

	case schema.LiteralString:
		return strconv.Quote(lit.Str), nil

	case schema.LiteralGUID:
		// Canonical dashed hexadecimal form, then string-escaped.
		return strconv.Quote(lit.GUID.String()), nil

	default:
		return "", errors.Unsupported(errors.PhaseGenerate, "literal kind")
	}
}

// floatSpecial wraps a math special in a conversion when the target is
// float32; math.Inf and math.NaN return float64.
func floatSpecial(kind schema.ScalarKind, expr string) string {
	if kind == schema.Float32 {
		return "float32(" + expr + ")"
	}
	return expr
}

// checkIntRange rejects narrow-integer literals whose value cannot be
// represented in the target scalar. Bounds are derived from the scalar's
// encoded byte width.
func checkIntRange(kind schema.ScalarKind, v int64) error {
	bits := uint(kind.Width()) * 8
	var lo, hi int64
	switch kind {
	case schema.Byte, schema.Uint16, schema.Uint32:
		lo, hi = 0, int64(1)<<bits-1
	case schema.Int16, schema.Int32:
		lo, hi = -(int64(1) << (bits - 1)), int64(1)<<(bits-1)-1
	default:
		return nil
	}
	if v < lo || v > hi {
		return errors.Overflow(errors.PhaseGenerate, nil, v, kind.String())
	}
	return nil
}

// wideIntLiteral renders a signed 64-bit value without passing through any
// narrower representation.
func wideIntLiteral(v int64) string {
	return strconv.FormatInt(v, 10)
}

// wideUintLiteral renders an unsigned 64-bit value; values above the signed
// range still render exactly.
func wideUintLiteral(v uint64) string {
	return strconv.FormatUint(v, 10)
}
