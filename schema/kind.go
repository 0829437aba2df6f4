package schema

// ScalarKind identifies one of the closed set of scalar wire types.
type ScalarKind uint8

const (
	Bool ScalarKind = iota
	Byte
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
	String
	GUID
	Date
)

var scalarNames = [...]string{
	Bool:    "bool",
	Byte:    "byte",
	Int16:   "int16",
	Uint16:  "uint16",
	Int32:   "int32",
	Uint32:  "uint32",
	Int64:   "int64",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
	GUID:    "guid",
	Date:    "date",
}

func (k ScalarKind) String() string {
	if int(k) < len(scalarNames) {
		return scalarNames[k]
	}
	return "unknown"
}

// Width returns the encoded byte width, or 0 for variable-width scalars.
func (k ScalarKind) Width() int {
	switch k {
	case Bool, Byte:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64, Date:
		return 8
	case GUID:
		return 16
	default:
		return 0
	}
}

// Wide reports whether the scalar's values need the 64-bit literal path.
// Such values cannot be represented losslessly as ordinary floating-point
// numerics in every generation target.
func (k ScalarKind) Wide() bool {
	return k == Int64 || k == Uint64 || k == Date
}

// scalarKindsByName is the reverse of scalarNames, used by the document loader.
var scalarKindsByName = func() map[string]ScalarKind {
	m := make(map[string]ScalarKind, len(scalarNames))
	for k, name := range scalarNames {
		m[name] = ScalarKind(k)
	}
	return m
}()
