package reactive

// Kind is the coarse value type a reference declares.
// Two-way form bindings select their coercion and validation rules by Kind.
type Kind uint8

const (
	KindOpaque  Kind = iota // No declared type; not bindable to form controls
	KindText                // string
	KindDecimal             // floating point number
	KindInteger             // integer (validated with ^-?\d+$)
	KindBoolean             // bool
	KindTime                // time.Time
	KindVoid                // nil / void
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindDecimal:
		return "decimal"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindTime:
		return "time"
	case KindVoid:
		return "void"
	default:
		return "opaque"
	}
}
