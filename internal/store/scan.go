package store

import "time"

// scalarValue flattens driver-specific scan results into the scalar kinds a
// row-set carries. Drivers return text as []byte; everything else passes
// through.
func scalarValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return v
	}
}
