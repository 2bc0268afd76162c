package llm

import (
	"encoding/json"

	"github.com/rubilakse/docparse/internal/locale"
)

// Number accepts whatever shape a model emits for an amount: a JSON
// number, a locale-formatted string ("1.234,56") or null. Values go
// through the same normalization rules as regex-extracted text.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number{}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number{Value: f, Valid: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// tolerate junk shapes, the field just stays unset
		*n = Number{}
		return nil
	}
	if v, ok := locale.ParseNumber(s); ok {
		*n = Number{Value: v, Valid: true}
	} else {
		*n = Number{}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns the value for optional entity fields, nil when unset.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
