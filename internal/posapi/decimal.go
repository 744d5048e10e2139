package posapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decimal represents a monetary amount as the backend's decimal string (i.e. "15.00").
// It accepts both JSON strings and JSON numbers and always encodes as a string.
type Decimal string

// UnmarshalJSON implements the json.Unmarshaler interface
func (decimal *Decimal) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		*decimal = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return err
		}
		*decimal = Decimal(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return fmt.Errorf("decimal must be a string or number: %w", err)
	}
	*decimal = Decimal(num.String())
	return nil
}

// String returns the raw decimal string
func (decimal Decimal) String() string {
	return string(decimal)
}
