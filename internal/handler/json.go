package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// optString is an optional request field that accepts a JSON string, a JSON
// number, or null. It records whether the key appeared in the payload at
// all: the ledger distinguishes a field that is absent from one supplied
// with no value.
type optString struct {
	set   bool
	value string
}

func (o *optString) UnmarshalJSON(b []byte) error {
	o.set = true

	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		o.value = s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("optString: %w", err)
	}
	o.value = n.String()
	return nil
}

// Ptr returns nil when the key was absent, otherwise the supplied value
// (possibly empty).
func (o optString) Ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}
