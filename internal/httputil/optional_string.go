package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent JSON field from an explicit null.
// Reattach endpoints use it so that {"parentId": null} means "move to root"
// while a body without the field is rejected:
//   - Present=false: field absent from JSON
//   - Present=true, Value=nil: field is JSON null (root level)
//   - Present=true, Value=&"id": field names a folder
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only invoked for fields present in the payload.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Ref returns the value with "" folded into nil.
func (o OptionalString) Ref() *string {
	if o.Value == nil || *o.Value == "" {
		return nil
	}
	return o.Value
}
