package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional is a PATCH field (RFC 7396) that distinguishes "absent" from
// "null". Present is false when the key is missing from the body; a JSON null
// sets Present with a nil Value.
type Optional[T any] struct {
	Present bool
	Value   *T
}

// UnmarshalJSON is only called for keys present in the body
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// OptionalString is the PATCH form of a nullable text column
type OptionalString = Optional[string]
