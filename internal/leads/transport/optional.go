package transport

import (
	"encoding/json"

	"github.com/google/uuid"
)

// OptionalUUID distinguishes an absent JSON field from an explicit null,
// so PATCH callers can clear an assignee without a dedicated endpoint.
// Absent leaves Set false; null and "" both clear the value.
type OptionalUUID struct {
	Value *uuid.UUID
	Set   bool
}

func (o OptionalUUID) IsZero() bool {
	return !o.Set
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil

	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not a JSON string at all; let uuid's text decoding report the
		// real error for whatever the client sent.
		var parsed uuid.UUID
		if err := json.Unmarshal(data, &parsed); err != nil {
			return err
		}
		o.Value = &parsed
		return nil
	}

	if raw == "" {
		return nil
	}

	parsed, err := uuid.Parse(raw)
	if err != nil {
		return err
	}
	o.Value = &parsed
	return nil
}
