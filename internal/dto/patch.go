package dto

import (
	"fmt"

	apierrors "github.com/yukikurage/task-dashboard-api/internal/errors"
)

// Patch is a decoded JSON update body. Keys that are absent stay untouched,
// keys that are null clear the field.
type Patch map[string]any

// String returns the value of a string field. present is false when the key
// is absent; value is nil when the key is present and null.
func (p Patch) String(key string) (value *string, present bool, err error) {
	raw, ok := p[key]
	if !ok {
		return nil, false, nil
	}
	if raw == nil {
		return nil, true, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, true, apierrors.NewValidationError(key, fmt.Sprintf("Field %s must be a string", key))
	}
	return &s, true, nil
}

// RequiredString is like String but rejects null
func (p Patch) RequiredString(key string) (*string, error) {
	value, present, err := p.String(key)
	if err != nil {
		return nil, err
	}
	if present && value == nil {
		return nil, apierrors.NewValidationError(key, fmt.Sprintf("Field %s cannot be null", key))
	}
	return value, nil
}

// Nullable reads an optional string field and reports whether it was
// explicitly cleared
func (p Patch) Nullable(key string) (value *string, cleared bool, err error) {
	value, present, err := p.String(key)
	if err != nil {
		return nil, false, err
	}
	return value, present && value == nil, nil
}
