package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StorageKey is the fixed key the persisted record lives under in a
// visitor's storage.
const StorageKey = "cookie_consent"

// ErrMalformedRecord is returned when stored content is not a consent record.
var ErrMalformedRecord = errors.New("malformed consent record")

// record is the persisted form: exactly the four boolean fields.
type record struct {
	Necessary  *bool `json:"necessary"`
	Functional *bool `json:"functional"`
	Analytics  *bool `json:"analytics"`
	Marketing  *bool `json:"marketing"`
}

// EncodeRecord serializes a state for storage. Necessary is written as true
// whatever the input says.
func EncodeRecord(s State) (string, error) {
	payload, err := json.Marshal(s.Normalize())
	if err != nil {
		return "", fmt.Errorf("encode consent record: %w", err)
	}
	return string(payload), nil
}

// DecodeRecord parses stored content. Anything that is not a JSON object, or
// that holds a non-boolean consent field, is ErrMalformedRecord. Missing
// fields read as false (records written by the older three-category banner
// have no functional flag); unknown fields are ignored.
func DecodeRecord(raw string) (State, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return State{}, ErrMalformedRecord
	}
	var rec record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return State{
		Functional: deref(rec.Functional),
		Analytics:  deref(rec.Analytics),
		Marketing:  deref(rec.Marketing),
	}.Normalize(), nil
}

func deref(b *bool) bool {
	return b != nil && *b
}
