package nlu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

var (
	// ErrNoJSON means the oracle reply contains no {...} span.
	ErrNoJSON = errors.New("no JSON object in oracle reply")
	// ErrBadJSON means the {...} span did not decode into an object.
	ErrBadJSON = errors.New("malformed JSON object in oracle reply")
)

// DecodeObject recovers a JSON object from free model text.
//
// Models wrap JSON in prose or code fences, so the span from the first '{' to
// the last '}' is decoded. Numbers come back as float64.
func DecodeObject(raw string) (map[string]any, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return nil, ErrNoJSON
	}

	var obj map[string]any
	if err := sonic.UnmarshalString(raw[start:end+1], &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if obj == nil {
		return nil, ErrBadJSON
	}
	return obj, nil
}
