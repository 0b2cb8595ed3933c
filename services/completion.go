package services

import (
	"context"
	"encoding/json"
	"fmt"

	"podcast-prep-platform/internal/ai"
)

// completeJSON asks for a JSON completion and decodes it into T. The reply must be an object
// carrying every required key with a non-null value. Undecodable output, missing keys and
// validation failures are upstream errors: the caller's input was fine, the model's was not.
func completeJSON[T any](ctx context.Context, c ai.Completer, instructions, content string, required []string, validate func(*T) error) (T, error) {
	var out T
	raw, err := c.CompleteJSON(ctx, instructions, content)
	if err != nil {
		return out, fmt.Errorf("%w: completion: %w", ErrUpstream, err)
	}
	if err := requireKeys(raw, required); err != nil {
		return out, fmt.Errorf("%w: invalid completion: %w", ErrUpstream, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: malformed completion: %w", ErrUpstream, err)
	}
	if validate != nil {
		if err := validate(&out); err != nil {
			return out, fmt.Errorf("%w: invalid completion: %w", ErrUpstream, err)
		}
	}
	return out, nil
}

func requireKeys(raw json.RawMessage, keys []string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("reply is not a JSON object: %w", err)
	}
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || string(v) == "null" {
			return fmt.Errorf("missing %q", k)
		}
	}
	return nil
}

// promptValue renders free-form request context for inclusion in a prompt.
func promptValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "none"
	case string:
		if val == "" {
			return "none"
		}
		return val
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
