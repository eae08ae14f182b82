package journal

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Patch is a partial update: JSON field name to new value. Fields not named in
// the patch keep their stored value.
type Patch map[string]any

// Keys the store manages itself; values for these in a patch are dropped.
var managedKeys = []string{"createdAt", "updatedAt"}

// merge overlays p onto doc through its JSON form. Keys listed in immutable
// may only be repeated with their current value.
func merge[T any](doc T, p Patch, immutable ...string) (T, error) {
	var out T

	raw, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("encode document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}

	for _, k := range immutable {
		v, ok := p[k]
		if !ok {
			continue
		}
		cur, _ := fields[k].(string)
		if s, _ := v.(string); s != cur {
			return out, fmt.Errorf("%s: %w", k, ErrImmutableField)
		}
	}

	for k, v := range p {
		if isManaged(k) {
			continue
		}
		fields[k] = v
	}

	raw, err = json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("encode patch: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, invalidValue(err)
	}
	return out, nil
}

// invalidValue turns a decode failure into an *InvalidValueError naming the
// offending field when the decoder reports one.
func invalidValue(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &InvalidValueError{Field: typeErr.Field, Err: err}
	}
	return &InvalidValueError{Err: err}
}

func isManaged(k string) bool {
	for _, m := range managedKeys {
		if k == m {
			return true
		}
	}
	return false
}

// ApplyPatch returns t with p merged in. The id and userId cannot change.
func ApplyPatch(t Trade, p Patch) (Trade, error) {
	return merge(t, p, "id", "userId")
}

// PatchFromTrade lists every field of t as a patch, for full-form saves.
func PatchFromTrade(t Trade) (Patch, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	p := Patch{}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	for _, k := range append([]string{"id", "userId"}, managedKeys...) {
		delete(p, k)
	}
	return p, nil
}
