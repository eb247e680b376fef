package pose

import (
	"bytes"
	"encoding/json"
)

// Optional holds a skeleton that may be absent, typically the previous frame.
// The zero value is absent.
type Optional struct {
	skeleton Skeleton
	present  bool
}

// Some wraps a present skeleton.
func Some(s Skeleton) Optional { return Optional{skeleton: s, present: true} }

// None is the absent value.
func None() Optional { return Optional{} }

// Get returns the skeleton and whether it is present.
func (o Optional) Get() (Skeleton, bool) { return o.skeleton, o.present }

// Present reports whether a skeleton is held.
func (o Optional) Present() bool { return o.present }

// MarshalJSON encodes an absent value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.skeleton)
}

// UnmarshalJSON treats null as absent.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}
	var s Skeleton
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Some(s)
	return nil
}

// Last returns the newest entry of an oldest-first history.
func Last(history []Skeleton) Optional {
	if len(history) == 0 {
		return None()
	}
	return Some(history[len(history)-1])
}
