package flagvalue

import (
	"errors"
	"flag"
	"strings"
)

// KeyValue is a flag value in the form "key" or "key=value".
// Leading dashes on the key are dropped.
type KeyValue struct {
	Key   string
	Value string

	// HasValue reports whether "=value" was present.
	HasValue bool
}

var _ flag.Getter = (*KeyValue)(nil)

// Get returns the KeyValue itself.
func (kv *KeyValue) Get() any { return *kv }

// String returns the value in the form it was parsed from.
func (kv *KeyValue) String() string {
	if !kv.HasValue {
		return kv.Key
	}
	return kv.Key + "=" + kv.Value
}

// Set parses a "key" or "key=value" string.
func (kv *KeyValue) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimLeft(strings.TrimSpace(key), "-")
	if key == "" {
		return errors.New("expected form 'name' or 'name=value'")
	}

	*kv = KeyValue{Key: key, Value: value, HasValue: ok}
	return nil
}
