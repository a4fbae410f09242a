package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TagList is the ordered set of tag names attached to an entry. It is stored
// as a JSON array; an empty list is stored as NULL.
type TagList []string

// Contains reports whether name is in the list, ignoring case.
func (l TagList) Contains(name string) bool {
	for _, t := range l {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// With returns a copy of l with name appended if absent.
func (l TagList) With(name string) TagList {
	if l.Contains(name) {
		return append(TagList(nil), l...)
	}
	out := make(TagList, 0, len(l)+1)
	out = append(out, l...)
	return append(out, name)
}

// Without returns a copy of l with every case-insensitive match of name removed.
func (l TagList) Without(name string) TagList {
	out := make(TagList, 0, len(l))
	for _, t := range l {
		if !strings.EqualFold(t, name) {
			out = append(out, t)
		}
	}
	return out
}

// Value implements driver.Valuer.
func (l TagList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return l.encode()
}

// encode writes l as a JSON array without HTML escaping, so names such as
// "R&D" are stored as typed.
func (l TagList) encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(l)); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// RemoteValue is like Value, but an empty list becomes "[]" rather than NULL
// so that a cleared list overwrites the tags already stored remotely.
func (l TagList) RemoteValue() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return l.encode()
}

// Scan implements sql.Scanner.
func (l *TagList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	if len(names) == 0 {
		*l = nil
		return nil
	}
	*l = names
	return nil
}

// Equal compares two lists element-wise; nil and empty are equal.
func (l TagList) Equal(other TagList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}
