package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// DateSet is a sorted set of YYYY-MM-DD dates stored as a JSON array column.
type DateSet []string

// NewDateSet sorts and de-duplicates dates.
func NewDateSet(dates ...string) DateSet {
	seen := make(map[string]struct{}, len(dates))
	set := make(DateSet, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok || d == "" {
			continue
		}
		seen[d] = struct{}{}
		set = append(set, d)
	}
	sort.Strings(set)
	return set
}

func (s DateSet) Contains(day string) bool {
	i := sort.SearchStrings(s, day)
	return i < len(s) && s[i] == day
}

// Within keeps only the dates inside [from, to].
func (s DateSet) Within(from, to string) DateSet {
	out := make(DateSet, 0, len(s))
	for _, d := range s {
		if from <= d && d <= to {
			out = append(out, d)
		}
	}
	return out
}

// Scan implements sql.Scanner for reading the JSON array from the database.
func (s *DateSet) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = DateSet{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("DateSet.Scan: expected []byte or string, got %T", value)
	}

	if len(raw) == 0 {
		*s = DateSet{}
		return nil
	}

	var dates []string
	if err := json.Unmarshal(raw, &dates); err != nil {
		return fmt.Errorf("DateSet.Scan: %w", err)
	}
	*s = NewDateSet(dates...)
	return nil
}

// Value implements driver.Valuer for writing the JSON array to the database.
func (s DateSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	bytes, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}
