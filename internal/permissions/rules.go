package permissions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Rule is one allow entry: wildcard, a single id, a comma-separated id
// string, or an array of ids. JSON decoding accepts every shape the config
// file historically allowed, including bare integers.
type Rule struct {
	wildcard bool
	ids      []string
}

// WildcardRule grants every user.
func WildcardRule() Rule {
	return Rule{wildcard: true}
}

// UserRule grants the listed user ids.
func UserRule(ids ...string) Rule {
	cp := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			cp = append(cp, id)
		}
	}
	return Rule{ids: cp}
}

// Matches reports whether the rule grants the given user id.
func (r Rule) Matches(userID string) bool {
	if r.wildcard {
		return true
	}
	for _, id := range r.ids {
		if id == userID {
			return true
		}
	}
	return false
}

// IsWildcard reports whether the rule grants everyone.
func (r Rule) IsWildcard() bool {
	return r.wildcard
}

// UnmarshalJSON accepts a string (wildcard, single id, or comma-separated
// list), an integer id, or an array mixing strings and integers.
func (r *Rule) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("decode rule: %w", err)
	}

	switch v := value.(type) {
	case string:
		*r = ruleFromString(v)
		return nil
	case json.Number:
		*r = Rule{ids: []string{v.String()}}
		return nil
	case []any:
		ids := make([]string, 0, len(v))
		for _, entry := range v {
			switch e := entry.(type) {
			case string:
				ids = append(ids, strings.TrimSpace(e))
			case json.Number:
				ids = append(ids, e.String())
			default:
				return fmt.Errorf("rule entry must be a string or integer, got %T", entry)
			}
		}
		*r = Rule{ids: ids}
		return nil
	default:
		return fmt.Errorf("rule must be a string, integer, or array, got %T", value)
	}
}

// MarshalJSON writes the most compact faithful representation.
func (r Rule) MarshalJSON() ([]byte, error) {
	if r.wildcard {
		return json.Marshal("*")
	}
	switch len(r.ids) {
	case 0:
		return json.Marshal("")
	case 1:
		return json.Marshal(r.ids[0])
	default:
		return json.Marshal(r.ids)
	}
}

func ruleFromString(value string) Rule {
	trimmed := strings.TrimSpace(value)
	if trimmed == "*" {
		return Rule{wildcard: true}
	}
	if trimmed == "" {
		return Rule{}
	}
	if strings.Contains(trimmed, ",") {
		parts := strings.Split(trimmed, ",")
		ids := make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part != "" {
				ids = append(ids, part)
			}
		}
		return Rule{ids: ids}
	}
	return Rule{ids: []string{trimmed}}
}
