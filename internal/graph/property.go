package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/decisionlab/dagraph/internal/errors"
)

// Property is one key/value pair of a vertex or edge property bag.
type Property struct {
	Key   string
	Value any
}

// Properties is an insertion-ordered property bag. Query fragments are
// emitted in slice order.
type Properties []Property

// Set replaces the value of an existing key or appends a new pair.
func (p Properties) Set(key string, value any) Properties {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Property{Key: key, Value: value})
}

// Get returns the value stored under key.
func (p Properties) Get(key string) (any, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return nil, false
}

// Map copies the bag into a map.
func (p Properties) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, prop := range p {
		m[prop.Key] = prop.Value
	}
	return m
}

// PropertiesFromMap builds a bag from a map with keys in sorted order, so
// the generated traversal is deterministic.
func PropertiesFromMap(m map[string]any) Properties {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make(Properties, 0, len(keys))
	for _, k := range keys {
		props = append(props, Property{Key: k, Value: m[k]})
	}
	return props
}

// freeTextKeys hold long user-entered text that may contain quotes or
// newlines; their values are emitted as triple-quoted literals.
var freeTextKeys = map[string]bool{
	"description": true,
	"comments":    true,
}

// PropertyQuery encodes a single key/value pair as a .property() step.
// The encoding is chosen from the key and the shape of the value:
//
//	nil value          .property('k', '')
//	id / label key     .property(id, 'v')
//	free-text key      .property('k', '''v''')
//	slice, array, map  .property('k', '<json>')
//	anything else      .property('k', 'v')
//
// Values are not escaped. Channels, funcs and composite values that cannot
// be JSON encoded produce a validation error.
func PropertyQuery(key string, value any) (string, error) {
	switch {
	case value == nil:
		return fmt.Sprintf(".property('%s', '')", key), nil
	case !isEncodable(value):
		return "", errors.ValidationErrorf(nil, "property %q of type %T cannot be encoded", key, value)
	case key == "id" || key == "label":
		return fmt.Sprintf(".property(%s, '%v')", key, value), nil
	case freeTextKeys[key]:
		return fmt.Sprintf(".property('%s', '''%v''')", key, value), nil
	case isComposite(value):
		encoded, err := marshalSpaced(value)
		if err != nil {
			return "", errors.ValidationErrorf(err, "property %q cannot be encoded as JSON", key)
		}
		return fmt.Sprintf(".property('%s', '%s')", key, encoded), nil
	default:
		return fmt.Sprintf(".property('%s', '%v')", key, value), nil
	}
}

// PropertyDictQuery concatenates PropertyQuery over every pair in order.
// Nil values are kept and emitted as empty strings.
func PropertyDictQuery(props Properties) (string, error) {
	var sb strings.Builder
	for _, prop := range props {
		fragment, err := PropertyQuery(prop.Key, prop.Value)
		if err != nil {
			return "", err
		}
		sb.WriteString(fragment)
	}
	return sb.String(), nil
}

// FilterQuery emits a .has() step per non-nil value, in order.
func FilterQuery(filter Properties) string {
	var sb strings.Builder
	for _, prop := range filter {
		if prop.Value == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf(".has('%s', '%v')", prop.Key, prop.Value))
	}
	return sb.String()
}

// FilterLabelQuery emits a .hasLabel() step.
func FilterLabelQuery(label string) string {
	return fmt.Sprintf(".hasLabel('%s')", label)
}

func isEncodable(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return false
	default:
		return true
	}
}

func isComposite(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}

// marshalSpaced encodes v as JSON using ", " and ": " separators, the
// layout stored by the existing data set.
func marshalSpaced(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	raw := bytes.TrimRight(buf.Bytes(), "\n")

	var out bytes.Buffer
	out.Grow(len(raw) + len(raw)/4)
	inString, escaped := false, false
	for _, c := range raw {
		out.WriteByte(c)
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ',', ':':
			out.WriteByte(' ')
		}
	}
	return out.String(), nil
}
