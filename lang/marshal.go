package lang

import (
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// MarshalJSON implements json.Marshaler for Value.
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// MarshalYAML implements yaml.InterfaceMarshaler. Object members are
// emitted in sorted key order.
func (v *Value) MarshalYAML() (any, error) {
	return v.yamlNative(), nil
}

// ToYAML renders v as a YAML document.
func (v *Value) ToYAML() ([]byte, error) {
	return yaml.Marshal(v.yamlNative())
}

// Native converts v to its native Go representation: map[string]any,
// []any, int64, float64, string, bool, or nil. A bad value converts to
// the text of its error.
func (v *Value) Native() any {
	switch v.Kind {
	case KindBool:
		return v.boolean
	case KindInt:
		return v.integer
	case KindReal:
		return v.float
	case KindString:
		return v.str
	case KindBad:
		return v.err.Error()

	case KindArray:
		result := make([]any, 0, len(v.array))
		for _, e := range v.array {
			result = append(result, e.Native())
		}

		return result

	case KindObject:
		result := make(map[string]any, len(v.object))
		for k, m := range v.object {
			result[k] = m.Native()
		}

		return result

	default:
		return nil
	}
}

func (v *Value) yamlNative() any {
	switch v.Kind {
	case KindArray:
		result := make([]any, 0, len(v.array))
		for _, e := range v.array {
			result = append(result, e.yamlNative())
		}

		return result

	case KindObject:
		result := make(yaml.MapSlice, 0, len(v.object))
		for _, k := range v.Keys() {
			result = append(result, yaml.MapItem{
				Key:   k,
				Value: v.object[k].yamlNative(),
			})
		}

		return result

	default:
		return v.Native()
	}
}
