package vm

import "gopkg.in/yaml.v3"

// ValueToYAML converts v into the plain interface{} tree gopkg.in/yaml.v3
// marshals, the same shape internal/ext/config.go decodes glyph.yaml into.
func ValueToYAML(v Value) interface{} {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindText:
		return v.Str
	case KindTruth:
		return v.Truthy()
	case KindNothing:
		return nil
	case KindList:
		lo := v.Obj.(*ListObject)
		out := make([]interface{}, len(lo.Elements))
		for i, e := range lo.Elements {
			out[i] = ValueToYAML(e)
		}
		return out
	case KindMap:
		mo := v.Obj.(*MapObject)
		out := make(map[string]interface{}, len(mo.Entries))
		for _, entry := range mo.Entries {
			out[ToText(entry.Key)] = ValueToYAML(entry.Value)
		}
		return out
	default:
		return ToText(v)
	}
}

// YAMLToValue is ValueToYAML's inverse, decoding the generic tree
// yaml.Unmarshal(&interface{}{}) produces back into the language's own
// Number/Text/Truth/Nothing/List/Map values.
func YAMLToValue(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return Nothing
	case bool:
		return Truth(x)
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case float64:
		return Number(x)
	case string:
		return Text(x)
	case []interface{}:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = YAMLToValue(e)
		}
		return NewList(elems)
	case map[string]interface{}:
		entries := make([]MapEntry, 0, len(x))
		for k, val := range x {
			entries = append(entries, MapEntry{Key: Text(k), Value: YAMLToValue(val)})
		}
		return NewMap(entries)
	case map[interface{}]interface{}:
		entries := make([]MapEntry, 0, len(x))
		for k, val := range x {
			entries = append(entries, MapEntry{Key: Text(ToText(YAMLToValue(k))), Value: YAMLToValue(val)})
		}
		return NewMap(entries)
	default:
		return Nothing
	}
}

// YAMLDump renders v as a YAML document, the `yaml_dump` builtin's core.
func YAMLDump(v Value) (string, error) {
	data, err := yaml.Marshal(ValueToYAML(v))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// YAMLParse decodes source as YAML into a Value tree, the `yaml_parse`
// builtin's core.
func YAMLParse(source string) (Value, error) {
	var raw interface{}
	if err := yaml.Unmarshal([]byte(source), &raw); err != nil {
		return Value{}, err
	}
	return YAMLToValue(raw), nil
}
