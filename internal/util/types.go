package util

import "reflect"

// MatchesType reports whether a runtime value conforms to a declared schema
// type. Supported type names mirror the JSON primitive set: string, integer,
// number, boolean, object and array. Unknown type names accept any value so
// that loosely specified schemas never reject valid calls.
func MatchesType(value any, typeName string) bool {
	switch typeName {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			// JSON decoding yields float64 for every number; accept whole values.
			return v == float64(int64(v))
		case float32:
			return v == float32(int64(v))
		default:
			return false
		}
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		default:
			return false
		}
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		if value == nil {
			return false
		}
		k := reflect.ValueOf(value).Kind()
		return k == reflect.Slice || k == reflect.Array
	default:
		return true
	}
}
