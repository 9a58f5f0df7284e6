package proxy

import (
	"strings"
)

// Chain applies transforms in order, stopping at the first error.
func Chain(transforms ...BodyTransform) BodyTransform {
	return func(body map[string]interface{}) (map[string]interface{}, error) {
		var err error
		for _, t := range transforms {
			if body, err = t(body); err != nil {
				return nil, err
			}
		}
		return body, nil
	}
}

// RequireString fails with message unless field is a non-blank string.
func RequireString(field, message string) BodyTransform {
	return func(body map[string]interface{}) (map[string]interface{}, error) {
		s, ok := body[field].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, Invalid(message)
		}
		return body, nil
	}
}

// RequireBool fails with message unless field is a JSON boolean.
func RequireBool(field, message string) BodyTransform {
	return func(body map[string]interface{}) (map[string]interface{}, error) {
		if _, ok := body[field].(bool); !ok {
			return nil, Invalid(message)
		}
		return body, nil
	}
}

// OneOf fails with message unless field is one of allowed.
func OneOf(field string, allowed []string, message string) BodyTransform {
	return func(body map[string]interface{}) (map[string]interface{}, error) {
		s, _ := body[field].(string)
		for _, a := range allowed {
			if s == a {
				return body, nil
			}
		}
		return nil, Invalid(message)
	}
}

// Pick keeps only the listed fields.
func Pick(fields ...string) BodyTransform {
	return func(body map[string]interface{}) (map[string]interface{}, error) {
		out := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			if v, ok := body[f]; ok {
				out[f] = v
			}
		}
		return out, nil
	}
}

// Rename moves field from to field to when present.
func Rename(from, to string) BodyTransform {
	return func(body map[string]interface{}) (map[string]interface{}, error) {
		if v, ok := body[from]; ok {
			delete(body, from)
			body[to] = v
		}
		return body, nil
	}
}
