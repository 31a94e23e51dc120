package reference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// delimiters are tried in order; the first one present wins.
var delimiters = []string{",", "|", ";"}

// Normalize turns a caller supplied code value into a clean list of codes.
// Numbers become a single element, strings are split on the first delimiter
// found (",", then "|", then ";"), lists are stringified element by element.
// Elements are trimmed and empty elements dropped.
func Normalize(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case string:
		return splitDelimited(v), nil
	case json.Number:
		return compact([]string{v.String()}), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return []string{fmt.Sprintf("%d", v)}, nil
	case float32:
		return []string{strconv.FormatFloat(float64(v), 'f', -1, 32)}, nil
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case []string:
		return compact(v), nil
	case []json.Number:
		out := make([]string, 0, len(v))
		for _, n := range v {
			out = append(out, n.String())
		}
		return compact(out), nil
	case []int:
		out := make([]string, 0, len(v))
		for _, n := range v {
			out = append(out, strconv.Itoa(n))
		}
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			s, err := scalarString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return compact(out), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedInputType, value)
	}
}

// RequireSingleCode normalizes raw and fails unless exactly one code remains.
func RequireSingleCode(raw interface{}) ([]string, error) {
	codes, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	if len(codes) != 1 {
		return nil, &CodeCountError{Count: len(codes)}
	}
	return codes, nil
}

func splitDelimited(s string) []string {
	for _, d := range delimiters {
		if strings.Contains(s, d) {
			return compact(strings.Split(s, d))
		}
	}
	return compact([]string{s})
}

func scalarString(item interface{}) (string, error) {
	switch v := item.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("%w: list element %T", ErrUnsupportedInputType, item)
	}
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
