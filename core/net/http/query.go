package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// isoMillis is the layout of JavaScript's Date.toISOString
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ErrUnsupportedQuery is returned when a payload cannot be expressed as query parameters
var ErrUnsupportedQuery = fmt.Errorf("query payload must be an object")

// EncodeQuery converts a payload into query parameters.
//
// Accepted payloads are nil, url.Values, map[string]string and anything that
// marshals to a JSON object. Within an object:
//   - nil values are skipped
//   - arrays repeat the key with a "[]" suffix, one entry per non-nil element
//   - nested objects are sent as their JSON text
//   - time.Time values use UTC with millisecond precision, e.g. 2006-01-02T15:04:05.000Z
//   - other scalars use their literal text
func EncodeQuery(data any) (url.Values, error) {
	values := url.Values{}

	switch v := data.(type) {
	case nil:
		return values, nil
	case url.Values:
		for k, vs := range v {
			values[k] = append([]string(nil), vs...)
		}
		return values, nil
	case map[string]string:
		for k, s := range v {
			values.Set(k, s)
		}
		return values, nil
	case map[string]any:
		for k, item := range v {
			if err := addQueryValue(values, k, item); err != nil {
				return nil, err
			}
		}
		return values, nil
	}

	normalized, err := toJSONValue(data)
	if err != nil {
		return nil, err
	}
	switch obj := normalized.(type) {
	case nil:
		return values, nil
	case map[string]any:
		return EncodeQuery(obj)
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedQuery, data)
	}
}

func addQueryValue(values url.Values, key string, v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		for _, elem := range x {
			if elem == nil {
				continue
			}
			s, err := queryText(elem)
			if err != nil {
				return err
			}
			values.Add(key+"[]", s)
		}
		return nil
	case map[string]any:
		s, err := queryText(x)
		if err != nil {
			return err
		}
		values.Add(key, s)
		return nil
	}

	if s, ok := scalarText(v); ok {
		values.Add(key, s)
		return nil
	}

	// slices, structs, typed maps and pointers go through their JSON form
	normalized, err := toJSONValue(v)
	if err != nil {
		return err
	}
	return addQueryValue(values, key, normalized)
}

// queryText renders a single value: scalars literally, anything else as JSON text
func queryText(v any) (string, error) {
	if s, ok := scalarText(v); ok {
		return s, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case time.Time:
		return x.UTC().Format(isoMillis), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return "", false
	}
}

// toJSONValue converts v to the generic JSON representation, keeping numbers exact
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
