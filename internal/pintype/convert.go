package pintype

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Conversion is the outcome of pushing a value across a typed connection.
// On failure Value holds the original input.
type Conversion struct {
	Success bool   `json:"success"`
	Value   any    `json:"value"`
	Error   string `json:"error,omitempty"`
}

type converter func(v any) (any, error)

// converters is keyed by source type, then target type.
var converters = map[Type]map[Type]converter{
	Number: {
		String:  numberToString,
		Boolean: numberToBoolean,
	},
	Boolean: {
		String: booleanToString,
		Number: booleanToNumber,
	},
	String: {
		Number:   stringToNumber,
		Boolean:  stringToBoolean,
		URL:      stringToURL,
		Date:     stringToDate,
		JSON:     stringToJSON,
		Filepath: identity,
	},
	Object: {
		JSON:   marshalText,
		String: marshalText,
		Array:  objectToArray,
	},
	Array: {
		String: arrayToString,
		JSON:   marshalText,
		Object: arrayToObject,
	},
	JSON: {
		Object: jsonToObject,
		Array:  jsonToArray,
		String: identity,
	},
	URL: {
		String:   identity,
		Filepath: urlToFilepath,
	},
	Date: {
		String: dateToString,
		Number: dateToNumber,
	},
	Filepath: {
		String: identity,
		URL:    filepathToURL,
	},
}

// ConvertValue converts value from one pin type to another. It never panics:
// converter failures come back as an unsuccessful Conversion.
func ConvertValue(value any, from, to Type) Conversion {
	if from == to || from == Any || to == Any {
		return Conversion{Success: true, Value: value}
	}

	targets, ok := converters[from]
	if !ok {
		return Conversion{Value: value, Error: fmt.Sprintf("No converter available from %q to %q", from, to)}
	}
	fn, ok := targets[to]
	if !ok {
		return Conversion{Value: value, Error: fmt.Sprintf("Cannot convert from %q to %q", from, to)}
	}

	out, err := invoke(fn, value)
	if err != nil {
		return Conversion{Value: value, Error: err.Error()}
	}
	return Conversion{Success: true, Value: out}
}

func invoke(fn converter, value any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion failed: %v", r)
		}
	}()
	return fn(value)
}

// TypeOfValue names the pin type a decoded JSON value naturally carries.
// Values of no recognisable shape report Any.
func TypeOfValue(v any) Type {
	switch v.(type) {
	case string:
		return String
	case bool:
		return Boolean
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return Number
	case []any:
		return Array
	case map[string]any:
		return Object
	case time.Time:
		return Date
	default:
		return Any
	}
}

// HasConverter reports whether ConvertValue can move data from one type to the other.
func HasConverter(from, to Type) bool {
	if from == to || from == Any || to == Any {
		return true
	}
	_, ok := converters[from][to]
	return ok
}

// ConvertibleTypes lists the targets reachable from from, itself included.
func ConvertibleTypes(from Type) []Type {
	if from == Any {
		return append([]Type(nil), Catalog...)
	}
	set := setOf(from, Any)
	for t := range converters[from] {
		set[t] = struct{}{}
	}
	out := set.sorted()
	if from.IsCustom() {
		out = append([]Type{from}, out...)
	}
	return out
}

func identity(v any) (any, error) {
	return v, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("value %v is not a number", v)
	}
}

func toText(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("value %v is not a string", v)
	}
}

func formatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func numberToString(v any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return formatNumber(f), nil
}

func numberToBoolean(v any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return f != 0, nil
}

func booleanToString(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("value %v is not a boolean", v)
	}
	return strconv.FormatBool(b), nil
}

func booleanToNumber(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("value %v is not a boolean", v)
	}
	if b {
		return float64(1), nil
	}
	return float64(0), nil
}

func stringToNumber(v any) (any, error) {
	s, err := toText(v)
	if err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return nil, fmt.Errorf("cannot convert %q to number", s)
	}
	return f, nil
}

func stringToBoolean(v any) (any, error) {
	s, err := toText(v)
	if err != nil {
		return nil, err
	}
	return s != "" && s != "0" && !strings.EqualFold(s, "false"), nil
}

func parseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || (u.Host == "" && u.Opaque == "" && u.Path == "") {
		return nil, fmt.Errorf("invalid URL: %q", s)
	}
	return u, nil
}

func stringToURL(v any) (any, error) {
	s, err := toText(v)
	if err != nil {
		return nil, err
	}
	if _, err := parseURL(s); err != nil {
		return nil, fmt.Errorf("invalid URL: %q", s)
	}
	return s, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}

func stringToDate(v any) (any, error) {
	s, err := toText(v)
	if err != nil {
		return nil, err
	}
	return parseDate(s)
}

func stringToJSON(v any) (any, error) {
	s, err := toText(v)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(s)) {
		return nil, fmt.Errorf("invalid JSON: %q", s)
	}
	return s, nil
}

func marshalText(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func asObject(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("value %v is not an object", v)
	}
	return m, nil
}

func objectToArray(v any) (any, error) {
	m, err := asObject(v)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out, nil
}

func asArray(v any) ([]any, error) {
	if a, ok := v.([]any); ok {
		return a, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var a []any
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("value %v is not an array", v)
	}
	return a, nil
}

func element(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	case bool:
		return strconv.FormatBool(e)
	}
	if f, err := toFloat(v); err == nil {
		return formatNumber(f)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func arrayToString(v any) (any, error) {
	a, err := asArray(v)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(a))
	for i, e := range a {
		parts[i] = element(e)
	}
	return strings.Join(parts, ", "), nil
}

func arrayToObject(v any) (any, error) {
	a, err := asArray(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(a))
	for i, e := range a {
		out[strconv.Itoa(i)] = e
	}
	return out, nil
}

func parseJSON(v any) (any, error) {
	var text string
	switch s := v.(type) {
	case string:
		text = s
	case []byte:
		text = string(s)
	default:
		// Already decoded.
		return v, nil
	}
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return out, nil
}

func jsonToObject(v any) (any, error) {
	parsed, err := parseJSON(v)
	if err != nil {
		return nil, err
	}
	if m, ok := parsed.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{}, nil
}

func jsonToArray(v any) (any, error) {
	parsed, err := parseJSON(v)
	if err != nil {
		return nil, err
	}
	if a, ok := parsed.([]any); ok {
		return a, nil
	}
	return []any{parsed}, nil
}

func urlToFilepath(v any) (any, error) {
	s, err := toText(v)
	if err != nil {
		return nil, err
	}
	u, err := parseURL(s)
	if err != nil {
		return s, nil
	}
	if u.Path == "" && u.Host != "" {
		return "/", nil
	}
	return u.Path, nil
}

func toTime(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case *time.Time:
		if d == nil {
			return time.Time{}, errors.New("date is nil")
		}
		return *d, nil
	case string:
		return parseDate(d)
	}
	if ms, err := toFloat(v); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("value %v is not a date", v)
}

func dateToString(v any) (any, error) {
	t, err := toTime(v)
	if err != nil {
		return nil, err
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00"), nil
}

func dateToNumber(v any) (any, error) {
	t, err := toTime(v)
	if err != nil {
		return nil, err
	}
	return float64(t.UnixMilli()), nil
}

func filepathToURL(v any) (any, error) {
	s, err := toText(v)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s, nil
	}
	return "file://" + s, nil
}
