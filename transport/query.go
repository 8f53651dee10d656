package transport

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// Query holds request parameters. Slices repeat the key, maps are flattened
// as key.sub=value and nil values are dropped.
type Query map[string]any

// Encode serializes the query with keys in sorted order.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		parts = appendParam(parts, key, q[key], true)
	}
	return strings.Join(parts, "&")
}

func appendParam(parts []string, key string, value any, flatten bool) []string {
	v, ok := deref(value)
	if !ok {
		return parts
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return append(parts, pair(key, string(v.Bytes())))
		}
		for i := 0; i < v.Len(); i++ {
			if item, ok := deref(v.Index(i).Interface()); ok {
				parts = append(parts, pair(key, fmt.Sprint(item.Interface())))
			}
		}
		return parts
	case reflect.Map:
		if !flatten {
			return append(parts, pair(key, fmt.Sprint(v.Interface())))
		}
		subKeys := make([]string, 0, v.Len())
		byKey := make(map[string]reflect.Value, v.Len())
		for _, k := range v.MapKeys() {
			s := fmt.Sprint(k.Interface())
			subKeys = append(subKeys, s)
			byKey[s] = v.MapIndex(k)
		}
		sort.Strings(subKeys)
		for _, sub := range subKeys {
			parts = appendParam(parts, key+"."+sub, byKey[sub].Interface(), false)
		}
		return parts
	}
	return append(parts, pair(key, fmt.Sprint(v.Interface())))
}

// deref follows pointers and interfaces, reporting false for nil.
func deref(value any) (reflect.Value, bool) {
	if value == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if (v.Kind() == reflect.Slice || v.Kind() == reflect.Map) && v.IsNil() {
		return reflect.Value{}, false
	}
	return v, true
}

func pair(key, value string) string {
	return escape(key) + "=" + escape(value)
}

// componentEscapes undoes the QueryEscape output for characters that
// encodeURIComponent leaves alone, so negated and wildcard filters such as
// "!red" and "tee*" go out literally.
var componentEscapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escape matches encodeURIComponent, which the API's browser clients use.
func escape(s string) string {
	return componentEscapes.Replace(url.QueryEscape(s))
}
