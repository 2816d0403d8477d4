// Package location reports which host surface the picker is mounted in.
package location

import (
	"reflect"
	"sort"
)

// CustomField is the surface the selection view is meant to run in.
const CustomField = "CustomField"

// Active returns the first key of loc, in sorted key order, whose value is
// non-empty. It returns "" when every value is empty.
func Active(loc map[string]any) string {
	keys := make([]string, 0, len(loc))
	for k := range loc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !isEmpty(loc[k]) {
			return k
		}
	}
	return ""
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
