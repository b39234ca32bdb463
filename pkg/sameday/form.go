package sameday

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// encodeValues flattens v into bracket-notation form values the way the API
// expects them: nested records as parent[child], sequences as parent[i].
// Field names come from json tags. Nil pointers, maps and slices are skipped,
// as are zero values of fields tagged omitempty.
func encodeValues(v any) (url.Values, error) {
	values := url.Values{}
	if v == nil {
		return values, nil
	}
	if err := encodeValue(values, "", reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return values, nil
}

// encodeQuery renders v as a query string with a leading "?", or "" when
// nothing is set.
func encodeQuery(v any) (string, error) {
	values, err := encodeValues(v)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	return "?" + values.Encode(), nil
}

func encodeValue(values url.Values, key string, v reflect.Value) error {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return encodeStruct(values, key, v)

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("encode %s: unsupported map key %s", key, v.Type().Key())
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			elem := v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key()))
			if err := encodeValue(values, childKey(key, k), elem); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := encodeValue(values, childKey(key, strconv.Itoa(i)), v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}

	if key == "" {
		return fmt.Errorf("encode: top-level %s is not a record", v.Kind())
	}
	s, err := scalarString(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	values.Add(key, s)
	return nil
}

func encodeStruct(values url.Values, key string, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty := jsonName(field)
		if name == "-" {
			continue
		}
		fv := v.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		if err := encodeValue(values, childKey(key, name), fv); err != nil {
			return err
		}
	}
	return nil
}

func scalarString(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported kind %s", v.Kind())
}

func jsonName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(opts, "omitempty")
}

func childKey(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "[" + child + "]"
}
