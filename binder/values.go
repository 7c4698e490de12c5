package binder

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// bindValues copies tagged values into the struct pointed to by v.
// Missing keys leave fields untouched. Untagged embedded structs are walked.
func bindValues(v any, tag string, values url.Values, kind error) error {
	rv, err := target(v)
	if err != nil {
		return err
	}
	return bindStruct(rv, tag, values, kind)
}

func bindStruct(rv reflect.Value, tag string, values url.Values, kind error) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}
		if _, tagged := sf.Tag.Lookup(tag); sf.Anonymous && !tagged && field.Kind() == reflect.Struct {
			if err := bindStruct(field, tag, values, kind); err != nil {
				return err
			}
			continue
		}
		name, skip := fieldName(sf, tag)
		if skip {
			continue
		}
		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			continue
		}
		if err := setField(field, raw); err != nil {
			return fmt.Errorf("%w: %s: %v", kind, name, err)
		}
	}
	return nil
}

// fieldName returns the key for sf under tag. Fields without the tag are skipped.
func fieldName(sf reflect.StructField, tag string) (string, bool) {
	value, ok := sf.Tag.Lookup(tag)
	if !ok || value == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(value, ",")
	if name == "" {
		name = sf.Name
	}
	return name, false
}

func setField(field reflect.Value, raw []string) error {
	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		if err := setField(ptr.Elem(), raw); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	if field.Kind() == reflect.Slice {
		var items []string
		for _, r := range raw {
			items = append(items, strings.Split(r, ",")...)
		}
		slice := reflect.MakeSlice(field.Type(), len(items), len(items))
		for i, item := range items {
			if err := setScalar(slice.Index(i), strings.TrimSpace(item)); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	}

	return setScalar(field, raw[0])
}

func setScalar(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Bool:
		if s == "on" {
			field.SetBool(true)
			return nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported type %s", field.Type())
	}
	return nil
}
