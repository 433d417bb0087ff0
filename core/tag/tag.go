// Package tag fills zero-valued struct fields from `default:"..."` tags.
package tag

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	tagName  = "default"
	maxDepth = 32
)

var (
	ErrTargetMustBePointer = errors.New("target must be a pointer")
	ErrTargetIsNil         = errors.New("target is nil")
	ErrUnsupportedType     = errors.New("unsupported type")
	ErrMaxDepthExceeded    = errors.New("max recursion depth exceeded")
)

// FieldError reports which field a default could not be applied to
type FieldError struct {
	Path  string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q (default %q): %v", e.Path, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ApplyDefaults sets every zero-valued field of the struct pointed to by target
// to the value of its default tag. Nested structs are walked; fields that
// already hold a value are left alone.
//
//	type Log struct {
//	    Level string `default:"info"`
//	}
func ApplyDefaults(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer {
		return ErrTargetMustBePointer
	}
	if v.IsNil() {
		return ErrTargetIsNil
	}
	if v.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedType
	}
	return applyStruct(v.Elem(), "", 0)
}

func applyStruct(v reflect.Value, path string, depth int) error {
	if depth >= maxDepth {
		return ErrMaxDepthExceeded
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		fieldPath := field.Name
		if path != "" {
			fieldPath = path + "." + field.Name
		}

		switch {
		case fv.Kind() == reflect.Struct && !implementsText(fv):
			if err := applyStruct(fv, fieldPath, depth+1); err != nil {
				return err
			}
		case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct:
			if fv.IsNil() {
				continue
			}
			if err := applyStruct(fv.Elem(), fieldPath, depth+1); err != nil {
				return err
			}
		default:
			def, ok := field.Tag.Lookup(tagName)
			if !ok || !fv.IsZero() {
				continue
			}
			if err := parse(fv, def); err != nil {
				return &FieldError{Path: fieldPath, Value: def, Err: err}
			}
		}
	}
	return nil
}

func implementsText(v reflect.Value) bool {
	if !v.CanAddr() {
		return false
	}
	_, ok := v.Addr().Interface().(encoding.TextUnmarshaler)
	return ok
}

func parse(v reflect.Value, s string) error {
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(s))
		}
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == reflect.TypeFor[time.Duration]() {
			d, err := time.ParseDuration(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			v.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Slice:
		parts := strings.Split(s, ",")
		slice := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := parse(slice.Index(i), strings.TrimSpace(part)); err != nil {
				return err
			}
		}
		v.Set(slice)
	case reflect.Pointer:
		elem := reflect.New(v.Type().Elem())
		if err := parse(elem.Elem(), s); err != nil {
			return err
		}
		v.Set(elem)
	default:
		return ErrUnsupportedType
	}
	return nil
}
