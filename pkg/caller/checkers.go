package caller

import (
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Checker validates and optionally coerces a raw value.
// It returns the value to use or an error describing why the value was rejected.
type Checker func(value any) (any, error)

// Identity accepts every value unchanged.
func Identity(value any) (any, error) { return value, nil }

// BoolChecker adapts a predicate style checker that reports good or bad
// instead of returning an error. Accepted values are returned unchanged.
func BoolChecker(good func(value any) bool) Checker {
	return func(value any) (any, error) {
		if !good(value) {
			return nil, errors.New("rejected by checker")
		}
		return value, nil
	}
}

// Chain runs the checkers in order, feeding each result into the next.
func Chain(checkers ...Checker) Checker {
	return func(value any) (any, error) {
		var err error
		for _, check := range checkers {
			if check == nil {
				continue
			}
			if value, err = check(value); err != nil {
				return nil, err
			}
		}
		return value, nil
	}
}

// String coerces scalar values to their string form.
func String() Checker {
	return func(value any) (any, error) {
		switch v := value.(type) {
		case nil:
			return nil, errors.New("value is nil")
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		case []byte:
			return string(v), nil
		case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return fmt.Sprint(v), nil
		default:
			return nil, fmt.Errorf("cannot use %T as a string", value)
		}
	}
}

// Int coerces integers, integral floats and decimal strings to int.
func Int() Checker {
	return func(value any) (any, error) {
		switch v := value.(type) {
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("invalid integer value '%s'", v)
			}
			return i, nil
		case float32, float64:
			f := reflect.ValueOf(v).Float()
			if f != math.Trunc(f) || f < float64(math.MinInt) || f >= -float64(math.MinInt) {
				return nil, fmt.Errorf("invalid integer value %v", v)
			}
			return int(f), nil
		case bool:
			return nil, fmt.Errorf("invalid integer value %v", v)
		}
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if i := rv.Int(); i < math.MinInt || i > math.MaxInt {
				return nil, fmt.Errorf("invalid integer value %v", value)
			}
			return int(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if rv.Uint() > math.MaxInt {
				return nil, fmt.Errorf("invalid integer value %v", value)
			}
			return int(rv.Uint()), nil
		}
		return nil, fmt.Errorf("cannot use %T as an integer", value)
	}
}

// Float coerces numbers and decimal strings to float64.
func Float() Checker {
	return func(value any) (any, error) {
		switch v := value.(type) {
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid float value '%s'", v)
			}
			return f, nil
		case bool:
			return nil, fmt.Errorf("invalid float value %v", v)
		}
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		}
		return nil, fmt.Errorf("cannot use %T as a float", value)
	}
}

// Bool coerces booleans, 0/1 integers and the usual words to bool.
func Bool() Checker {
	return func(value any) (any, error) {
		switch v := value.(type) {
		case bool:
			return v, nil
		case int:
			if v == 0 || v == 1 {
				return v == 1, nil
			}
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "1", "yes", "on":
				return true, nil
			case "false", "0", "no", "off", "":
				return false, nil
			}
			return nil, fmt.Errorf("invalid boolean value '%s' (use true/false, 1/0, yes/no, on/off)", v)
		}
		return nil, fmt.Errorf("invalid boolean value %v", value)
	}
}

// Enum accepts only the listed string values.
func Enum(values ...string) Checker {
	toString := String()
	return func(value any) (any, error) {
		s, err := toString(value)
		if err != nil {
			return nil, err
		}
		for _, valid := range values {
			if s == valid {
				return s, nil
			}
		}
		return nil, fmt.Errorf("invalid value '%s'. Valid values: %s", s, strings.Join(values, ", "))
	}
}

// Pattern accepts strings matching re.
func Pattern(re *regexp.Regexp) Checker {
	toString := String()
	return func(value any) (any, error) {
		s, err := toString(value)
		if err != nil {
			return nil, err
		}
		if !re.MatchString(s.(string)) {
			return nil, fmt.Errorf("value '%s' does not match required pattern '%s'", s, re)
		}
		return s, nil
	}
}

// Range accepts numbers within [min, max]. A nil bound is not checked.
// The value is returned unchanged, so Range is normally chained after Int or Float.
func Range(lower, upper *float64) Checker {
	toFloat := Float()
	return func(value any) (any, error) {
		f, err := toFloat(value)
		if err != nil {
			return nil, err
		}
		if lower != nil && f.(float64) < *lower {
			return nil, fmt.Errorf("value %v is below minimum %g", value, *lower)
		}
		if upper != nil && f.(float64) > *upper {
			return nil, fmt.Errorf("value %v is above maximum %g", value, *upper)
		}
		return value, nil
	}
}

// Path accepts non-empty path strings.
func Path() Checker {
	toString := String()
	return func(value any) (any, error) {
		s, err := toString(value)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(s.(string)) == "" {
			return nil, errors.New("path cannot be empty")
		}
		return s, nil
	}
}

// ExistingPath accepts paths that exist on the local filesystem.
func ExistingPath() Checker {
	return Chain(Path(), func(value any) (any, error) {
		if _, err := os.Stat(value.(string)); err != nil {
			return nil, err
		}
		return value, nil
	})
}

// Truthy reports whether value is considered "on" for a flag:
// nil, false, zero numbers and empty strings, slices and maps are falsy.
func Truthy(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return !rv.IsZero()
}
