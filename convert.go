package cradle

import (
	"reflect"
	"time"

	"github.com/spf13/cast"
)

var (
	durationType = TypeOf[time.Duration]()
	timeType     = TypeOf[time.Time]()
)

// castConverter is the default TypeConverter: assignable values pass
// through, scalar coercions (string to int, int to string, ...) go through
// spf13/cast, and remaining named-type conversions fall back to reflect
// convertibility.
type castConverter struct{}

func NewTypeConverter() TypeConverter {
	return castConverter{}
}

func (castConverter) Convert(value any, target reflect.Type, param *Parameter) (any, error) {
	if value == nil {
		if isNilable(target.Kind()) {
			return nil, nil
		}
		return nil, &TypeMismatchError{Value: value, Target: target.String(), Detail: "nil is not acceptable for a non-nilable kind"}
	}

	valueType := reflect.TypeOf(value)
	if valueType.AssignableTo(target) {
		return value, nil
	}

	if coerced, ok, err := coerceScalar(value, target); ok {
		if err != nil {
			return nil, &TypeMismatchError{Value: value, Target: target.String(), Detail: err.Error()}
		}
		return coerced, nil
	}

	// named types over convertible underlying types, e.g. int -> UserID
	if valueType.ConvertibleTo(target) && !lossyConversion(valueType, target) {
		return reflect.ValueOf(value).Convert(target).Interface(), nil
	}

	return nil, &TypeMismatchError{Value: value, Target: target.String()}
}

// coerceScalar handles the kinds cast knows about. The returned bool states
// whether the target was a scalar kind at all, so that a failed coercion is
// not retried through reflect conversion.
func coerceScalar(value any, target reflect.Type) (any, bool, error) {
	// special-cased struct and int64 targets first
	switch target {
	case durationType:
		d, err := cast.ToDurationE(value)
		return d, true, err
	case timeType:
		t, err := cast.ToTimeE(value)
		return t, true, err
	}

	switch target.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(value)
		return retype(s, target), true, err
	case reflect.Bool:
		b, err := cast.ToBoolE(value)
		return retype(b, target), true, err
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := cast.ToInt64E(value)
		return retype(i, target), true, err
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := cast.ToUint64E(value)
		return retype(u, target), true, err
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(value)
		return retype(f, target), true, err
	default:
		return nil, false, nil
	}
}

// retype converts a coerced scalar to the exact target type, so that named
// kinds (type Port int) come out as their declared type.
func retype(v any, target reflect.Type) any {
	rv := reflect.ValueOf(v)
	if rv.Type() == target {
		return v
	}
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface()
	}
	return v
}

// lossyConversion rejects reflect conversions that are legal but almost
// never intended, like int -> string producing a one-rune string.
func lossyConversion(from, to reflect.Type) bool {
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		switch from.Kind() {
		case reflect.Slice: // []byte / []rune to string is fine
			return false
		default:
			return true
		}
	}
	return false
}
