package cradle

import (
	"math"
	"reflect"
)

// rawPreferencePenalty is subtracted from the raw argument weight so that a
// binding satisfiable without conversion beats an equally good converted
// binding.
const rawPreferencePenalty = 1024

// typeDifferenceWeight scores how closely the runtime types of the given
// arguments match the declared parameter types. An exact type costs nothing,
// an assignable concrete type costs 2, satisfying an interface parameter
// costs 1, and any argument that is not assignable rejects the whole
// candidate with math.MaxInt. Lower is strictly better.
func typeDifferenceWeight(paramTypes []reflect.Type, args []any) int {
	result := 0
	for i, paramType := range paramTypes {
		arg, found := tryGetAt(args, i)
		if !found || !isAssignableValue(paramType, arg) {
			return math.MaxInt
		}
		if arg == nil {
			continue
		}
		argType := reflect.TypeOf(arg)
		if argType == paramType {
			continue
		}
		if paramType.Kind() == reflect.Interface {
			result += 1
		} else {
			result += 2
		}
	}
	return result
}

// isAssignableValue reports whether the value could be passed as-is for a
// parameter of the given type. nil is acceptable for any nilable kind.
func isAssignableValue(paramType reflect.Type, value any) bool {
	if value == nil {
		return isNilable(paramType.Kind())
	}
	return reflect.TypeOf(value).AssignableTo(paramType)
}

func isNilable(kind reflect.Kind) bool {
	switch kind {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}
