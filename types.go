// Package cradle implements constructor and factory method resolution for
// dependency injection: given a definition, a pool of candidate executables
// and optional declared or explicit argument values, it deterministically
// selects one executable and a fully converted argument list to invoke.
package cradle

import (
	"fmt"
	"reflect"
)

var (
	StringType         = TypeOf[string]()
	ErrorType          = TypeOf[error]()
	CloseableType      = TypeOf[Closeable]()
	StringerType       = TypeOf[fmt.Stringer]()
	injectionPointType = TypeOf[*InjectionPoint]()
)

// Closeable is an interface that can be used to close resources.
type Closeable interface {
	Close() error
}

func matchType(queryType, providedType reflect.Type) bool {
	if providedType == nil {
		return false
	}
	if queryType == providedType {
		return true
	}
	if queryType.Kind() == reflect.Interface && providedType.Implements(queryType) {
		return true
	}
	return false
}

func TypeOf[I any]() reflect.Type {
	var i I
	t := reflect.TypeOf(i)
	if t == nil {
		t = reflect.TypeOf((*I)(nil)).Elem()
	}
	return t
}

func tryGetAt[T any](slice []T, index int) (val T, found bool) {
	if index < 0 || index >= len(slice) {
		return val, false
	}
	return slice[index], true
}
