package cradle

import (
	"fmt"
	"reflect"
)

// reflectiveStrategy is the default InstantiationStrategy: it calls the
// executable through reflection, recovering from panics in user factory
// code.
type reflectiveStrategy struct{}

func NewInstantiationStrategy() InstantiationStrategy {
	return reflectiveStrategy{}
}

func (reflectiveStrategy) Instantiate(executable *Executable, target any, args []any) (any, error) {
	paramTypes := executable.ParameterTypes()
	if len(args) != len(paramTypes) {
		return nil, fmt.Errorf("expected %d arguments for %s, got %d", len(paramTypes), executable, len(args))
	}

	callArgs := make([]reflect.Value, 0, len(args)+1)
	if !executable.Static() {
		if target == nil {
			return nil, fmt.Errorf("no factory instance to invoke %s on", executable)
		}
		callArgs = append(callArgs, reflect.ValueOf(target))
	}
	for i, arg := range args {
		if arg == nil {
			callArgs = append(callArgs, reflect.Zero(paramTypes[i]))
		} else {
			callArgs = append(callArgs, reflect.ValueOf(arg))
		}
	}

	// panic recovery, as Call panics if the factory code panics
	var (
		results []reflect.Value
		callErr error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("panic calling %s: %v", executable, r)
			}
		}()
		// the binder hands the final variadic parameter over as a single
		// slice, which Call would reject
		if executable.fn.Type().IsVariadic() {
			results = executable.fn.CallSlice(callArgs)
		} else {
			results = executable.fn.Call(callArgs)
		}
	}()

	if callErr != nil {
		return nil, callErr
	}

	if executable.returnsErr {
		errResult := results[len(results)-1]
		if !errResult.IsNil() {
			return nil, errResult.Interface().(error)
		}
	}
	if executable.returns == nil {
		return nil, nil
	}

	return results[0].Interface(), nil
}
