package cradle

import (
	"math"
	"reflect"
)

type (
	preparedKind int

	// preparedArgument is the cache-safe form of one bound argument: a
	// literal reusable verbatim, a raw declared value to re-resolve, or a
	// marker for a dependency looked up by type at creation time.
	preparedArgument struct {
		kind  preparedKind
		value any
	}

	// argumentsHolder is the per-candidate working set produced by the
	// binder: the raw values before conversion, the converted values that
	// will actually be passed, and the prepared representation used when
	// the binding is cached. resolveNecessary flags a binding that relied
	// on autowiring or freshly resolved declared values, which must not be
	// reused verbatim for later creations.
	argumentsHolder struct {
		rawArguments []any
		arguments    []any
		prepared     []preparedArgument

		resolveNecessary bool
	}
)

const (
	preparedLiteral preparedKind = iota
	preparedSource
	preparedAutowired
)

func newArgumentsHolder(size int) *argumentsHolder {
	return &argumentsHolder{
		rawArguments: make([]any, size),
		arguments:    make([]any, size),
		prepared:     make([]preparedArgument, size),
	}
}

// holderForExplicit wraps caller-supplied arguments: they are used verbatim
// and never cached, so all three views alias the same values.
func holderForExplicit(args []any) *argumentsHolder {
	prepared := make([]preparedArgument, len(args))
	for i, arg := range args {
		prepared[i] = preparedArgument{kind: preparedLiteral, value: arg}
	}
	return &argumentsHolder{
		rawArguments: args,
		arguments:    args,
		prepared:     prepared,
	}
}

// typeDifferenceWeight is the lenient score: the minimum of the converted
// weight and the raw weight lowered by a fixed penalty, so that a raw match
// wins over an equally good converted one.
func (h *argumentsHolder) typeDifferenceWeight(paramTypes []reflect.Type) int {
	converted := typeDifferenceWeight(paramTypes, h.arguments)
	raw := typeDifferenceWeight(paramTypes, h.rawArguments) - rawPreferencePenalty
	if raw < converted {
		return raw
	}
	return converted
}

// assignabilityWeight is the strict score: every converted argument must be
// directly assignable, else the candidate is rejected outright; raw
// assignability on top yields a slightly better weight.
func (h *argumentsHolder) assignabilityWeight(paramTypes []reflect.Type) int {
	for i, paramType := range paramTypes {
		if !isAssignableValue(paramType, h.arguments[i]) {
			return math.MaxInt
		}
	}
	for i, paramType := range paramTypes {
		if !isAssignableValue(paramType, h.rawArguments[i]) {
			return math.MaxInt - 512
		}
	}
	return math.MaxInt - 1024
}
