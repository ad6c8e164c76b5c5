package cradle

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeDifferenceWeight(t *testing.T) {
	t.Run("it should cost nothing for exact types", func(t *testing.T) {
		// GIVEN
		paramTypes := []reflect.Type{StringType, TypeOf[int]()}

		// WHEN
		weight := typeDifferenceWeight(paramTypes, []any{"hello", 42})

		// THEN
		assert.Equal(t, 0, weight)
	})

	t.Run("it should cost one per interface parameter", func(t *testing.T) {
		// GIVEN
		paramTypes := []reflect.Type{TypeOf[Handler]()}

		// WHEN
		weight := typeDifferenceWeight(paramTypes, []any{JSONHandler{}})

		// THEN
		assert.Equal(t, 1, weight)
	})

	t.Run("it should reject a non assignable argument", func(t *testing.T) {
		// GIVEN
		paramTypes := []reflect.Type{TypeOf[int]()}

		// WHEN
		weight := typeDifferenceWeight(paramTypes, []any{"not an int"})

		// THEN
		assert.Equal(t, math.MaxInt, weight)
	})

	t.Run("it should reject a missing argument", func(t *testing.T) {
		// GIVEN
		paramTypes := []reflect.Type{StringType, StringType}

		// WHEN
		weight := typeDifferenceWeight(paramTypes, []any{"only one"})

		// THEN
		assert.Equal(t, math.MaxInt, weight)
	})

	t.Run("it should accept nil for nilable parameter kinds only", func(t *testing.T) {
		// GIVEN a pointer parameter
		assert.Equal(t, 0, typeDifferenceWeight([]reflect.Type{TypeOf[*Engine]()}, []any{nil}))
		// GIVEN an int parameter
		assert.Equal(t, math.MaxInt, typeDifferenceWeight([]reflect.Type{TypeOf[int]()}, []any{nil}))
	})
}

func TestArgumentsHolderWeights(t *testing.T) {
	t.Run("it should prefer raw matches over converted ones", func(t *testing.T) {
		// GIVEN a holder whose raw value already matched the parameter
		raw := &argumentsHolder{
			rawArguments: []any{"hello"},
			arguments:    []any{"hello"},
		}
		// GIVEN a holder whose raw value needed conversion
		converted := &argumentsHolder{
			rawArguments: []any{42},
			arguments:    []any{"42"},
		}
		paramTypes := []reflect.Type{StringType}

		// THEN
		assert.Less(t, raw.typeDifferenceWeight(paramTypes), converted.typeDifferenceWeight(paramTypes))
	})

	t.Run("it should grade strict assignability in three levels", func(t *testing.T) {
		// GIVEN
		paramTypes := []reflect.Type{StringType}

		bothAssignable := &argumentsHolder{rawArguments: []any{"a"}, arguments: []any{"a"}}
		convertedOnly := &argumentsHolder{rawArguments: []any{42}, arguments: []any{"42"}}
		neither := &argumentsHolder{rawArguments: []any{42}, arguments: []any{42}}

		// THEN
		assert.Equal(t, math.MaxInt-1024, bothAssignable.assignabilityWeight(paramTypes))
		assert.Equal(t, math.MaxInt-512, convertedOnly.assignabilityWeight(paramTypes))
		assert.Equal(t, math.MaxInt, neither.assignabilityWeight(paramTypes))
	})
}

func TestPlan(t *testing.T) {
	t.Run("it should cache resolved arguments verbatim when nothing needs re-resolution", func(t *testing.T) {
		// GIVEN
		holder := newArgumentsHolder(1)
		holder.arguments[0] = "hello"
		executable, _ := NewConstructor(NewLabeledWidget)

		// WHEN
		plan := holder.plan(executable)

		// THEN
		assert.Equal(t, []any{"hello"}, plan.resolved)
		assert.Nil(t, plan.prepared)
	})

	t.Run("it should cache the prepared template when re-resolution is necessary", func(t *testing.T) {
		// GIVEN
		holder := newArgumentsHolder(1)
		holder.prepared[0] = preparedArgument{kind: preparedAutowired}
		holder.resolveNecessary = true
		executable, _ := NewConstructor(NewWidgetWithEngine)

		// WHEN
		plan := holder.plan(executable)

		// THEN
		assert.Nil(t, plan.resolved)
		assert.Equal(t, preparedAutowired, plan.prepared[0].kind)
	})
}
