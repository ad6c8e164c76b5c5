package cradle

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"unicode"

	"github.com/cradle-di/cradle/option"
)

type (
	// Executable is the descriptor for one candidate constructor function
	// or factory method. It is immutable once built: the resolution engine
	// only ever reads parameter and return metadata from it.
	Executable struct {
		name      string
		fn        reflect.Value
		declaring reflect.Type
		static    bool

		paramTypes []reflect.Type
		paramNames []string
		returns    reflect.Type // nil when the function returns nothing
		returnsErr bool
	}

	ExecutableOptions struct {
		name       string
		paramNames []string
	}
)

// WithName overrides the name derived from the function symbol.
func WithName(name string) option.Option[ExecutableOptions] {
	return func(opts *ExecutableOptions) {
		opts.name = name
	}
}

// WithParameterNames declares the parameter names of the executable, making
// declared argument values matchable by name. The count must match the
// function's parameter count.
func WithParameterNames(names ...string) option.Option[ExecutableOptions] {
	return func(opts *ExecutableOptions) {
		opts.paramNames = names
	}
}

// NewConstructor builds a descriptor for a constructor function. The
// function must return the instance, optionally followed by an error.
func NewConstructor(fn any, opts ...option.Option[ExecutableOptions]) (*Executable, error) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return nil, errors.New("constructor must be a function")
	}
	if t.NumOut() != 1 && t.NumOut() != 2 {
		return nil, errors.New("constructor must either return the instance and an error, or just the instance")
	}
	return newExecutable(fn, t, opts)
}

// NewFactoryFunction builds a descriptor for a static factory function
// candidate. Unlike NewConstructor it tolerates a function without a return
// value so that selecting one can be reported as a configuration error.
func NewFactoryFunction(fn any, opts ...option.Option[ExecutableOptions]) (*Executable, error) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return nil, errors.New("factory function must be a function")
	}
	if t.NumOut() > 2 {
		return nil, errors.New("factory function must return at most the instance and an error")
	}
	return newExecutable(fn, t, opts)
}

func newExecutable(fn any, t reflect.Type, opts []option.Option[ExecutableOptions]) (*Executable, error) {
	if t.NumOut() == 2 && t.Out(1) != ErrorType {
		return nil, errors.New("if the function returns two elements, the second must be an error")
	}

	fnName := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	options := option.Build(
		&ExecutableOptions{
			name: filepath.Base(fnName),
		},
		opts...,
	)

	paramTypes := make([]reflect.Type, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		paramTypes[i] = t.In(i)
	}
	if options.paramNames != nil && len(options.paramNames) != len(paramTypes) {
		return nil, fmt.Errorf(
			"declared %d parameter names for %s, but the function has %d parameters",
			len(options.paramNames), options.name, len(paramTypes),
		)
	}

	var (
		returns    reflect.Type
		returnsErr bool
	)
	switch t.NumOut() {
	case 1:
		if t.Out(0) == ErrorType {
			returnsErr = true
		} else {
			returns = t.Out(0)
		}
	case 2:
		returns = t.Out(0)
		returnsErr = true
	}

	return &Executable{
		name:       options.name,
		fn:         reflect.ValueOf(fn),
		declaring:  returns,
		static:     true,
		paramTypes: paramTypes,
		paramNames: options.paramNames,
		returns:    returns,
		returnsErr: returnsErr,
	}, nil
}

// factoryMethodsOn enumerates the methods with the given name on a factory
// type. Go method sets expose one method per name, so the result holds at
// most one descriptor; the resolution loop does not rely on that.
func factoryMethodsOn(factoryType reflect.Type, methodName string) []*Executable {
	var candidates []*Executable
	for i := 0; i < factoryType.NumMethod(); i++ {
		m := factoryType.Method(i)
		if m.Name != methodName {
			continue
		}

		t := m.Func.Type()
		paramTypes := make([]reflect.Type, 0, t.NumIn()-1)
		for j := 1; j < t.NumIn(); j++ { // skip the receiver
			paramTypes = append(paramTypes, t.In(j))
		}

		var (
			returns    reflect.Type
			returnsErr bool
		)
		switch {
		case t.NumOut() == 1 && t.Out(0) == ErrorType:
			returnsErr = true
		case t.NumOut() >= 1:
			returns = t.Out(0)
			returnsErr = t.NumOut() >= 2 && t.Out(1) == ErrorType
		}

		candidates = append(candidates, &Executable{
			name:       factoryType.String() + "." + m.Name,
			fn:         m.Func,
			declaring:  factoryType,
			static:     false,
			paramTypes: paramTypes,
			returns:    returns,
			returnsErr: returnsErr,
		})
	}
	return candidates
}

func (e *Executable) Name() string {
	return e.name
}

// Static reports whether the executable is invoked without a factory
// instance.
func (e *Executable) Static() bool {
	return e.static
}

func (e *Executable) ParameterCount() int {
	return len(e.paramTypes)
}

func (e *Executable) ParameterTypes() []reflect.Type {
	return e.paramTypes
}

func (e *Executable) ParameterNames() []string {
	return e.paramNames
}

// ReturnType returns the produced type, or nil for a function that returns
// nothing (or only an error).
func (e *Executable) ReturnType() reflect.Type {
	return e.returns
}

// Exported reports whether the underlying function symbol is exported.
// Unexported constructors only take part in resolution when the definition
// allows non-exported access.
func (e *Executable) Exported() bool {
	short := e.name
	if idx := strings.LastIndex(short, "."); idx >= 0 {
		short = short[idx+1:]
	}
	if short == "" {
		return false
	}
	return unicode.IsUpper([]rune(short)[0])
}

// sameSignature reports whether both executables declare the same ordered
// parameter type list.
func (e *Executable) sameSignature(other *Executable) bool {
	if len(e.paramTypes) != len(other.paramTypes) {
		return false
	}
	for i, p := range e.paramTypes {
		if p != other.paramTypes[i] {
			return false
		}
	}
	return true
}

func (e *Executable) String() string {
	params := make([]string, len(e.paramTypes))
	for i, p := range e.paramTypes {
		params[i] = p.String()
	}
	ret := ""
	if e.returns != nil {
		ret = " " + e.returns.String()
	}
	return fmt.Sprintf("%s(%s)%s", e.name, strings.Join(params, ", "), ret)
}
