package cradle

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cradle-di/cradle/option"
)

type (
	// Definition describes one bean: how to build it (registered
	// constructor functions, or a factory method), its declared argument
	// values, and the resolution policies that apply. A successful
	// resolution with no explicit arguments is cached on the definition so
	// repeated creations skip candidate search.
	Definition struct {
		name        string
		typ         reflect.Type
		description string

		constructors  []*Executable
		factoryBean   string
		factoryMethod string
		factoryFuncs  []*Executable

		argumentValues   *ArgumentValues
		lenient          bool
		autowire         bool
		allowNonExported bool
		prototype        bool

		// resolution state, guarded by planMu so a partially written
		// plan is never observed
		planMu              sync.Mutex
		plan                *resolutionPlan
		uniqueFactoryKnown  bool
		uniqueFactoryMethod *Executable
	}

	DefinitionOptions struct {
		typ           reflect.Type
		description   string
		constructors  []any
		descriptors   []*Executable
		factoryBean   string
		factoryMethod string
		factoryFuncs  []any
		args          *ArgumentValues
		strict        bool
		noAutowire    bool
		nonExported   bool
		prototype     bool
	}
)

// ForType declares the bean type of the definition. Optional when
// constructors are registered, since their return type identifies it.
func ForType(t reflect.Type) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.typ = t
	}
}

// Constructors registers constructor functions as the candidate pool of the
// definition. Several functions form an overload set.
func Constructors(fns ...any) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.constructors = append(opts.constructors, fns...)
	}
}

// ConstructorDescriptors registers pre-built descriptors, typically carrying
// parameter names.
func ConstructorDescriptors(executables ...*Executable) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.descriptors = append(opts.descriptors, executables...)
	}
}

// FactoryMethod declares that the bean is produced by calling the named
// method on another bean (the factory bean).
func FactoryMethod(factoryBean, method string) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.factoryBean = factoryBean
		opts.factoryMethod = method
	}
}

// FactoryFunctions declares that the bean is produced by one of the given
// package-level factory functions (the static factory variant).
func FactoryFunctions(fns ...any) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.factoryFuncs = append(opts.factoryFuncs, fns...)
	}
}

// IndexedArgument declares a constructor argument value for an explicit
// parameter position.
func IndexedArgument(index int, value any, valueOpts ...option.Option[ValueOptions]) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		if opts.args == nil {
			opts.args = NewArgumentValues()
		}
		opts.args.AddIndexed(index, value, valueOpts...)
	}
}

// Argument declares a generic constructor argument value, matched by type or
// name rather than position.
func Argument(value any, valueOpts ...option.Option[ValueOptions]) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		if opts.args == nil {
			opts.args = NewArgumentValues()
		}
		opts.args.AddGeneric(value, valueOpts...)
	}
}

// StrictResolution switches the definition from the default lenient scoring
// to strict assignability scoring, under which ties are an error.
func StrictResolution() option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.strict = true
	}
}

// NoAutowire disables dependency lookup by type for parameters without a
// declared value.
func NoAutowire() option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.noAutowire = true
	}
}

// AllowNonExported lets unexported constructor functions take part in
// resolution.
func AllowNonExported() option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.nonExported = true
	}
}

// Prototype makes every creation request produce a fresh instance instead
// of caching a singleton.
func Prototype() option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.prototype = true
	}
}

func WithDescription(description string) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.description = description
	}
}

func NewDefinition(name string, opts ...option.Option[DefinitionOptions]) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("definition name must not be empty")
	}
	options := option.Build(&DefinitionOptions{}, opts...)

	constructors := make([]*Executable, 0, len(options.constructors)+len(options.descriptors))
	for _, fn := range options.constructors {
		executable, err := NewConstructor(fn)
		if err != nil {
			return nil, fmt.Errorf("invalid constructor for definition %q:\n\t%w", name, err)
		}
		constructors = append(constructors, executable)
	}
	constructors = append(constructors, options.descriptors...)

	factoryFuncs := make([]*Executable, 0, len(options.factoryFuncs))
	for _, fn := range options.factoryFuncs {
		executable, err := NewFactoryFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("invalid factory function for definition %q:\n\t%w", name, err)
		}
		factoryFuncs = append(factoryFuncs, executable)
	}

	args := options.args
	if args == nil {
		args = NewArgumentValues()
	}

	return &Definition{
		name:             name,
		typ:              options.typ,
		description:      options.description,
		constructors:     constructors,
		factoryBean:      options.factoryBean,
		factoryMethod:    options.factoryMethod,
		factoryFuncs:     factoryFuncs,
		argumentValues:   args,
		lenient:          !options.strict,
		autowire:         !options.noAutowire,
		allowNonExported: options.nonExported,
		prototype:        options.prototype,
	}, nil
}

func (d *Definition) Name() string {
	return d.name
}

func (d *Definition) Description() string {
	return d.description
}

// Type returns the declared bean type, falling back to the return type of
// the first registered constructor or factory function.
func (d *Definition) Type() reflect.Type {
	if d.typ != nil {
		return d.typ
	}
	if len(d.constructors) > 0 {
		return d.constructors[0].ReturnType()
	}
	if len(d.factoryFuncs) > 0 {
		return d.factoryFuncs[0].ReturnType()
	}
	return nil
}

func (d *Definition) Constructors() []*Executable {
	return d.constructors
}

func (d *Definition) ArgumentValues() *ArgumentValues {
	return d.argumentValues
}

func (d *Definition) Lenient() bool {
	return d.lenient
}

func (d *Definition) Prototype() bool {
	return d.prototype
}

// usesFactory reports whether the bean is produced by a factory method or
// factory function rather than a constructor.
func (d *Definition) usesFactory() bool {
	return d.factoryMethod != "" || len(d.factoryFuncs) > 0
}

// FactoryMethodDescriptor returns the factory method recorded by a previous
// ResolveFactoryMethod or factory instantiation, nil when resolution has not
// happened or found no unique candidate.
func (d *Definition) FactoryMethodDescriptor() *Executable {
	d.planMu.Lock()
	defer d.planMu.Unlock()
	return d.uniqueFactoryMethod
}

// cachedPlan reads the resolution plan under the definition lock, so a
// partially written plan can never be observed.
func (d *Definition) cachedPlan() *resolutionPlan {
	d.planMu.Lock()
	defer d.planMu.Unlock()
	return d.plan
}

func (d *Definition) storePlan(plan *resolutionPlan) {
	d.planMu.Lock()
	defer d.planMu.Unlock()
	d.plan = plan
}

func (d *Definition) recordFactoryMethod(executable *Executable) {
	d.planMu.Lock()
	defer d.planMu.Unlock()
	d.uniqueFactoryKnown = true
	d.uniqueFactoryMethod = executable
}

func (d *Definition) knownFactoryMethod() (*Executable, bool) {
	d.planMu.Lock()
	defer d.planMu.Unlock()
	return d.uniqueFactoryMethod, d.uniqueFactoryKnown
}

func (d *Definition) String() string {
	return fmt.Sprintf("Definition(%s, %v)", d.name, d.Type())
}
