package cradle

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cradle-di/cradle/fn"
	"github.com/cradle-di/cradle/option"
	"github.com/cradle-di/cradle/set"
)

// RegistryBeanName is the name under which a registry registers itself, so
// beans can declare a *Registry dependency and resolve lazily at runtime.
const RegistryBeanName = "cradle.registry"

type (
	// Registry holds bean definitions and the singletons created from
	// them. It implements DefinitionStore and DependencyLocator for the
	// resolver it owns, closing the loop: autowired parameters and
	// declared references trigger nested GetBean calls through it.
	Registry struct {
		definitions *SortedCOWSlice[*Definition]
		index       sync.Map // name -> *Definition

		singletons *Store
		locks      *LockManager
		resolver   *Resolver

		depMu      sync.Mutex
		dependents map[string]set.Set[string]

		logger zerolog.Logger
	}

	RegistryOptions struct {
		logger       *zerolog.Logger
		resolverOpts []option.Option[ResolverOptions]
	}
)

func WithRegistryLogger(logger zerolog.Logger) option.Option[RegistryOptions] {
	return func(opts *RegistryOptions) {
		opts.logger = &logger
	}
}

func WithResolverOptions(resolverOpts ...option.Option[ResolverOptions]) option.Option[RegistryOptions] {
	return func(opts *RegistryOptions) {
		opts.resolverOpts = append(opts.resolverOpts, resolverOpts...)
	}
}

func NewRegistry(opts ...option.Option[RegistryOptions]) *Registry {
	options := option.Build(&RegistryOptions{}, opts...)

	r := &Registry{
		definitions: NewSortedCOWSlice[*Definition](compareByName),
		singletons:  NewStore(),
		locks:       NewLockManager(),
		dependents:  make(map[string]set.Set[string]),
		logger:      zerolog.Nop(),
	}
	if options.logger != nil {
		r.logger = *options.logger
	}

	resolverOpts := options.resolverOpts
	if options.logger != nil {
		resolverOpts = append(resolverOpts, WithLogger(*options.logger))
	}
	r.resolver = NewResolver(r, r, resolverOpts...)

	// register itself so beans can depend on *Registry; the instance is
	// served from getBean directly, never from the singleton store, so
	// Close does not try to close the registry through itself
	selfDef, err := NewDefinition(RegistryBeanName, ForType(reflect.TypeOf(r)))
	if err == nil {
		r.MustRegister(selfDef)
	}

	return r
}

func (r *Registry) Register(def *Definition) error {
	if _, exists := r.index.Load(def.name); exists {
		return fmt.Errorf("a definition named %q is already registered", def.name)
	}
	r.index.Store(def.name, def)
	r.definitions.Add(def)
	return nil
}

func (r *Registry) MustRegister(def *Definition) *Registry {
	if err := r.Register(def); err != nil {
		panic(fmt.Sprintf("failed to register definition %s:\n\t%v", def, err))
	}
	return r
}

// Definition implements DefinitionStore.
func (r *Registry) Definition(name string) (*Definition, bool) {
	raw, found := r.index.Load(name)
	if !found {
		return nil, false
	}
	return raw.(*Definition), true
}

// GetBean returns the bean of the given name, creating it (and its
// dependencies, recursively) if needed. Singletons are created once and
// cached; prototypes are created on every call.
func (r *Registry) GetBean(name string) (any, error) {
	return r.getBean(nil, name, nil)
}

// GetBeanWithArgs creates a fresh instance of the named bean using the
// given arguments verbatim. The candidate arity must match exactly, the
// declared argument values and the cached plan are both bypassed, and the
// result is never stored as a singleton.
func (r *Registry) GetBeanWithArgs(name string, args ...any) (any, error) {
	if args == nil {
		args = emptyArgs
	}
	return r.getBean(nil, name, args)
}

func (r *Registry) getBean(ctx *ResolutionContext, name string, explicitArgs []any) (any, error) {
	if name == RegistryBeanName {
		return r, nil
	}

	def, found := r.Definition(name)
	if !found {
		return nil, fmt.Errorf("no definition registered under name %q", name)
	}

	cached := !def.Prototype() && explicitArgs == nil
	if cached {
		if bean, found := r.singletons.Get(name); found {
			return bean, nil
		}
	}

	if ctx == nil {
		ctx = newResolutionContext()
	}
	if err := ctx.tracker.Push(name); err != nil {
		return nil, fmt.Errorf("failed to create bean %q:\n\t%w", name, err)
	}
	defer ctx.tracker.Pop()

	if !cached {
		return r.createBean(ctx, def, explicitArgs)
	}

	lock := r.locks.GetLockFor(name)
	lock.Lock()
	defer func() {
		lock.Unlock()
		r.locks.ReleaseLock(name)
	}()

	// a concurrent request may have finished the creation while we waited
	if bean, found := r.singletons.Get(name); found {
		return bean, nil
	}

	bean, err := r.createBean(ctx, def, nil)
	if err != nil {
		return nil, err
	}
	r.singletons.Put(name, bean)
	return bean, nil
}

func (r *Registry) createBean(ctx *ResolutionContext, def *Definition, explicitArgs []any) (any, error) {
	r.logger.Debug().Str("bean", def.name).Msg("creating bean")

	var (
		bean       any
		executable *Executable
		err        error
	)
	if def.usesFactory() {
		bean, executable, err = r.resolver.InstantiateFactoryMethod(ctx, def, explicitArgs)
	} else {
		bean, executable, err = r.resolver.ResolveConstructor(ctx, def, nil, explicitArgs)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Str("bean", def.name).
		Stringer("executable", executable).
		Msg("bean created")
	return bean, nil
}

// FindByType implements DependencyLocator. A slice type is satisfied by
// collecting every definition whose bean type matches the element type; any
// other type requires exactly one matching definition.
func (r *Registry) FindByType(ctx *ResolutionContext, typ reflect.Type, requesting string, excludeSelf bool) (any, string, error) {
	if typ.Kind() == reflect.Slice {
		return r.findAllByType(ctx, typ, requesting, excludeSelf)
	}

	matches := r.matchingDefinitions(typ, requesting, excludeSelf)
	if len(matches) == 0 {
		return nil, "", &NoSuchDependencyError{Type: typ.String(), Requester: requesting}
	}
	if len(matches) > 1 {
		names := make([]string, len(matches))
		for i, match := range matches {
			names[i] = match.name
		}
		return nil, "", &DuplicateDependencyError{Type: typ.String(), Requester: requesting, Candidates: names}
	}

	bean, err := r.getBean(ctx, matches[0].name, nil)
	if err != nil {
		return nil, "", err
	}
	return bean, matches[0].name, nil
}

func (r *Registry) findAllByType(ctx *ResolutionContext, sliceType reflect.Type, requesting string, excludeSelf bool) (any, string, error) {
	matches := r.matchingDefinitions(sliceType.Elem(), requesting, excludeSelf)
	if len(matches) == 0 {
		return nil, "", &NoSuchDependencyError{Type: sliceType.String(), Requester: requesting}
	}

	result := reflect.MakeSlice(sliceType, 0, len(matches))
	for _, match := range matches {
		bean, err := r.getBean(ctx, match.name, nil)
		if err != nil {
			return nil, "", fmt.Errorf("failed to collect bean %q for slice dependency %s:\n\t%w", match.name, sliceType, err)
		}
		result = reflect.Append(result, reflect.ValueOf(bean))
	}
	return result.Interface(), "", nil
}

func (r *Registry) matchingDefinitions(typ reflect.Type, requesting string, excludeSelf bool) []*Definition {
	var matches []*Definition
	for _, def := range r.definitions.All() {
		if excludeSelf && def.name == requesting {
			continue
		}
		beanType := def.Type()
		if beanType == nil {
			continue
		}
		if matchType(typ, beanType) {
			matches = append(matches, def)
		}
	}
	return matches
}

// FindByName implements DependencyLocator.
func (r *Registry) FindByName(ctx *ResolutionContext, name string) (any, error) {
	return r.getBean(ctx, name, nil)
}

// RegisterDependent records that dependent was autowired with the bean
// named beanName, for later introspection of what depends on what.
func (r *Registry) RegisterDependent(beanName, dependentName string) {
	r.depMu.Lock()
	defer r.depMu.Unlock()

	deps, found := r.dependents[beanName]
	if !found {
		deps = set.New[string]()
		r.dependents[beanName] = deps
	}
	deps.Add(dependentName)
}

// DependentsOf returns the names of the beans recorded as depending on the
// given bean.
func (r *Registry) DependentsOf(name string) []string {
	r.depMu.Lock()
	defer r.depMu.Unlock()

	deps, found := r.dependents[name]
	if !found {
		return nil
	}
	return deps.ToSlice()
}

// Close closes every stored singleton implementing Closeable.
func (r *Registry) Close() error {
	return r.singletons.Close()
}

func (r *Registry) Describe() string {
	var b strings.Builder
	b.WriteString("* Definitions:\n")
	for _, def := range r.definitions.All() {
		b.WriteString(fmt.Sprintf("\t- %s\n", def))
		if desc := def.Description(); desc != "" {
			b.WriteString(fmt.Sprintf("\t\tdescription: %s\n", desc))
		}
	}
	b.WriteString("* Stored singletons:\n")
	for _, name := range r.singletons.ListNames() {
		bean, _ := r.singletons.Get(name)
		b.WriteString(fmt.Sprintf("\t- %s: %v\n", name, bean))
	}
	return b.String()
}

func compareByName(d1, d2 *Definition) fn.ComparisonResult {
	if d1.name < d2.name {
		return fn.Less
	}
	if d1.name > d2.name {
		return fn.Greater
	}
	return fn.Equal
}
