package cradle

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cradle-di/cradle/fn"
	"github.com/cradle-di/cradle/heap"
	"github.com/cradle-di/cradle/option"
	"github.com/cradle-di/cradle/set"
	"github.com/cradle-di/cradle/slices"
)

var emptyArgs = []any{}

type (
	// DefinitionStore gives the resolver access to other definitions, used
	// to determine a factory bean's type without instantiating it.
	DefinitionStore interface {
		Definition(name string) (*Definition, bool)
	}

	// dependentRecorder is optionally implemented by the dependency
	// locator to record which beans were autowired into which.
	dependentRecorder interface {
		RegisterDependent(beanName, dependentName string)
	}

	// Resolver selects, for one definition, the constructor or factory
	// method to invoke and the fully converted argument list to invoke it
	// with. Collaborators (value resolution, type conversion, dependency
	// lookup, instantiation) are pluggable; the candidate selection and
	// caching discipline live here.
	Resolver struct {
		definitions    DefinitionStore
		locator        DependencyLocator
		valueResolver  ValueResolver
		converter      TypeConverter
		nameDiscoverer ParameterNameDiscoverer
		strategy       InstantiationStrategy

		logger zerolog.Logger
	}

	ResolverOptions struct {
		valueResolver  ValueResolver
		converter      TypeConverter
		nameDiscoverer ParameterNameDiscoverer
		strategy       InstantiationStrategy
		logger         *zerolog.Logger
	}
)

func WithValueResolver(valueResolver ValueResolver) option.Option[ResolverOptions] {
	return func(opts *ResolverOptions) {
		opts.valueResolver = valueResolver
	}
}

func WithTypeConverter(converter TypeConverter) option.Option[ResolverOptions] {
	return func(opts *ResolverOptions) {
		opts.converter = converter
	}
}

func WithNameDiscoverer(discoverer ParameterNameDiscoverer) option.Option[ResolverOptions] {
	return func(opts *ResolverOptions) {
		opts.nameDiscoverer = discoverer
	}
}

func WithInstantiationStrategy(strategy InstantiationStrategy) option.Option[ResolverOptions] {
	return func(opts *ResolverOptions) {
		opts.strategy = strategy
	}
}

func WithLogger(logger zerolog.Logger) option.Option[ResolverOptions] {
	return func(opts *ResolverOptions) {
		opts.logger = &logger
	}
}

func NewResolver(definitions DefinitionStore, locator DependencyLocator, opts ...option.Option[ResolverOptions]) *Resolver {
	options := option.Build(&ResolverOptions{}, opts...)

	r := &Resolver{
		definitions:    definitions,
		locator:        locator,
		valueResolver:  options.valueResolver,
		converter:      options.converter,
		nameDiscoverer: options.nameDiscoverer,
		strategy:       options.strategy,
		logger:         zerolog.Nop(),
	}
	if r.valueResolver == nil {
		r.valueResolver = referenceValueResolver{locator: locator}
	}
	if r.converter == nil {
		r.converter = NewTypeConverter()
	}
	if r.nameDiscoverer == nil {
		r.nameDiscoverer = declaredNameDiscoverer{}
	}
	if r.strategy == nil {
		r.strategy = NewInstantiationStrategy()
	}
	if options.logger != nil {
		r.logger = *options.logger
	}
	return r
}

// ResolveConstructor creates an instance of the definition through one of
// its constructors, selected by argument matching. chosen, when non-nil, is
// used as the candidate pool instead of the registered constructors and
// implies autowiring. explicitArgs, when non-nil, are used verbatim: they
// bypass declared argument values and the resolution cache entirely.
func (r *Resolver) ResolveConstructor(
	ctx *ResolutionContext,
	def *Definition,
	chosen []*Executable,
	explicitArgs []any,
) (any, *Executable, error) {
	if ctx == nil {
		ctx = newResolutionContext()
	}
	beanName := def.name

	var (
		ctorToUse *Executable
		argsToUse []any
	)
	if explicitArgs != nil {
		argsToUse = explicitArgs
	} else {
		var argsToResolve []preparedArgument
		if plan := def.cachedPlan(); plan != nil {
			ctorToUse = plan.executable
			if plan.resolved != nil {
				argsToUse = plan.resolved
			} else {
				argsToResolve = plan.prepared
			}
		}
		if argsToResolve != nil {
			resolved, err := r.resolvePreparedArguments(ctx, beanName, ctorToUse, argsToResolve)
			if err != nil {
				return nil, nil, err
			}
			argsToUse = resolved
		}
	}

	if ctorToUse == nil || argsToUse == nil {
		candidates := chosen
		if candidates == nil {
			candidates = def.Constructors()
			if !def.allowNonExported {
				candidates = slices.Filter(candidates, (*Executable).Exported)
			}
			if len(candidates) == 0 {
				return nil, nil, &ConfigurationError{
					BeanName: beanName,
					Detail:   "no constructors registered and none chosen",
				}
			}
		}

		// unique zero-argument candidate: nothing to match, nothing to score
		if len(candidates) == 1 && explicitArgs == nil && def.argumentValues.Empty() {
			unique := candidates[0]
			if unique.ParameterCount() == 0 {
				def.storePlan(&resolutionPlan{executable: unique, resolved: emptyArgs})
				return r.instantiate(beanName, unique, nil, emptyArgs)
			}
		}

		autowiring := chosen != nil || def.autowire

		var (
			resolvedValues *ArgumentValues
			minArgs        int
		)
		if explicitArgs != nil {
			minArgs = len(explicitArgs)
		} else {
			var err error
			resolvedValues, minArgs, err = r.resolveArgumentValues(ctx, beanName, def)
			if err != nil {
				return nil, nil, err
			}
		}

		queue := sortedCandidates(candidates)
		minWeight := math.MaxInt
		var (
			holderToUse *argumentsHolder
			ambiguous   []*Executable
			causes      []*UnsatisfiedArgumentError
		)

		for queue.IsNotEmpty() {
			candidate := queue.Pop()
			paramCount := candidate.ParameterCount()

			if ctorToUse != nil && argsToUse != nil && len(argsToUse) > paramCount {
				// the incumbent is satisfied with more parameters than any
				// remaining candidate declares; sorted order guarantees no
				// better match is left
				break
			}
			if paramCount < minArgs {
				continue
			}

			var holder *argumentsHolder
			if resolvedValues != nil {
				bound, err := r.createArgumentArray(
					ctx, beanName, resolvedValues, candidate,
					r.nameDiscoverer.NamesFor(candidate),
					autowiring, len(candidates) == 1,
				)
				if err != nil {
					unsat, fatal := asBindingFailure(err)
					if fatal {
						return nil, nil, err
					}
					r.logger.Trace().
						Str("bean", beanName).
						Stringer("candidate", candidate).
						Err(err).
						Msg("ignoring constructor candidate")
					causes = append(causes, unsat)
					continue
				}
				holder = bound
			} else {
				// explicit arguments: arity must match exactly
				if paramCount != len(explicitArgs) {
					continue
				}
				holder = holderForExplicit(explicitArgs)
			}

			weight := r.weigh(def, holder, candidate)
			if weight < minWeight {
				ctorToUse = candidate
				holderToUse = holder
				argsToUse = holder.arguments
				minWeight = weight
				ambiguous = nil
			} else if ctorToUse != nil && weight == minWeight {
				if len(ambiguous) == 0 {
					ambiguous = append(ambiguous, ctorToUse)
				}
				ambiguous = append(ambiguous, candidate)
			}
		}

		if ctorToUse == nil {
			return nil, nil, noMatch(causes, &NoMatchError{
				BeanName: beanName,
				Detail: "could not resolve a matching constructor " +
					"(hint: declare index/type/name on simple argument values to avoid type ambiguities)",
				ArgDesc: describeArguments(explicitArgs, resolvedValues),
			})
		}
		if len(ambiguous) > 0 && !def.lenient {
			return nil, nil, &AmbiguityError{BeanName: beanName, Candidates: ambiguous}
		}

		if explicitArgs == nil && holderToUse != nil {
			def.storePlan(holderToUse.plan(ctorToUse))
		}
	}

	return r.instantiate(beanName, ctorToUse, nil, argsToUse)
}

// ResolveFactoryMethod determines the factory method of the definition
// without invoking it, and records it on the definition for later
// introspection. The result is nil when the candidates are overloaded with
// differing signatures, in which case full argument matching is required.
func (r *Resolver) ResolveFactoryMethod(def *Definition) (*Executable, error) {
	factoryType, _, err := r.factoryType(def)
	if err != nil {
		return nil, err
	}

	var unique *Executable
	for _, candidate := range r.factoryCandidates(def, factoryType) {
		if unique == nil {
			unique = candidate
		} else if !unique.sameSignature(candidate) {
			// genuinely overloaded, no unique answer
			unique = nil
			break
		}
	}
	def.recordFactoryMethod(unique)
	return unique, nil
}

// InstantiateFactoryMethod creates an instance of the definition through
// its factory method or factory functions, selected by argument matching
// among same-named candidates.
func (r *Resolver) InstantiateFactoryMethod(
	ctx *ResolutionContext,
	def *Definition,
	explicitArgs []any,
) (any, *Executable, error) {
	if ctx == nil {
		ctx = newResolutionContext()
	}
	beanName := def.name

	factoryType, isStatic, err := r.factoryType(def)
	if err != nil {
		return nil, nil, err
	}
	var factoryBean any
	if !isStatic {
		factoryBean, err = r.locator.FindByName(ctx, def.factoryBean)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve factory bean %q for %q:\n\t%w", def.factoryBean, beanName, err)
		}
		factoryType = reflect.TypeOf(factoryBean)
	}

	var (
		methodToUse *Executable
		argsToUse   []any
	)
	if explicitArgs != nil {
		argsToUse = explicitArgs
	} else {
		var argsToResolve []preparedArgument
		if plan := def.cachedPlan(); plan != nil {
			methodToUse = plan.executable
			if plan.resolved != nil {
				argsToUse = plan.resolved
			} else {
				argsToResolve = plan.prepared
			}
		}
		if argsToResolve != nil {
			resolved, err := r.resolvePreparedArguments(ctx, beanName, methodToUse, argsToResolve)
			if err != nil {
				return nil, nil, err
			}
			argsToUse = resolved
		}
	}

	if methodToUse == nil || argsToUse == nil {
		var candidates []*Executable
		if unique, known := def.knownFactoryMethod(); known && unique != nil {
			candidates = []*Executable{unique}
		}
		if candidates == nil {
			candidates = r.factoryCandidates(def, factoryType)
		}

		if len(candidates) == 1 && explicitArgs == nil && def.argumentValues.Empty() {
			unique := candidates[0]
			if unique.ParameterCount() == 0 {
				if unique.ReturnType() == nil {
					return nil, nil, voidFactoryError(beanName, unique)
				}
				def.recordFactoryMethod(unique)
				def.storePlan(&resolutionPlan{executable: unique, resolved: emptyArgs})
				return r.instantiate(beanName, unique, factoryBean, emptyArgs)
			}
		}

		var (
			resolvedValues *ArgumentValues
			minArgs        int
		)
		if explicitArgs != nil {
			minArgs = len(explicitArgs)
		} else if !def.argumentValues.Empty() {
			var err error
			resolvedValues, minArgs, err = r.resolveArgumentValues(ctx, beanName, def)
			if err != nil {
				return nil, nil, err
			}
		} else {
			resolvedValues = NewArgumentValues()
		}

		queue := sortedCandidates(candidates)
		minWeight := math.MaxInt
		var (
			holderToUse *argumentsHolder
			ambiguous   []*Executable
			causes      []*UnsatisfiedArgumentError
		)

		for queue.IsNotEmpty() {
			candidate := queue.Pop()
			paramCount := candidate.ParameterCount()
			if paramCount < minArgs {
				continue
			}

			var holder *argumentsHolder
			if explicitArgs != nil {
				if paramCount != len(explicitArgs) {
					continue
				}
				holder = holderForExplicit(explicitArgs)
			} else {
				bound, err := r.createArgumentArray(
					ctx, beanName, resolvedValues, candidate,
					r.nameDiscoverer.NamesFor(candidate),
					def.autowire, len(candidates) == 1,
				)
				if err != nil {
					unsat, fatal := asBindingFailure(err)
					if fatal {
						return nil, nil, err
					}
					r.logger.Trace().
						Str("bean", beanName).
						Stringer("candidate", candidate).
						Err(err).
						Msg("ignoring factory method candidate")
					causes = append(causes, unsat)
					continue
				}
				holder = bound
			}

			weight := r.weigh(def, holder, candidate)
			if weight < minWeight {
				methodToUse = candidate
				holderToUse = holder
				argsToUse = holder.arguments
				minWeight = weight
				ambiguous = nil
			} else if methodToUse != nil && weight == minWeight && !def.lenient &&
				paramCount == methodToUse.ParameterCount() && !candidate.sameSignature(methodToUse) {
				// a tie against an identical signature is the same method
				// reached through two paths, not an ambiguity
				if len(ambiguous) == 0 {
					ambiguous = append(ambiguous, methodToUse)
				}
				ambiguous = append(ambiguous, candidate)
			}
		}

		if methodToUse == nil || argsToUse == nil {
			detail := fmt.Sprintf("no matching factory method found on %v, factory method %q", factoryType, def.factoryMethod)
			if len(def.factoryFuncs) > 0 {
				detail = fmt.Sprintf("no matching factory function found among %d registered for %q", len(def.factoryFuncs), beanName)
			}
			return nil, nil, noMatch(causes, &NoMatchError{
				BeanName: beanName,
				Detail:   detail,
				ArgDesc:  describeArguments(explicitArgs, resolvedValues),
			})
		}
		if methodToUse.ReturnType() == nil {
			return nil, nil, voidFactoryError(beanName, methodToUse)
		}
		if len(ambiguous) > 0 {
			return nil, nil, &AmbiguityError{BeanName: beanName, Candidates: ambiguous}
		}

		if explicitArgs == nil && holderToUse != nil {
			def.recordFactoryMethod(methodToUse)
			def.storePlan(holderToUse.plan(methodToUse))
		}
	}

	return r.instantiate(beanName, methodToUse, factoryBean, argsToUse)
}

func (r *Resolver) factoryType(def *Definition) (factoryType reflect.Type, isStatic bool, err error) {
	if def.factoryBean != "" {
		if def.factoryBean == def.name {
			return nil, false, &ConfigurationError{
				BeanName: def.name,
				Detail:   "factory bean reference points back to the same definition",
			}
		}
		factoryDef, found := r.definitions.Definition(def.factoryBean)
		if !found {
			return nil, false, &ConfigurationError{
				BeanName: def.name,
				Detail:   fmt.Sprintf("factory bean %q is not registered", def.factoryBean),
			}
		}
		factoryType = factoryDef.Type()
		if factoryType == nil {
			return nil, false, &ConfigurationError{
				BeanName: def.name,
				Detail:   fmt.Sprintf("cannot determine the type of factory bean %q", def.factoryBean),
			}
		}
		return factoryType, false, nil
	}
	if len(def.factoryFuncs) == 0 {
		return nil, false, &ConfigurationError{
			BeanName: def.name,
			Detail:   "definition declares neither factory functions nor a factory bean",
		}
	}
	return nil, true, nil
}

func (r *Resolver) factoryCandidates(def *Definition, factoryType reflect.Type) []*Executable {
	if factoryType != nil {
		return factoryMethodsOn(factoryType, def.factoryMethod)
	}
	candidates := def.factoryFuncs
	if !def.allowNonExported {
		candidates = slices.Filter(candidates, (*Executable).Exported)
	}
	return candidates
}

// resolveArgumentValues turns the definition's declared argument metadata
// into a resolved value table: every entry not already converted goes
// through the value resolver (materializing references, recursively
// creating beans), keeping a pointer back to the original entry so that the
// raw value can be re-resolved when the binding is cached as prepared. The
// returned count is the minimum number of parameters implied by the
// declarations.
func (r *Resolver) resolveArgumentValues(ctx *ResolutionContext, beanName string, def *Definition) (*ArgumentValues, int, error) {
	cargs := def.argumentValues
	resolved := NewArgumentValues()
	minArgs := cargs.Count()

	for _, indexed := range cargs.indexedEntries() {
		if indexed.index < 0 {
			return nil, 0, &ConfigurationError{
				BeanName: beanName,
				Detail:   fmt.Sprintf("invalid constructor argument index %d", indexed.index),
			}
		}
		if indexed.index+1 > minArgs {
			minArgs = indexed.index + 1
		}
		entry, err := r.resolveEntry(ctx, beanName, indexed.entry)
		if err != nil {
			return nil, 0, err
		}
		resolved.indexed[indexed.index] = entry
	}

	for _, generic := range cargs.generic {
		entry, err := r.resolveEntry(ctx, beanName, generic)
		if err != nil {
			return nil, 0, err
		}
		resolved.generic = append(resolved.generic, entry)
	}

	return resolved, minArgs, nil
}

func (r *Resolver) resolveEntry(ctx *ResolutionContext, beanName string, entry *ValueEntry) (*ValueEntry, error) {
	if entry.Converted() {
		return entry, nil
	}
	value, err := r.valueResolver.Resolve(ctx, beanName, entry.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve declared argument value for %q:\n\t%w", beanName, err)
	}
	return &ValueEntry{
		Value:  value,
		Type:   entry.Type,
		Name:   entry.Name,
		source: entry,
	}, nil
}

// createArgumentArray binds every parameter of one candidate against the
// resolved value table, falling back to dependency lookup by type when
// autowiring is enabled. A binding failure is returned as an
// *UnsatisfiedArgumentError, which rejects this candidate only; a
// *DuplicateDependencyError aborts the whole resolution.
func (r *Resolver) createArgumentArray(
	ctx *ResolutionContext,
	beanName string,
	resolvedValues *ArgumentValues,
	executable *Executable,
	paramNames []string,
	autowiring bool,
	fallback bool,
) (*argumentsHolder, error) {
	paramTypes := executable.ParameterTypes()
	args := newArgumentsHolder(len(paramTypes))
	used := set.New[*ValueEntry]()

	for paramIndex, paramType := range paramTypes {
		paramName, nameKnown := tryGetAt(paramNames, paramIndex)
		point := &InjectionPoint{Executable: executable, ParamIndex: paramIndex, BeanName: beanName}

		entry := resolvedValues.getArgumentValue(paramIndex, paramType, paramName, nameKnown, used)
		// no direct match: the next unused untyped entry may still fit
		// after type conversion (for example, string -> int), when we are
		// not supposed to autowire or every parameter has a declared value
		if entry == nil && (!autowiring || len(paramTypes) == resolvedValues.Count()) {
			entry = resolvedValues.getUntypedGeneric(used)
		}

		if entry != nil {
			// a declared value is consumed by at most one parameter
			used.Add(entry)
			originalValue := entry.Value
			var convertedValue any
			if entry.Converted() {
				convertedValue = entry.convertedValue
				args.prepared[paramIndex] = preparedArgument{kind: preparedLiteral, value: convertedValue}
			} else {
				converted, err := r.converter.Convert(originalValue, paramType, &Parameter{Executable: executable, Index: paramIndex})
				if err != nil {
					return nil, &UnsatisfiedArgumentError{
						BeanName: beanName,
						Point:    point,
						Detail:   fmt.Sprintf("could not convert declared value of type %T to required type %s", originalValue, paramType),
						Cause:    err,
					}
				}
				convertedValue = converted
				if entry.source != nil {
					args.resolveNecessary = true
					args.prepared[paramIndex] = preparedArgument{kind: preparedSource, value: entry.source.Value}
				} else {
					args.prepared[paramIndex] = preparedArgument{kind: preparedLiteral, value: convertedValue}
				}
			}
			args.arguments[paramIndex] = convertedValue
			args.rawArguments[paramIndex] = originalValue
		} else {
			if !autowiring {
				return nil, &UnsatisfiedArgumentError{
					BeanName: beanName,
					Point:    point,
					Detail: fmt.Sprintf(
						"ambiguous argument values for parameter of type %s - did you declare the correct bean references as arguments?",
						paramType,
					),
				}
			}
			value, dependencyName, err := r.resolveAutowiredArgument(ctx, point, paramType, beanName, fallback)
			if err != nil {
				var duplicate *DuplicateDependencyError
				if errors.As(err, &duplicate) {
					return nil, err
				}
				return nil, &UnsatisfiedArgumentError{BeanName: beanName, Point: point, Cause: err}
			}
			if dependencyName != "" {
				if recorder, ok := r.locator.(dependentRecorder); ok {
					recorder.RegisterDependent(dependencyName, beanName)
				}
				r.logger.Debug().
					Str("bean", beanName).
					Stringer("executable", executable).
					Str("dependency", dependencyName).
					Msg("autowiring by type")
			}
			args.rawArguments[paramIndex] = value
			args.arguments[paramIndex] = value
			args.prepared[paramIndex] = preparedArgument{kind: preparedAutowired}
			args.resolveNecessary = true
		}
	}

	return args, nil
}

// resolveAutowiredArgument looks up a single parameter's value by type. The
// current injection point is swapped for the duration of the lookup and
// restored on every exit path, so nested creations can report which
// parameter triggered them. With fallback enabled, a missing dependency for
// a slice, map or array parameter yields an empty container of the declared
// type instead of an error.
func (r *Resolver) resolveAutowiredArgument(
	ctx *ResolutionContext,
	point *InjectionPoint,
	paramType reflect.Type,
	beanName string,
	fallback bool,
) (any, string, error) {
	if paramType == injectionPointType {
		ip := ctx.InjectionPoint()
		if ip == nil {
			return nil, "", fmt.Errorf("no current injection point available for %s", point)
		}
		return ip, "", nil
	}

	prev := ctx.swapInjectionPoint(point)
	defer ctx.swapInjectionPoint(prev)

	value, dependencyName, err := r.locator.FindByType(ctx, paramType, beanName, true)
	if err != nil {
		var noSuch *NoSuchDependencyError
		if fallback && errors.As(err, &noSuch) {
			switch paramType.Kind() {
			case reflect.Slice:
				return reflect.MakeSlice(paramType, 0, 0).Interface(), "", nil
			case reflect.Map:
				return reflect.MakeMapWithSize(paramType, 0).Interface(), "", nil
			case reflect.Array:
				return reflect.New(paramType).Elem().Interface(), "", nil
			}
		}
		return nil, "", err
	}
	return value, dependencyName, nil
}

// resolvePreparedArguments re-resolves the cached prepared template of an
// already-decided executable: autowired markers run a fresh lookup by type,
// raw declared values go through the value resolver again, and everything
// is re-converted to the parameter type. Candidate enumeration and scoring
// are skipped entirely.
func (r *Resolver) resolvePreparedArguments(
	ctx *ResolutionContext,
	beanName string,
	executable *Executable,
	prepared []preparedArgument,
) ([]any, error) {
	paramTypes := executable.ParameterTypes()
	resolved := make([]any, len(prepared))

	for argIndex, arg := range prepared {
		paramType := paramTypes[argIndex]
		point := &InjectionPoint{Executable: executable, ParamIndex: argIndex, BeanName: beanName}

		var (
			value any
			err   error
		)
		switch arg.kind {
		case preparedAutowired:
			value, _, err = r.resolveAutowiredArgument(ctx, point, paramType, beanName, true)
			if err != nil {
				return nil, &UnsatisfiedArgumentError{BeanName: beanName, Point: point, Cause: err}
			}
		case preparedSource:
			value, err = r.valueResolver.Resolve(ctx, beanName, arg.value)
			if err != nil {
				return nil, fmt.Errorf("failed to re-resolve declared argument value for %q:\n\t%w", beanName, err)
			}
		default:
			value = arg.value
		}

		converted, err := r.converter.Convert(value, paramType, &Parameter{Executable: executable, Index: argIndex})
		if err != nil {
			return nil, &UnsatisfiedArgumentError{
				BeanName: beanName,
				Point:    point,
				Detail:   fmt.Sprintf("could not convert argument value of type %T to required type %s", value, paramType),
				Cause:    err,
			}
		}
		resolved[argIndex] = converted
	}

	return resolved, nil
}

func (r *Resolver) weigh(def *Definition, holder *argumentsHolder, candidate *Executable) int {
	if def.lenient {
		return holder.typeDifferenceWeight(candidate.ParameterTypes())
	}
	return holder.assignabilityWeight(candidate.ParameterTypes())
}

func (r *Resolver) instantiate(beanName string, executable *Executable, target any, args []any) (any, *Executable, error) {
	instance, err := r.strategy.Instantiate(executable, target, args)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to instantiate %q using %s:\n\t%w", beanName, executable, err)
	}
	return instance, executable, nil
}

// asBindingFailure classifies a binder error: unsatisfied arguments reject
// one candidate, anything else (duplicate dependencies, configuration
// errors) aborts the call.
func asBindingFailure(err error) (*UnsatisfiedArgumentError, bool) {
	var unsat *UnsatisfiedArgumentError
	if errors.As(err, &unsat) {
		var duplicate *DuplicateDependencyError
		if errors.As(err, &duplicate) {
			return nil, true
		}
		return unsat, false
	}
	return nil, true
}

// noMatch propagates the most specific recorded binding failure, the last
// one tried, or the generic no-match error when no candidate was even
// attempted.
func noMatch(causes []*UnsatisfiedArgumentError, generic *NoMatchError) error {
	if len(causes) > 0 {
		return causes[len(causes)-1]
	}
	return generic
}

func describeArguments(explicitArgs []any, resolvedValues *ArgumentValues) string {
	var descriptions []string
	switch {
	case explicitArgs != nil:
		for _, arg := range explicitArgs {
			if arg == nil {
				descriptions = append(descriptions, "nil")
			} else {
				descriptions = append(descriptions, fmt.Sprintf("%T", arg))
			}
		}
	case resolvedValues != nil:
		for _, indexed := range resolvedValues.indexedEntries() {
			descriptions = append(descriptions, indexed.entry.describe())
		}
		for _, entry := range resolvedValues.generic {
			descriptions = append(descriptions, entry.describe())
		}
	}
	return strings.Join(descriptions, ", ")
}

func sortedCandidates(candidates []*Executable) *heap.PriorityQueue[*Executable] {
	queue := heap.New[*Executable](compareExecutables)
	for _, candidate := range candidates {
		queue.Push(candidate)
	}
	return queue
}

// compareExecutables orders candidates for evaluation: exported before
// unexported, then by decreasing parameter count so the most specific
// overloads are tried first.
func compareExecutables(e1, e2 *Executable) fn.ComparisonResult {
	if e1.Exported() != e2.Exported() {
		if e1.Exported() {
			return fn.Less
		}
		return fn.Greater
	}
	if e1.ParameterCount() > e2.ParameterCount() {
		return fn.Less
	}
	if e1.ParameterCount() < e2.ParameterCount() {
		return fn.Greater
	}
	return fn.Equal
}

func voidFactoryError(beanName string, executable *Executable) error {
	return &ConfigurationError{
		BeanName: beanName,
		Detail:   fmt.Sprintf("factory method %s needs to have a non-void return type", executable),
	}
}

// referenceValueResolver is the default ValueResolver: references are
// materialized through the dependency locator, dynamic suppliers are
// evaluated, everything else passes through untouched.
type referenceValueResolver struct {
	locator DependencyLocator
}

func (v referenceValueResolver) Resolve(ctx *ResolutionContext, beanName string, raw any) (any, error) {
	switch value := raw.(type) {
	case Ref:
		resolved, err := v.locator.FindByName(ctx, value.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reference to %q declared by %q:\n\t%w", value.Name, beanName, err)
		}
		return resolved, nil
	case Dynamic:
		return value()
	default:
		return raw, nil
	}
}
