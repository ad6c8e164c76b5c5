package cradle

import "reflect"

type (
	// Parameter designates one parameter position of an executable, passed
	// to the type converter so conversion failures can name the implicated
	// parameter.
	Parameter struct {
		Executable *Executable
		Index      int
	}

	// ValueResolver materializes a declared argument value: a Ref is
	// resolved into the referenced bean (recursively creating it if
	// needed), a Dynamic is evaluated, anything else passes through.
	ValueResolver interface {
		Resolve(ctx *ResolutionContext, beanName string, raw any) (any, error)
	}

	// TypeConverter coerces a value to a target type, failing with a
	// *TypeMismatchError when no coercion path exists.
	TypeConverter interface {
		Convert(value any, target reflect.Type, param *Parameter) (any, error)
	}

	// DependencyLocator looks up beans for autowired parameters. FindByType
	// fails with *NoSuchDependencyError when nothing provides the type and
	// *DuplicateDependencyError when several definitions do; the latter is
	// always fatal. excludeSelf leaves the bean currently being created out
	// of the search.
	DependencyLocator interface {
		FindByType(ctx *ResolutionContext, typ reflect.Type, requesting string, excludeSelf bool) (value any, beanName string, err error)
		FindByName(ctx *ResolutionContext, name string) (any, error)
	}

	// ParameterNameDiscoverer reports the ordered parameter names of an
	// executable, or nil when unavailable. Best effort only.
	ParameterNameDiscoverer interface {
		NamesFor(executable *Executable) []string
	}

	// InstantiationStrategy invokes a chosen executable. target is the
	// factory instance for non-static factory methods, nil otherwise.
	InstantiationStrategy interface {
		Instantiate(executable *Executable, target any, args []any) (any, error)
	}
)

// declaredNameDiscoverer reads the names registered on the descriptor via
// WithParameterNames.
type declaredNameDiscoverer struct{}

func (declaredNameDiscoverer) NamesFor(executable *Executable) []string {
	return executable.ParameterNames()
}
