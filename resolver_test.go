package cradle

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cradle-di/cradle/option"
)

// Test types for resolution testing
type (
	Engine struct {
		Power int
	}

	Widget struct {
		Engine *Engine
		Count  int
		Label  string
	}

	Handler interface {
		Handle() string
	}

	JSONHandler struct{}
	XMLHandler  struct{}

	Dispatcher struct {
		Handlers []Handler
	}
)

func (JSONHandler) Handle() string { return "json" }
func (XMLHandler) Handle() string  { return "xml" }

func NewEngine() *Engine {
	return &Engine{Power: 10}
}

func NewWidget() *Widget {
	return &Widget{}
}

func NewWidgetWithEngine(engine *Engine) *Widget {
	return &Widget{Engine: engine}
}

func NewSizedWidget(count int) *Widget {
	return &Widget{Count: count}
}

func NewLabeledWidget(label string) *Widget {
	return &Widget{Label: label}
}

func NewNamedWidget(name string) *Widget {
	return &Widget{Label: "named:" + name}
}

func NewJSONHandler() JSONHandler { return JSONHandler{} }
func NewXMLHandler() XMLHandler   { return XMLHandler{} }

func NewDispatcher(handlers []Handler) *Dispatcher {
	return &Dispatcher{Handlers: handlers}
}

func NewVariadicDispatcher(handlers ...Handler) *Dispatcher {
	return &Dispatcher{Handlers: handlers}
}

func newHiddenWidget() *Widget {
	return &Widget{Label: "hidden"}
}

func NewFailingWidget() (*Widget, error) {
	return nil, errors.New("widget intentionally failed")
}

func mustDefinition(t *testing.T, name string, opts ...option.Option[DefinitionOptions]) *Definition {
	t.Helper()
	def, err := NewDefinition(name, opts...)
	require.NoError(t, err)
	return def
}

func TestResolveConstructor(t *testing.T) {
	t.Run("it should use the unique zero-argument constructor directly", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		def := mustDefinition(t, "widget", Constructors(NewWidget))
		registry.MustRegister(def)

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.IsType(t, &Widget{}, bean)
		require.NotNil(t, def.cachedPlan())
		assert.NotNil(t, def.cachedPlan().resolved)
	})

	t.Run("it should prefer the constructor with the most satisfiable parameters", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "engine", Constructors(NewEngine)))
		registry.MustRegister(mustDefinition(t, "widget", Constructors(NewWidget, NewWidgetWithEngine)))

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		widget := bean.(*Widget)
		require.NotNil(t, widget.Engine)
		assert.Equal(t, 10, widget.Engine.Power)
	})

	t.Run("it should fall back to a smaller constructor when a dependency is missing", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		// no engine registered
		registry.MustRegister(mustDefinition(t, "widget", Constructors(NewWidget, NewWidgetWithEngine)))

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.Nil(t, bean.(*Widget).Engine)
	})

	t.Run("it should convert a declared indexed argument to the parameter type", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widget",
			Constructors(NewSizedWidget),
			IndexedArgument(0, "42"),
		))

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 42, bean.(*Widget).Count)
	})

	t.Run("it should match a generic argument by declared parameter name", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		descriptor, err := NewConstructor(NewLabeledWidget, WithParameterNames("label"))
		require.NoError(t, err)
		registry.MustRegister(mustDefinition(t, "widget",
			ConstructorDescriptors(descriptor),
			Argument("hello", ForParameter("label")),
		))

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "hello", bean.(*Widget).Label)
	})

	t.Run("it should resolve a declared reference to another bean", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "engine", Constructors(NewEngine)))
		registry.MustRegister(mustDefinition(t, "widget",
			Constructors(NewWidgetWithEngine),
			IndexedArgument(0, RefTo("engine")),
		))

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		require.NotNil(t, bean.(*Widget).Engine)
	})

	t.Run("it should report ambiguity under strict resolution for equally scored candidates", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widget",
			Constructors(NewLabeledWidget, NewNamedWidget),
			Argument("x"),
			StrictResolution(),
		))

		// WHEN
		_, err := registry.GetBean("widget")

		// THEN
		require.Error(t, err)
		var ambiguity *AmbiguityError
		require.ErrorAs(t, err, &ambiguity)
		assert.Len(t, ambiguity.Candidates, 2)
	})

	t.Run("it should pick a candidate without error under lenient resolution for the same tie", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widget",
			Constructors(NewLabeledWidget, NewNamedWidget),
			Argument("x"),
		))

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.IsType(t, &Widget{}, bean)
	})

	t.Run("it should collect every matching bean for a slice parameter", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "json", Constructors(NewJSONHandler)))
		registry.MustRegister(mustDefinition(t, "xml", Constructors(NewXMLHandler)))
		registry.MustRegister(mustDefinition(t, "dispatcher", Constructors(NewDispatcher)))

		// WHEN
		bean, err := registry.GetBean("dispatcher")

		// THEN
		require.NoError(t, err)
		assert.Len(t, bean.(*Dispatcher).Handlers, 2)
	})

	t.Run("it should expand collected beans into a variadic constructor", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "json", Constructors(NewJSONHandler)))
		registry.MustRegister(mustDefinition(t, "xml", Constructors(NewXMLHandler)))
		registry.MustRegister(mustDefinition(t, "dispatcher", Constructors(NewVariadicDispatcher)))

		// WHEN
		bean, err := registry.GetBean("dispatcher")

		// THEN
		require.NoError(t, err)
		assert.Len(t, bean.(*Dispatcher).Handlers, 2)
	})

	t.Run("it should call a variadic constructor with no matching beans", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "dispatcher", Constructors(NewVariadicDispatcher)))

		// WHEN
		bean, err := registry.GetBean("dispatcher")

		// THEN
		require.NoError(t, err)
		assert.Empty(t, bean.(*Dispatcher).Handlers)
	})

	t.Run("it should inject an empty slice when nothing provides the element type", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "dispatcher", Constructors(NewDispatcher)))

		// WHEN
		bean, err := registry.GetBean("dispatcher")

		// THEN
		require.NoError(t, err)
		dispatcher := bean.(*Dispatcher)
		require.NotNil(t, dispatcher.Handlers)
		assert.Empty(t, dispatcher.Handlers)
	})

	t.Run("it should fail fast when several beans provide the same dependency type", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "engine1", Constructors(NewEngine)))
		registry.MustRegister(mustDefinition(t, "engine2", Constructors(NewEngine)))
		registry.MustRegister(mustDefinition(t, "widget", Constructors(NewWidgetWithEngine)))

		// WHEN
		_, err := registry.GetBean("widget")

		// THEN
		require.Error(t, err)
		var duplicate *DuplicateDependencyError
		require.ErrorAs(t, err, &duplicate)
		assert.ElementsMatch(t, []string{"engine1", "engine2"}, duplicate.Candidates)
	})

	t.Run("it should surface the binding failure when no candidate matches", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widget",
			Constructors(NewWidgetWithEngine),
			NoAutowire(),
		))

		// WHEN
		_, err := registry.GetBean("widget")

		// THEN
		require.Error(t, err)
		var unsatisfied *UnsatisfiedArgumentError
		require.ErrorAs(t, err, &unsatisfied)
		assert.Equal(t, 0, unsatisfied.Point.ParamIndex)
	})

	t.Run("it should exclude unexported constructors unless allowed", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widget", Constructors(newHiddenWidget)))

		// WHEN
		_, err := registry.GetBean("widget")

		// THEN
		var configuration *ConfigurationError
		require.ErrorAs(t, err, &configuration)

		// GIVEN the definition allows non-exported candidates
		registry2 := NewRegistry()
		registry2.MustRegister(mustDefinition(t, "widget",
			Constructors(newHiddenWidget),
			AllowNonExported(),
		))

		// WHEN
		bean, err := registry2.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "hidden", bean.(*Widget).Label)
	})

	t.Run("it should propagate a constructor returning an error", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widget", Constructors(NewFailingWidget)))

		// WHEN
		_, err := registry.GetBean("widget")

		// THEN
		require.Error(t, err)
		assert.Contains(t, err.Error(), "widget intentionally failed")
	})
}

func TestResolveConstructorExplicitArgs(t *testing.T) {
	t.Run("it should use explicit arguments verbatim and require exact arity", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widget",
			Constructors(NewSizedWidget),
			Prototype(),
		))

		// WHEN
		bean, err := registry.GetBeanWithArgs("widget", 7)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 7, bean.(*Widget).Count)

		// WHEN the arity does not match any candidate
		_, err = registry.GetBeanWithArgs("widget", 7, "extra")

		// THEN
		var noMatchErr *NoMatchError
		require.ErrorAs(t, err, &noMatchErr)
	})

	t.Run("it should not cache a plan for explicit arguments", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		def := mustDefinition(t, "widget", Constructors(NewSizedWidget), Prototype())
		registry.MustRegister(def)

		// WHEN
		_, err := registry.GetBeanWithArgs("widget", 7)

		// THEN
		require.NoError(t, err)
		assert.Nil(t, def.cachedPlan())
	})

	t.Run("it should bypass declared argument values entirely", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widget",
			Constructors(NewSizedWidget),
			IndexedArgument(0, 1),
			Prototype(),
		))

		// WHEN
		bean, err := registry.GetBeanWithArgs("widget", 99)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 99, bean.(*Widget).Count)
	})
}

func TestResolutionPlanCache(t *testing.T) {
	t.Run("it should reuse the cached plan for prototype creations", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		def := mustDefinition(t, "widget",
			Constructors(NewSizedWidget),
			IndexedArgument(0, "42"),
			Prototype(),
		)
		registry.MustRegister(def)

		// WHEN
		first, err := registry.GetBean("widget")
		require.NoError(t, err)
		plan := def.cachedPlan()
		second, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.Same(t, plan, def.cachedPlan(), "the plan must be computed once")
		assert.Equal(t, 42, second.(*Widget).Count)
	})

	t.Run("it should re-resolve dynamic declared values on every creation", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		var calls atomic.Int32
		registry.MustRegister(mustDefinition(t, "widget",
			Constructors(NewSizedWidget),
			IndexedArgument(0, Dynamic(func() (any, error) {
				return int(calls.Add(1)), nil
			})),
			Prototype(),
		))

		// WHEN
		first, err := registry.GetBean("widget")
		require.NoError(t, err)
		second, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 1, first.(*Widget).Count)
		assert.Equal(t, 2, second.(*Widget).Count)
	})

	t.Run("it should re-resolve autowired arguments on every prototype creation", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "engine", Constructors(NewEngine)))
		registry.MustRegister(mustDefinition(t, "widget",
			Constructors(NewWidgetWithEngine),
			Prototype(),
		))

		// WHEN
		first, err := registry.GetBean("widget")
		require.NoError(t, err)
		second, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		// the engine is a singleton, both creations receive the same one
		assert.Same(t, first.(*Widget).Engine, second.(*Widget).Engine)
	})
}

func TestInjectionPoint(t *testing.T) {
	type Probe struct {
		Point *InjectionPoint
	}
	type Carrier struct {
		Probe *Probe
	}
	newProbe := func(point *InjectionPoint) *Probe {
		return &Probe{Point: point}
	}
	newCarrier := func(probe *Probe) *Carrier {
		return &Carrier{Probe: probe}
	}

	t.Run("it should inject the triggering injection point", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		probeDescriptor, err := NewConstructor(newProbe, WithName("NewProbe"))
		require.NoError(t, err)
		carrierDescriptor, err := NewConstructor(newCarrier, WithName("NewCarrier"))
		require.NoError(t, err)
		registry.MustRegister(mustDefinition(t, "probe", ConstructorDescriptors(probeDescriptor)))
		registry.MustRegister(mustDefinition(t, "carrier", ConstructorDescriptors(carrierDescriptor)))

		// WHEN
		bean, err := registry.GetBean("carrier")

		// THEN
		require.NoError(t, err)
		point := bean.(*Carrier).Probe.Point
		require.NotNil(t, point)
		assert.Equal(t, "carrier", point.BeanName)
		assert.Equal(t, 0, point.ParamIndex)
	})

	t.Run("it should fail when no injection point is in flight", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		probeDescriptor, err := NewConstructor(newProbe, WithName("NewProbe"))
		require.NoError(t, err)
		registry.MustRegister(mustDefinition(t, "probe", ConstructorDescriptors(probeDescriptor)))

		// WHEN
		_, err = registry.GetBean("probe")

		// THEN
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no current injection point")
	})
}

func TestInstantiateFactoryMethod(t *testing.T) {
	t.Run("it should invoke a method on the factory bean", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widgetFactory", Constructors(NewWidgetFactory)))
		registry.MustRegister(mustDefinition(t, "widget",
			FactoryMethod("widgetFactory", "CreateWidget"),
			Argument("hello"),
		))

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "factory:hello", bean.(*Widget).Label)
	})

	t.Run("it should select among factory functions by declared arguments", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widget",
			FactoryFunctions(BuildWidget, BuildSizedWidget),
			IndexedArgument(0, 7),
		))

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 7, bean.(*Widget).Count)
	})

	t.Run("it should use the unique zero-argument factory function directly", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		def := mustDefinition(t, "widget", FactoryFunctions(BuildWidget))
		registry.MustRegister(def)

		// WHEN
		bean, err := registry.GetBean("widget")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "built", bean.(*Widget).Label)
		assert.Same(t, def.FactoryMethodDescriptor(), def.cachedPlan().executable)
	})

	t.Run("it should reject a factory method without a return value", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "widgetFactory", Constructors(NewWidgetFactory)))
		registry.MustRegister(mustDefinition(t, "widget",
			FactoryMethod("widgetFactory", "Reset"),
		))

		// WHEN
		_, err := registry.GetBean("widget")

		// THEN
		var configuration *ConfigurationError
		require.ErrorAs(t, err, &configuration)
		assert.Contains(t, configuration.Detail, "non-void return type")
	})

	t.Run("it should reject a factory bean referencing its own definition", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "selfish",
			FactoryMethod("selfish", "CreateWidget"),
		))

		// WHEN
		_, err := registry.GetBean("selfish")

		// THEN
		var configuration *ConfigurationError
		require.ErrorAs(t, err, &configuration)
		assert.Contains(t, configuration.Detail, "points back")
	})

	t.Run("it should reject a definition with neither factory nor constructors", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		registry.MustRegister(mustDefinition(t, "nothing"))

		// WHEN
		_, err := registry.GetBean("nothing")

		// THEN
		var configuration *ConfigurationError
		require.ErrorAs(t, err, &configuration)
	})
}

func TestResolveFactoryMethod(t *testing.T) {
	t.Run("it should record the unique factory function", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		def := mustDefinition(t, "widget", FactoryFunctions(BuildSizedWidget))
		registry.MustRegister(def)

		// WHEN
		unique, err := registry.resolver.ResolveFactoryMethod(def)

		// THEN
		require.NoError(t, err)
		require.NotNil(t, unique)
		assert.Same(t, unique, def.FactoryMethodDescriptor())
	})

	t.Run("it should record nothing for overloaded factory functions", func(t *testing.T) {
		// GIVEN
		registry := NewRegistry()
		def := mustDefinition(t, "widget", FactoryFunctions(BuildWidget, BuildSizedWidget))
		registry.MustRegister(def)

		// WHEN
		unique, err := registry.resolver.ResolveFactoryMethod(def)

		// THEN
		require.NoError(t, err)
		assert.Nil(t, unique)
		assert.Nil(t, def.FactoryMethodDescriptor())
	})
}

// WidgetFactory is the factory bean used by the factory method tests.
type WidgetFactory struct{}

func NewWidgetFactory() *WidgetFactory { return &WidgetFactory{} }

func (f *WidgetFactory) CreateWidget(label string) *Widget {
	return &Widget{Label: "factory:" + label}
}

func (f *WidgetFactory) Reset() {}

func BuildWidget() *Widget { return &Widget{Label: "built"} }

func BuildSizedWidget(count int) *Widget { return &Widget{Count: count} }

func ExampleRegistry_GetBean() {
	registry := NewRegistry()
	registry.MustRegister(must(NewDefinition("engine", Constructors(NewEngine))))
	registry.MustRegister(must(NewDefinition("widget", Constructors(NewWidgetWithEngine))))

	bean, _ := registry.GetBean("widget")
	fmt.Println(bean.(*Widget).Engine.Power)
	// Output: 10
}

func must(def *Definition, err error) *Definition {
	if err != nil {
		panic(err)
	}
	return def
}
