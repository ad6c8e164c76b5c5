package cradle

import "fmt"

type (
	// InjectionPoint identifies the parameter whose resolution triggered a
	// dependency lookup. A constructor parameter declared as
	// *InjectionPoint receives the point that triggered the creation of
	// its owning bean instead of a lookup by type.
	InjectionPoint struct {
		Executable *Executable
		ParamIndex int
		BeanName   string
	}

	// ResolutionContext is the per-call state threaded through one
	// resolution and every nested lookup it triggers. It replaces ambient
	// thread-local state: the current injection point is swapped in for
	// the duration of a single dependency resolution and restored on every
	// exit path.
	ResolutionContext struct {
		injectionPoint *InjectionPoint
		tracker        *Tracker
	}
)

func (ip *InjectionPoint) String() string {
	if ip == nil {
		return "<none>"
	}
	return fmt.Sprintf("parameter %d of %s (bean %q)", ip.ParamIndex, ip.Executable, ip.BeanName)
}

func newResolutionContext() *ResolutionContext {
	return &ResolutionContext{
		tracker: NewTracker(),
	}
}

// InjectionPoint returns the point currently being resolved, or nil when no
// dependency lookup is in flight.
func (ctx *ResolutionContext) InjectionPoint() *InjectionPoint {
	return ctx.injectionPoint
}

// swapInjectionPoint installs a new current injection point and returns the
// previous one, to be restored by the caller once its resolution frame
// exits:
//
//	prev := ctx.swapInjectionPoint(ip)
//	defer ctx.swapInjectionPoint(prev)
func (ctx *ResolutionContext) swapInjectionPoint(ip *InjectionPoint) *InjectionPoint {
	old := ctx.injectionPoint
	ctx.injectionPoint = ip
	return old
}
