package cradle

import (
	"fmt"
	"strings"
)

type (
	// ConfigurationError reports a definition that can never be satisfied,
	// whatever candidates are tried: no registered constructors, a factory
	// bean referencing itself, a factory method without a return value, a
	// negative argument index. It is never recovered from.
	ConfigurationError struct {
		BeanName string
		Detail   string
	}

	// NoMatchError reports that no candidate satisfied the arity and type
	// constraints of a resolution call.
	NoMatchError struct {
		BeanName string
		Detail   string
		ArgDesc  string
	}

	// AmbiguityError reports two or more equally scored candidates under
	// strict resolution.
	AmbiguityError struct {
		BeanName   string
		Candidates []*Executable
	}

	// UnsatisfiedArgumentError is the per-candidate binding failure: a
	// declared value that does not convert to the parameter type, or an
	// autowired dependency that cannot be located. It causes the candidate
	// to be skipped, not the whole call to fail, unless it is the last
	// failure standing.
	UnsatisfiedArgumentError struct {
		BeanName string
		Point    *InjectionPoint
		Detail   string
		Cause    error
	}

	// NoSuchDependencyError reports that no definition provides the
	// requested type.
	NoSuchDependencyError struct {
		Type      string
		Requester string
	}

	// DuplicateDependencyError reports that several definitions provide
	// the requested type with nothing to disambiguate them. It is always
	// fatal, the empty container fallback never applies.
	DuplicateDependencyError struct {
		Type       string
		Requester  string
		Candidates []string
	}

	// TypeMismatchError reports that no coercion path exists between a
	// value and a target type.
	TypeMismatchError struct {
		Value  any
		Target string
		Detail string
	}
)

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid definition %q: %s", e.BeanName, e.Detail)
}

func (e *NoMatchError) Error() string {
	msg := fmt.Sprintf("no matching executable found for %q: %s", e.BeanName, e.Detail)
	if e.ArgDesc != "" {
		msg += fmt.Sprintf(" (attempted argument types: %s)", e.ArgDesc)
	}
	return msg
}

func (e *AmbiguityError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.String()
	}
	return fmt.Sprintf(
		"ambiguous executable matches for %q under strict resolution "+
			"(hint: declare index/type/name on simple argument values to disambiguate): %s",
		e.BeanName, strings.Join(names, ", "),
	)
}

func (e *UnsatisfiedArgumentError) Error() string {
	msg := fmt.Sprintf("unsatisfied argument for %q", e.BeanName)
	if e.Point != nil {
		msg += fmt.Sprintf(" at %s", e.Point)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(":\n\t%v", e.Cause)
	}
	return msg
}

func (e *UnsatisfiedArgumentError) Unwrap() error {
	return e.Cause
}

func (e *NoSuchDependencyError) Error() string {
	return fmt.Sprintf("no definition provides type %s (requested by %q)", e.Type, e.Requester)
}

func (e *DuplicateDependencyError) Error() string {
	return fmt.Sprintf(
		"multiple definitions provide type %s (requested by %q), expected one and only one, got %d: %s",
		e.Type, e.Requester, len(e.Candidates), strings.Join(e.Candidates, ", "),
	)
}

func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("cannot convert value of type %T to %s", e.Value, e.Target)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
