package cradle

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/cradle-di/cradle/option"
	"github.com/cradle-di/cradle/set"
)

type (
	// Ref is a declared argument value referencing another definition by
	// name; it is materialized by the value resolver when the owning
	// definition is created.
	Ref struct {
		Name string
	}

	// Dynamic is a declared argument value computed at every creation of
	// the owning definition. Bindings holding one are never cached
	// verbatim.
	Dynamic func() (any, error)

	// ValueEntry is one declared argument value: a literal, a Ref or a
	// Dynamic supplier, optionally restricted to a declared type or a
	// parameter name.
	ValueEntry struct {
		Value any
		Type  reflect.Type
		Name  string

		converted      bool
		convertedValue any
		source         *ValueEntry
	}

	// ArgumentValues is the declared constructor argument metadata of a
	// definition: positionally indexed entries plus unordered generic
	// entries matched by type or name.
	ArgumentValues struct {
		indexed map[int]*ValueEntry
		generic []*ValueEntry
	}

	ValueOptions struct {
		typ       reflect.Type
		name      string
		converted bool
	}
)

// RefTo declares a reference to the definition registered under the given
// name.
func RefTo(name string) Ref {
	return Ref{Name: name}
}

// AsType restricts a declared value to parameters of the given type.
func AsType(t reflect.Type) option.Option[ValueOptions] {
	return func(opts *ValueOptions) {
		opts.typ = t
	}
}

// ForParameter restricts a declared value to the parameter with the given
// name. Matching by name requires the executable to expose parameter names.
func ForParameter(name string) option.Option[ValueOptions] {
	return func(opts *ValueOptions) {
		opts.name = name
	}
}

// AlreadyConverted marks a declared value as pre-resolved: it bypasses the
// value resolver and the type converter, and is cached verbatim.
func AlreadyConverted() option.Option[ValueOptions] {
	return func(opts *ValueOptions) {
		opts.converted = true
	}
}

func NewArgumentValues() *ArgumentValues {
	return &ArgumentValues{
		indexed: make(map[int]*ValueEntry),
	}
}

func (av *ArgumentValues) AddIndexed(index int, value any, opts ...option.Option[ValueOptions]) *ArgumentValues {
	av.indexed[index] = newValueEntry(value, opts)
	return av
}

func (av *ArgumentValues) AddGeneric(value any, opts ...option.Option[ValueOptions]) *ArgumentValues {
	av.generic = append(av.generic, newValueEntry(value, opts))
	return av
}

func newValueEntry(value any, opts []option.Option[ValueOptions]) *ValueEntry {
	options := option.Build(&ValueOptions{}, opts...)
	entry := &ValueEntry{
		Value: value,
		Type:  options.typ,
		Name:  options.name,
	}
	if options.converted {
		entry.markConverted(value)
	}
	return entry
}

// Count returns the number of declared entries, indexed and generic.
func (av *ArgumentValues) Count() int {
	if av == nil {
		return 0
	}
	return len(av.indexed) + len(av.generic)
}

func (av *ArgumentValues) Empty() bool {
	return av.Count() == 0
}

// indexedEntries returns the indexed entries in ascending index order.
func (av *ArgumentValues) indexedEntries() []indexedEntry {
	entries := make([]indexedEntry, 0, len(av.indexed))
	for index, entry := range av.indexed {
		entries = append(entries, indexedEntry{index: index, entry: entry})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })
	return entries
}

type indexedEntry struct {
	index int
	entry *ValueEntry
}

// getArgumentValue looks up a declared value for one parameter position,
// first by exact index, then among the generic entries by type and name.
func (av *ArgumentValues) getArgumentValue(
	index int,
	requiredType reflect.Type,
	requiredName string,
	nameKnown bool,
	used set.Set[*ValueEntry],
) *ValueEntry {
	if entry := av.getIndexed(index, requiredType, requiredName, nameKnown); entry != nil {
		return entry
	}
	return av.getGeneric(requiredType, requiredName, nameKnown, used)
}

func (av *ArgumentValues) getIndexed(index int, requiredType reflect.Type, requiredName string, nameKnown bool) *ValueEntry {
	entry, found := av.indexed[index]
	if !found {
		return nil
	}
	if entry.Type != nil && requiredType != nil && !typeAcceptable(requiredType, entry.Type) {
		return nil
	}
	if entry.Name != "" && nameKnown && entry.Name != requiredName {
		return nil
	}
	return entry
}

func (av *ArgumentValues) getGeneric(requiredType reflect.Type, requiredName string, nameKnown bool, used set.Set[*ValueEntry]) *ValueEntry {
	for _, entry := range av.generic {
		if used.Contains(entry) {
			continue
		}
		if entry.Name != "" && nameKnown && entry.Name != requiredName {
			continue
		}
		if entry.Type != nil && (requiredType == nil || !typeAcceptable(requiredType, entry.Type)) {
			continue
		}
		if requiredType != nil && entry.Type == nil && entry.Name == "" &&
			!isAssignableValue(requiredType, entry.Value) {
			continue
		}
		return entry
	}
	return nil
}

// getUntypedGeneric returns the next unused generic entry carrying neither a
// declared type nor a name: the best-effort coercion fallback when no direct
// match was found for a parameter.
func (av *ArgumentValues) getUntypedGeneric(used set.Set[*ValueEntry]) *ValueEntry {
	for _, entry := range av.generic {
		if used.Contains(entry) {
			continue
		}
		if entry.Type == nil && entry.Name == "" {
			return entry
		}
	}
	return nil
}

func typeAcceptable(requiredType, declaredType reflect.Type) bool {
	return declaredType == requiredType || matchType(requiredType, declaredType)
}

func (e *ValueEntry) markConverted(v any) {
	e.converted = true
	e.convertedValue = v
}

// Converted reports whether the entry carries a pre-resolved value.
func (e *ValueEntry) Converted() bool {
	return e.converted
}

func (e *ValueEntry) describe() string {
	if e.Type != nil {
		return e.Type.String()
	}
	if e.Value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", e.Value)
}
