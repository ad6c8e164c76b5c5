package cradle

type (
	// resolutionPlan is the cached outcome of one successful resolution of
	// a definition with no explicit arguments: the winning executable plus
	// either a finally resolved argument array reusable verbatim, or a
	// prepared template whose entries are re-resolved on every creation.
	// Exactly one of resolved and prepared is non-nil.
	resolutionPlan struct {
		executable *Executable
		resolved   []any
		prepared   []preparedArgument
	}
)

// plan builds the cache entry for this binding: verbatim arguments when
// nothing needs re-resolution, the prepared template otherwise.
func (h *argumentsHolder) plan(executable *Executable) *resolutionPlan {
	if h.resolveNecessary {
		return &resolutionPlan{executable: executable, prepared: h.prepared}
	}
	return &resolutionPlan{executable: executable, resolved: h.arguments}
}
