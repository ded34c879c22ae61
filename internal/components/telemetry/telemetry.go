package telemetry

import (
	"fmt"
)

// API receives everything the client wants an operator to know about. Tests
// swap it out to assert on warnings.
//
// Ids name the component that reported, ex. `client.list-members`, and are
// lowercase with dashes between a component and its method. Details go in
// params, never in the id.
type API interface {
	// ReportBroken means the component failed and needs attention.
	ReportBroken(id string, params ...any)
	// ReportWarning means the remote pages did not look as expected, results
	// may be incomplete.
	ReportWarning(id string, params ...any)
	ReportDebug(msg string, params ...any)
	// ReportCount records the size of something at this moment, ex. the
	// number of members a roster listed. Counts are samples, not deltas.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace before passing it on.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scoped(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scoped(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scoped(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scoped(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scoped(id), count)
}
