package toppass

import (
	"fmt"

	"github.com/google/uuid"
)

// FreshScope is an opaque monotonic generator producing names unique
// within a run of a pure pass — and, since each scope is seeded from a
// UUIDv4, unique across process restarts as well. A pass consuming a scope
// receives it as read-only input and, on each request, returns an
// extended scope alongside the freshly minted name; the scope is not a
// shared resource, and the top-level pipeline does not thread one shared
// scope across passes (spec §5) — each pass that needs fresh names is
// handed its own via NewFreshScope.
type FreshScope struct {
	seed    string
	counter int
}

// NewFreshScope mints a new scope seeded from a fresh UUID.
func NewFreshScope() FreshScope {
	return FreshScope{seed: uuid.NewString()[:8]}
}

// Next returns a name derived from hint (for readability in pretty-printed
// IR) plus this scope's seed and counter, and the extended scope to use
// for the next request.
func (s FreshScope) Next(hint string) (string, FreshScope) {
	name := fmt.Sprintf("%s.%s%d", hint, s.seed, s.counter)
	return name, FreshScope{seed: s.seed, counter: s.counter + 1}
}
