package evaluator

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// gensymSource mints symbols guaranteed unique within one interpreter
// instance (spec §4.6's "fresh symbol generation"). The reference leaves
// the scheme open, suggesting a monotone counter "suffices"; this
// implementation reaches for github.com/oklog/ulid/v2 instead, matching
// its use elsewhere in the pack for collision-free identifiers, and
// keeps the counter as a fallback for the (practically unreachable)
// case where the ULID entropy source errors.
type gensymSource struct {
	mu      sync.Mutex
	entropy io.Reader
	counter uint64
}

func newGensymSource() *gensymSource {
	return &gensymSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *gensymSource) fresh() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		g.counter++
		return fmt.Sprintf("##sym#%d", g.counter)
	}
	return fmt.Sprintf("##sym#%s", id.String())
}
