package provisioning

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator hands out "<prefix><unix millis>" identifiers. Values are
// strictly increasing across all prefixes, so two calls never collide even
// within the same millisecond; downstream consumers still see digits only.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

func (g *IDGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := g.now().UnixMilli()
	if v <= g.last {
		v = g.last + 1
	}
	g.last = v
	return prefix + strconv.FormatInt(v, 10)
}
