package timeline

import (
	"strconv"
	"time"
)

// slideIDLength is the fixed length of a slide id. Ids are derived from the
// creation timestamp so they sort chronologically as strings.
const slideIDLength = 20

type slideIDGenerator struct {
	now  func() time.Time
	used map[string]bool
	seq  int
	last string
}

func newSlideIDGenerator() *slideIDGenerator {
	return &slideIDGenerator{now: time.Now, used: map[string]bool{}}
}

// reserve marks an id already present in a loaded document so Next never
// hands it out again.
func (g *slideIDGenerator) reserve(id string) { g.used[id] = true }

// Next returns a fresh unique slide id. The millisecond timestamp is the
// base; when the clock resolution is insufficient a counter suffix keeps
// ids within one process session from colliding.
func (g *slideIDGenerator) Next() string {
	base := strconv.FormatInt(g.now().UnixMilli(), 10)
	if base == g.last {
		g.seq++
	} else {
		g.last = base
		g.seq = 0
	}
	for {
		id := base
		if g.seq > 0 {
			id += strconv.Itoa(g.seq)
		}
		id = padID(id)
		if !g.used[id] {
			g.used[id] = true
			return id
		}
		g.seq++
	}
}

func padID(id string) string {
	if len(id) > slideIDLength {
		return id[:slideIDLength]
	}
	for len(id) < slideIDLength {
		id += "0"
	}
	return id
}
