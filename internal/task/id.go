package task

import "time"

// idGenerator hands out millisecond timestamp ids that never repeat.
//
// When two tasks are created within the same millisecond, or the clock moves
// backwards, the next id is last+1.
type idGenerator struct {
	now  func() time.Time
	last int64
}

func (g *idGenerator) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}

	g.last = id

	return id
}

// observe raises the floor so ids already in use are never handed out.
func (g *idGenerator) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}
