package usecase

import (
	"sync"
	"time"

	"go.ngs.io/pp-grid/internal/grid"
)

// gridCache keeps built named grids. Grids are immutable, so a cached grid
// is shared by all requests until its descriptor file changes.
type gridCache struct {
	mu    sync.RWMutex
	grids map[string]cachedGrid
}

type cachedGrid struct {
	grid    grid.Grid
	modTime time.Time
}

func newGridCache() *gridCache {
	return &gridCache{grids: make(map[string]cachedGrid)}
}

// get returns the grid cached for name when it was built from a file with
// the same modification time.
func (c *gridCache) get(name string, modTime time.Time) (grid.Grid, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cg, ok := c.grids[name]
	if !ok || !cg.modTime.Equal(modTime) {
		return nil, false
	}
	return cg.grid, true
}

func (c *gridCache) put(name string, modTime time.Time, g grid.Grid) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grids[name] = cachedGrid{grid: g, modTime: modTime}
}
