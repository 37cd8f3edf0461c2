package plotter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aescanero/dago-levelset/internal/eval/expr"
	"github.com/aescanero/dago-levelset/internal/grid"
)

// CacheStats reports value grid cache usage
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func valueKey(program *expr.Program, region string, s grid.Sampling) string {
	return program.String() + "\x00" + region + "\x00" + s.Key()
}

// values returns the value grid of program over the session sampling,
// masked by region. Grids are computed once per (program, region, sampling).
func (p *Plotter) values(ctx context.Context, program *expr.Program, region string) (*grid.Grid, error) {
	key := valueKey(program, region, p.sampling)

	p.mu.RLock()
	v, ok := p.cache[key]
	p.mu.RUnlock()
	if ok {
		p.hits.Add(1)
		return v, nil
	}
	p.misses.Add(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := program.Evaluate(p.x, p.y)
	if err != nil {
		return nil, err
	}
	if region != "" {
		v, err = p.regions.Mask(ctx, region, v, p.x, p.y)
		if err != nil {
			return nil, fmt.Errorf("%w: region: %w", ErrInvalidRequest, err)
		}
	}

	p.mu.Lock()
	if len(p.cache) >= p.cacheSize {
		p.cache = make(map[string]*grid.Grid)
	}
	p.cache[key] = v
	p.mu.Unlock()

	p.logger.Debug("value grid computed",
		zap.String("expression", program.String()),
		zap.String("region", region),
		zap.Int("finite", v.CountFinite()),
	)
	return v, nil
}

// Stats returns value grid cache statistics
func (p *Plotter) Stats() CacheStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return CacheStats{Entries: len(p.cache), Hits: p.hits.Load(), Misses: p.misses.Load()}
}

// Invalidate drops every cached value grid
func (p *Plotter) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]*grid.Grid)
}
