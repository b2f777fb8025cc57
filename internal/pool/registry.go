package pool

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"goodwatch/internal/metrics"
)

type view struct {
	pool     *Pool
	lastUsed time.Time
}

// Registry owns the pools of active results views.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	views map[string]*view

	// evicted tracks pools dropped from views whose goroutines may still run.
	evicted sync.WaitGroup
}

// NewRegistry creates a registry that forgets views idle for longer than ttl.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{ttl: ttl, now: time.Now, views: map[string]*view{}}
}

// Add registers p under a new view id.
func (r *Registry) Add(p *Pool) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[id] = &view{pool: p, lastUsed: r.now()}
	metrics.ActiveViews.Set(float64(len(r.views)))
	return id
}

// Get returns the pool for id and marks the view as used.
func (r *Registry) Get(id string) (*Pool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[id]
	if !ok {
		return nil, false
	}
	v.lastUsed = r.now()
	return v.pool, true
}

// Remove discards a view.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views[id]; ok {
		delete(r.views, id)
		r.drain(v.pool)
	}
	metrics.ActiveViews.Set(float64(len(r.views)))
}

// Len reports the number of live views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep drops views idle past the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, v := range r.views {
		if v.lastUsed.Before(cutoff) {
			delete(r.views, id)
			r.drain(v.pool)
			removed++
		}
	}
	metrics.ActiveViews.Set(float64(len(r.views)))
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Wait blocks until the background work of every pool finishes, including
// pools already swept or removed.
func (r *Registry) Wait() {
	r.mu.Lock()
	pools := make([]*Pool, 0, len(r.views))
	for _, v := range r.views {
		pools = append(pools, v.pool)
	}
	r.mu.Unlock()
	for _, p := range pools {
		p.Wait()
	}
	r.evicted.Wait()
}

// drain keeps an evicted pool visible to Wait until its goroutines finish.
// Callers hold r.mu.
func (r *Registry) drain(p *Pool) {
	r.evicted.Add(1)
	go func() {
		defer r.evicted.Done()
		p.Wait()
	}()
}
