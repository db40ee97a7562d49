package access

import (
	"sync"

	"cortex-ai-be/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Limiter caps how often each user may request a generation.
type Limiter struct {
	mu    sync.Mutex
	m     map[uuid.UUID]*rate.Limiter
	rps   float64
	burst int
}

func NewLimiter(rps float64, burst int) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		m:     make(map[uuid.UUID]*rate.Limiter),
		rps:   rps,
		burst: burst,
	}
}

func (l *Limiter) get(userId uuid.UUID) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.m[userId]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.m[userId] = lim
	return lim
}

// Verify consumes one token for userId or reports RateLimited.
func (l *Limiter) Verify(userId uuid.UUID) error {
	if !l.get(userId).Allow() {
		return apperror.RateLimited("too many messages, slow down and try again shortly")
	}
	return nil
}
