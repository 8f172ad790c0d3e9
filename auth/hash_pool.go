package auth

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"
)

// Hasher is the synchronous password hashing contract
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hashed string) (bool, error)
}

// HashObserveFunc receives the duration of each hash ("hash") or verify ("verify") call
type HashObserveFunc func(op string, elapsed time.Duration)

// HashPool bounds how many bcrypt operations run at once.
// Hashing is deliberately slow and CPU-bound; without a bound a login burst
// occupies every P and stalls unrelated requests.
type HashPool struct {
	hasher  Hasher
	sem     *semaphore.Weighted
	observe HashObserveFunc
}

// NewHashPool wraps hasher; size <= 0 means GOMAXPROCS
func NewHashPool(hasher Hasher, size int, observe HashObserveFunc) *HashPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &HashPool{
		hasher:  hasher,
		sem:     semaphore.NewWeighted(int64(size)),
		observe: observe,
	}
}

// Hash waits for a slot and hashes the password
func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for hash slot: %w", err)
	}
	defer p.sem.Release(1)

	start := time.Now()
	hashed, err := p.hasher.Hash(password)
	p.record("hash", start)
	return hashed, err
}

// Verify waits for a slot and checks the password against hashed
func (p *HashPool) Verify(ctx context.Context, password, hashed string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("waiting for hash slot: %w", err)
	}
	defer p.sem.Release(1)

	start := time.Now()
	ok, err := p.hasher.Verify(password, hashed)
	p.record("verify", start)
	return ok, err
}

func (p *HashPool) record(op string, start time.Time) {
	if p.observe != nil {
		p.observe(op, time.Since(start))
	}
}
