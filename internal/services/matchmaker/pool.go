package matchmaker

import (
	"sync"
	"time"

	"github.com/netpong/netpong/internal/services/match"
)

// waitingClient is one authenticated client queued for pairing
type waitingClient struct {
	player     *match.Player
	enqueuedAt time.Time
}

// pool is the FIFO waiting queue. All mutation happens under the
// mutex; nothing outside this type iterates the queue.
type pool struct {
	mu      sync.Mutex
	waiting []*waitingClient
}

func newPool() *pool {
	return &pool{}
}

// enqueue appends a client and, if two or more clients are waiting,
// pops the two longest-waiting for pairing. Pairing order is strictly
// FIFO arrival.
func (p *pool) enqueue(c *waitingClient) (first, second *waitingClient) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.waiting = append(p.waiting, c)
	if len(p.waiting) < 2 {
		return nil, nil
	}

	first, second = p.waiting[0], p.waiting[1]
	p.waiting = p.waiting[2:]
	return first, second
}

// remove drops a client that disconnected while waiting. It is a
// no-op if the client was already paired.
func (p *pool) remove(c *waitingClient) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, w := range p.waiting {
		if w == c {
			p.waiting = append(p.waiting[:i], p.waiting[i+1:]...)
			return true
		}
	}
	return false
}

// size reports the number of waiting clients
func (p *pool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiting)
}
