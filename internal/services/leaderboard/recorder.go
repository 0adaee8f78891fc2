package leaderboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/netpong/netpong/internal/storage"
)

// queueSize bounds pending result writes. Match sessions must never
// block on the leaderboard, so an overflowing queue drops results
// rather than stalling a tick loop.
const queueSize = 256

// result is one finished match outcome awaiting persistence
type result struct {
	winner string
	loser  string
}

// Recorder persists match outcomes asynchronously. Record is safe to
// call from any goroutine and returns immediately.
type Recorder struct {
	storage storage.Storage
	logger  *slog.Logger

	queue chan result
	stop  chan struct{}
	done  chan struct{}

	stopOnce sync.Once
}

func NewRecorder(store storage.Storage, logger *slog.Logger) *Recorder {
	r := &Recorder{
		storage: store,
		logger:  logger.With(slog.String("component", "leaderboard")),
		queue:   make(chan result, queueSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues a finished match outcome. Only the winner's tally
// changes; the loser is kept for the log line.
func (r *Recorder) Record(winner, loser string) {
	select {
	case r.queue <- result{winner: winner, loser: loser}:
	default:
		r.logger.Warn("result queue full, dropping result",
			slog.String("winner", winner),
			slog.String("loser", loser),
		)
	}
}

// Close drains queued results and stops the writer
func (r *Recorder) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)

	for {
		select {
		case res := <-r.queue:
			r.persist(res)
		case <-r.stop:
			for {
				select {
				case res := <-r.queue:
					r.persist(res)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) persist(res result) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.storage.IncrementWins(ctx, res.winner); err != nil {
		r.logger.Error("recording win failed",
			slog.String("winner", res.winner),
			slog.String("error", err.Error()),
		)
		return
	}

	r.logger.Info("match result recorded",
		slog.String("winner", res.winner),
		slog.String("loser", res.loser),
	)
}
