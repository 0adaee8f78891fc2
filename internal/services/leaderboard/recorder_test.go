package leaderboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/netpong/netpong/internal/storage"
	"github.com/netpong/netpong/internal/storage/memory"
	"github.com/netpong/netpong/internal/testutil"
)

// failingStorage fails the first IncrementWins calls, then delegates
type failingStorage struct {
	storage.Storage

	mu       sync.Mutex
	failures int
}

func (f *failingStorage) IncrementWins(ctx context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("backend unavailable")
	}
	return f.Storage.IncrementWins(ctx, username)
}

// blockingStorage parks every IncrementWins call until released
type blockingStorage struct {
	storage.Storage

	entered chan struct{}
	release chan struct{}
}

func (b *blockingStorage) IncrementWins(ctx context.Context, username string) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return b.Storage.IncrementWins(ctx, username)
}

type RecorderSuite struct {
	suite.Suite
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) TestWriterSurvivesPersistFailure() {
	store := &failingStorage{Storage: memory.New(), failures: 1}
	recorder := NewRecorder(store, testutil.NopLogger())
	defer recorder.Close()

	// The first result hits the failing store; the loss is logged and
	// dropped without taking the writer down.
	recorder.Record("alice", "bob")
	recorder.Record("carol", "dave")

	s.Require().Eventually(func() bool {
		wins, err := store.GetWins(context.Background(), "carol")
		return err == nil && wins == 1
	}, time.Second, 5*time.Millisecond)

	wins, err := store.GetWins(context.Background(), "alice")
	s.Require().NoError(err)
	s.Zero(wins)
}

func (s *RecorderSuite) TestRecordNeverBlocksOnFullQueue() {
	store := &blockingStorage{
		Storage: memory.New(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	recorder := NewRecorder(store, testutil.NopLogger())

	// Park the writer inside a persist call, then fill the queue
	recorder.Record("alice", "bob")
	select {
	case <-store.entered:
	case <-time.After(time.Second):
		s.FailNow("writer never reached the store")
	}
	for i := 0; i < queueSize; i++ {
		recorder.Record("alice", "bob")
	}

	// Overflowing records must return immediately, as a tick loop
	// would be calling from its simulation goroutine
	returned := make(chan struct{})
	go func() {
		recorder.Record("alice", "bob")
		recorder.Record("alice", "bob")
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		s.FailNow("Record blocked on a full queue")
	}

	close(store.release)
	recorder.Close()

	// Everything queued before the overflow still lands
	wins, err := store.GetWins(context.Background(), "alice")
	s.Require().NoError(err)
	s.Equal(queueSize+1, wins)
}
