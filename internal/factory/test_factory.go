package factory

import (
	"time"

	"github.com/netpong/netpong/internal/dependencies/mocks"
	"github.com/netpong/netpong/internal/services/auth"
	"github.com/netpong/netpong/internal/services/match"
	"github.com/netpong/netpong/internal/services/matchmaker"
	"github.com/netpong/netpong/internal/services/token"
	"github.com/netpong/netpong/internal/storage/memory"
	"github.com/netpong/netpong/internal/testutil"
)

// TestPassphrase is the preshared channel passphrase used in tests
const TestPassphrase = "test-passphrase"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked
// dependencies and match sessions that tick fast
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	mmCfg := matchmaker.DefaultConfig()
	mmCfg.Match = match.Config{
		TickInterval:   time.Millisecond,
		CountdownTicks: 2,
		WriteTimeout:   time.Second,
	}

	app := newWithDependencies(
		store,
		mockClock,
		mockRandom,
		TestPassphrase,
		token.DefaultConfig(),
		auth.DefaultConfig(),
		mmCfg,
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
