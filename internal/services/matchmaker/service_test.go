package matchmaker

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/netpong/netpong/internal/dependencies/clock"
	"github.com/netpong/netpong/internal/dependencies/random"
	"github.com/netpong/netpong/internal/protocol"
	"github.com/netpong/netpong/internal/services/match"
	"github.com/netpong/netpong/internal/services/token"
	"github.com/netpong/netpong/internal/testutil"
	"github.com/netpong/netpong/internal/wire"
)

type recorderStub struct {
	mu      sync.Mutex
	results [][2]string
}

func (r *recorderStub) Record(winner, loser string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, [2]string{winner, loser})
}

// gameClient is the client half of one game channel pipe
type gameClient struct {
	conn *wire.SecureConn
}

func (c *gameClient) hello(token string) (*protocol.ConnectResponse, error) {
	payload, err := protocol.Encode(protocol.Hello{Token: token})
	if err != nil {
		return nil, err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- c.conn.WriteMessage(payload) }()

	data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if werr := <-errCh; werr != nil {
		return nil, werr
	}
	return protocol.DecodeConnectResponse(data)
}

func (c *gameClient) readMatchStart() (*protocol.MatchStart, error) {
	data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return protocol.DecodeMatchStart(data)
}

// drain keeps reading snapshots so the session's broadcasts never
// stall on an unread pipe
func (c *gameClient) drain() {
	go func() {
		for {
			if _, err := c.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

type MatchmakerSuite struct {
	suite.Suite

	keys     wire.KeySource
	tokens   *token.Service
	recorder *recorderStub
	service  *Service

	ctx     context.Context
	cancel  context.CancelFunc
	clients []*gameClient
}

func TestMatchmakerSuite(t *testing.T) {
	suite.Run(t, new(MatchmakerSuite))
}

func (s *MatchmakerSuite) SetupTest() {
	s.keys = wire.NewPresharedKey("test-passphrase")
	s.tokens = token.New(clock.New(), random.New(), token.DefaultConfig())
	s.recorder = &recorderStub{}

	cfg := DefaultConfig()
	cfg.Match = match.Config{
		TickInterval:   time.Millisecond,
		CountdownTicks: 2,
		WriteTimeout:   time.Second,
	}
	s.service = New(s.tokens, s.keys, clock.New(), random.New(), s.recorder, testutil.NopLogger(), cfg)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.clients = nil
}

func (s *MatchmakerSuite) TearDownTest() {
	s.cancel()
	for _, c := range s.clients {
		c.conn.Close()
	}
}

// connect dials one game channel and completes the token handshake
func (s *MatchmakerSuite) connect(username string) *gameClient {
	client := s.dial()
	resp, err := client.hello(s.tokens.Issue(username))
	s.Require().NoError(err)
	s.Require().Equal(protocol.StatusOK, resp.Status)
	return client
}

func (s *MatchmakerSuite) dial() *gameClient {
	serverEnd, clientEnd := net.Pipe()
	go s.service.HandleConn(s.ctx, serverEnd)

	sc, err := wire.NewSecureConn(clientEnd, s.keys)
	s.Require().NoError(err)
	client := &gameClient{conn: sc}
	s.clients = append(s.clients, client)
	return client
}

// waitQueued blocks until the pool holds n waiting clients
func (s *MatchmakerSuite) waitQueued(n int) {
	s.Require().Eventually(func() bool {
		return s.service.Waiting() == n
	}, time.Second, time.Millisecond)
}

func (s *MatchmakerSuite) TestPairsInArrivalOrder() {
	alice := s.connect("alice")
	s.waitQueued(1)
	bob := s.connect("bob")

	aliceStart, err := alice.readMatchStart()
	s.Require().NoError(err)
	bobStart, err := bob.readMatchStart()
	s.Require().NoError(err)
	alice.drain()
	bob.drain()

	s.Equal("bob", aliceStart.Opponent)
	s.Equal("alice", bobStart.Opponent)
	s.Equal(aliceStart.MatchID, bobStart.MatchID)
	s.NotEqual(aliceStart.Side, bobStart.Side)

	carol := s.connect("carol")
	s.waitQueued(1)
	dave := s.connect("dave")

	carolStart, err := carol.readMatchStart()
	s.Require().NoError(err)
	daveStart, err := dave.readMatchStart()
	s.Require().NoError(err)
	carol.drain()
	dave.drain()

	s.Equal("dave", carolStart.Opponent)
	s.Equal("carol", daveStart.Opponent)
	s.NotEqual(aliceStart.MatchID, carolStart.MatchID)
}

func (s *MatchmakerSuite) TestRejectsInvalidToken() {
	client := s.dial()
	resp, err := client.hello("not-a-real-token")
	s.Require().NoError(err)
	s.Equal(protocol.StatusError, resp.Status)
	s.Equal(protocol.ReasonInvalidToken, resp.Reason)

	_, err = client.conn.ReadMessage()
	s.Error(err)
	s.Equal(0, s.service.Waiting())
}

func (s *MatchmakerSuite) TestRejectsReplayedTokenAfterRevoke() {
	tok := s.tokens.Issue("alice")
	s.tokens.Revoke(tok)

	client := s.dial()
	resp, err := client.hello(tok)
	s.Require().NoError(err)
	s.Equal(protocol.StatusError, resp.Status)
	s.Equal(protocol.ReasonInvalidToken, resp.Reason)
}

func (s *MatchmakerSuite) TestWaitingDisconnectLeavesNoResidue() {
	alice := s.connect("alice")
	s.Require().Eventually(func() bool {
		return s.service.Waiting() == 1
	}, time.Second, 5*time.Millisecond)

	alice.conn.Close()
	s.Require().Eventually(func() bool {
		return s.service.Waiting() == 0
	}, time.Second, 5*time.Millisecond)

	// The next two arrivals pair with each other, not with the ghost
	bob := s.connect("bob")
	s.waitQueued(1)
	carol := s.connect("carol")

	bobStart, err := bob.readMatchStart()
	s.Require().NoError(err)
	carolStart, err := carol.readMatchStart()
	s.Require().NoError(err)
	bob.drain()
	carol.drain()

	s.Equal("carol", bobStart.Opponent)
	s.Equal("bob", carolStart.Opponent)

	s.recorder.mu.Lock()
	defer s.recorder.mu.Unlock()
	s.Empty(s.recorder.results)
}

func (s *MatchmakerSuite) TestMatchStartCarriesFieldDimensions() {
	alice := s.connect("alice")
	s.waitQueued(1)
	bob := s.connect("bob")

	start, err := alice.readMatchStart()
	s.Require().NoError(err)
	_, err = bob.readMatchStart()
	s.Require().NoError(err)
	alice.drain()
	bob.drain()

	s.Equal(float64(640), start.Width)
	s.Equal(float64(480), start.Height)
	s.Equal(5, start.WinScore)
}
