package protocol

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/netpong/netpong/internal/model"
)

type MessagesSuite struct {
	suite.Suite
}

func TestMessagesSuite(t *testing.T) {
	suite.Run(t, new(MessagesSuite))
}

func (s *MessagesSuite) TestDecodeAuthRequestValid() {
	data := []byte(`{"op":"register","username":"alice","password":"pass1"}`)
	req, err := DecodeAuthRequest(data)
	s.Require().NoError(err)
	s.Equal(OpRegister, req.Op)
	s.Equal("alice", req.Username)
	s.Equal("pass1", req.Password)
}

func (s *MessagesSuite) TestDecodeAuthRequestRejectsUnknownOp() {
	data := []byte(`{"op":"delete","username":"alice","password":"pass1"}`)
	_, err := DecodeAuthRequest(data)
	s.ErrorIs(err, model.ErrProtocol)
}

func (s *MessagesSuite) TestDecodeAuthRequestRejectsMalformedJSON() {
	_, err := DecodeAuthRequest([]byte(`not json`))
	s.ErrorIs(err, model.ErrProtocol)
}

func (s *MessagesSuite) TestDecodeHelloRequiresToken() {
	_, err := DecodeHello([]byte(`{}`))
	s.ErrorIs(err, model.ErrProtocol)

	hello, err := DecodeHello([]byte(`{"token":"abc"}`))
	s.Require().NoError(err)
	s.Equal("abc", hello.Token)
}

func (s *MessagesSuite) TestDecodeClientFrameInputs() {
	for _, input := range []string{"up", "down", "none"} {
		frame, err := DecodeClientFrame(fmt.Appendf(nil, `{"input":%q}`, input))
		s.Require().NoError(err)
		s.Equal(input, frame.Input)
	}
}

func (s *MessagesSuite) TestDecodeClientFrameDefaultsToNone() {
	frame, err := DecodeClientFrame([]byte(`{}`))
	s.Require().NoError(err)
	s.Equal(string(model.InputNone), frame.Input)
}

func (s *MessagesSuite) TestDecodeClientFrameRejectsBadInput() {
	_, err := DecodeClientFrame([]byte(`{"input":"sideways"}`))
	s.ErrorIs(err, model.ErrProtocol)
}

func (s *MessagesSuite) TestDecodeClientFrameVote() {
	frame, err := DecodeClientFrame([]byte(`{"input":"none","vote":true}`))
	s.Require().NoError(err)
	s.Require().NotNil(frame.Vote)
	s.True(*frame.Vote)
}

func (s *MessagesSuite) TestSnapshotRoundTrip() {
	snap := &Snapshot{
		Phase:       model.PhasePlaying,
		Seq:         42,
		Ball:        model.Vec2{X: 320, Y: 240},
		PaddleLeft:  100,
		PaddleRight: 200,
		ScoreLeft:   3,
		ScoreRight:  2,
	}
	data, err := Encode(snap)
	s.Require().NoError(err)

	decoded, err := DecodeSnapshot(data)
	s.Require().NoError(err)
	s.Equal(snap, decoded)
}

func (s *MessagesSuite) TestReasonForError() {
	s.Equal("", ReasonForError(nil))
	s.Equal(ReasonInvalidUsername, ReasonForError(model.ErrInvalidUsername))
	s.Equal(ReasonDuplicateUsername, ReasonForError(model.ErrDuplicateUsername))
	s.Equal(ReasonWeakPassword, ReasonForError(model.ErrWeakPassword))
	s.Equal(ReasonAuthFailed, ReasonForError(model.ErrAuthFailed))
	s.Equal(ReasonInvalidToken, ReasonForError(model.ErrInvalidToken))
	s.Equal(ReasonProtocolError, ReasonForError(fmt.Errorf("wrapped: %w", model.ErrProtocol)))
	s.Equal(ReasonServerError, ReasonForError(fmt.Errorf("boom")))
}
