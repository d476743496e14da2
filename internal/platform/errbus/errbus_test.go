package errbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"credwallet/internal/platform/logger"
	"credwallet/pkg/requestcontext"
)

// =============================================================================
// Error Bus Test Suite
// =============================================================================
// Justification: the bus is the only path from lifecycle failures to the user.
// Tests verify fan-out, stamping, non-blocking delivery, and unsubscribe.

type BusSuite struct {
	suite.Suite
	bus *Bus
}

func TestBusSuite(t *testing.T) {
	suite.Run(t, new(BusSuite))
}

func (s *BusSuite) SetupTest() {
	s.bus = New(WithLogger(logger.Discard()))
}

func (s *BusSuite) TestPublish() {
	s.Run("fans out to every subscriber", func() {
		a, cancelA := s.bus.Subscribe(1)
		defer cancelA()
		b, cancelB := s.bus.Subscribe(1)
		defer cancelB()

		s.bus.Publish(context.Background(), Event{Kind: KindAcceptOffer, Code: CodeAcceptOffer})

		evA := <-a
		evB := <-b
		s.Equal(CodeAcceptOffer, evA.Code)
		s.Equal(evA.ID, evB.ID)
		s.NotEqual(uuid.Nil, evA.ID)
		s.False(evA.OccurredAt.IsZero())
	})

	s.Run("stamps the request time", func() {
		ch, cancel := s.bus.Subscribe(1)
		defer cancel()
		at := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

		s.bus.Publish(requestcontext.WithTime(context.Background(), at), Event{Code: CodeDeclineOffer})
		s.Equal(at, (<-ch).OccurredAt)
	})

	s.Run("full subscriber does not block and is counted", func() {
		ch, cancel := s.bus.Subscribe(1)
		defer cancel()
		before := s.bus.Dropped()

		s.bus.Publish(context.Background(), Event{Code: 1})
		s.bus.Publish(context.Background(), Event{Code: 2})

		s.Equal(1, (<-ch).Code)
		s.Equal(before+1, s.bus.Dropped())
	})

	s.Run("publishing with no subscribers is a no-op", func() {
		s.NotPanics(func() {
			New().Publish(context.Background(), Event{Code: CodeDeclineOffer})
		})
	})
}

func (s *BusSuite) TestSubscribeCancel() {
	ch, cancel := s.bus.Subscribe(0)
	cancel()
	cancel()

	_, open := <-ch
	s.False(open)
	s.NotPanics(func() {
		s.bus.Publish(context.Background(), Event{Code: CodeAcceptOffer})
	})
}

func (s *BusSuite) TestCatalog() {
	catalog := DefaultCatalog()

	s.Run("builds events with catalog text and cause", func() {
		ev := catalog.NewEvent(KindDeclineOffer, CodeDeclineOffer, errors.New("agent offline"))
		s.Equal("Unable to decline credential offer", ev.Title)
		s.Equal("agent offline", ev.DiagnosticCause)
		s.Equal(CodeDeclineOffer, ev.Code)
		s.Equal(KindDeclineOffer, ev.Kind)
	})

	s.Run("host can replace messages", func() {
		catalog.Set(CodeAcceptOffer, Message{Title: "Fehler", Detail: "Annahme fehlgeschlagen"})
		msg, ok := catalog.Lookup(CodeAcceptOffer)
		s.True(ok)
		s.Equal("Fehler", msg.Title)
	})

	s.Run("unknown code yields empty text", func() {
		ev := catalog.NewEvent(KindAcceptOffer, 9999, nil)
		s.Empty(ev.Title)
		s.Empty(ev.DiagnosticCause)
	})
}
