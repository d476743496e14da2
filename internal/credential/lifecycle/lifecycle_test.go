package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"credwallet/internal/credential/models"
	"credwallet/internal/credential/ports/mocks"
	"credwallet/internal/platform/errbus"
	"credwallet/internal/platform/logger"
	"credwallet/pkg/platform/sentinel"
	"credwallet/pkg/testutil"
)

// =============================================================================
// Credential Lifecycle Controller Test Suite
// =============================================================================
// Justification: accept and decline are irreversible for the holder. The guard
// must hold under concurrency, failures must surface with their numeric codes,
// and the declined snapshot must survive the agent clearing the live offer.

type recordingPublisher struct {
	mu     sync.Mutex
	events []errbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e errbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []errbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]errbus.Event(nil), p.events...)
}

type LifecycleSuite struct {
	suite.Suite
	ctx        context.Context
	ctrl       *gomock.Controller
	agent      *mocks.MockAgent
	publisher  *recordingPublisher
	controller *Controller
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.agent = mocks.NewMockAgent(s.ctrl)
	s.publisher = &recordingPublisher{}

	var err error
	s.controller, err = New(s.agent, s.publisher, WithLogger(logger.Discard()))
	s.Require().NoError(err)
}

func offer() models.CredentialRecord {
	return models.CredentialRecord{
		ID:       "cred-1",
		State:    models.StateOfferReceived,
		ThreadID: "thread-1",
	}
}

func studentPreview() []models.Attribute {
	return []models.Attribute{{Name: "studentId", Value: "123"}, {Name: "fullName", Value: "Ann Lee"}}
}

func studentFormatData() models.FormatData {
	return models.FormatData{
		OfferAttributes: studentPreview(),
		Offer: &models.Offer{AnonCreds: &models.OfferFormat{
			CredDefID: "Th7:3:CL:12:NHCS-ID",
			SchemaID:  "Th7:2:student:1.0",
		}},
	}
}

// pending reconciles rec on c against an agent that still holds it as an
// open offer, so the decision under test starts from the pending phase.
func (s *LifecycleSuite) pending(c *Controller, rec models.CredentialRecord) {
	s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{rec}, nil)
	s.Require().Equal(models.PhasePending, c.Reconcile(s.ctx, rec).Phase)
}

func (s *LifecycleSuite) TestNew() {
	s.Run("agent is required", func() {
		_, err := New(nil, s.publisher)
		s.Error(err)
	})
	s.Run("publisher is required", func() {
		_, err := New(s.agent, nil)
		s.Error(err)
	})
}

// -----------------------------------------------------------------------------
// Accept
// -----------------------------------------------------------------------------

func (s *LifecycleSuite) TestAccept() {
	rec := offer()
	s.pending(s.controller, rec)
	s.Equal(models.PhasePending, s.controller.Status(rec.ID).Phase)

	s.agent.EXPECT().AcceptOffer(gomock.Any(), rec.ID).Return(rec, nil).Times(1)

	st, err := s.controller.Accept(s.ctx, rec)
	s.Require().NoError(err)
	s.Equal(models.PhaseAccepted, st.Phase)
	s.Equal(models.DecisionAccepted, st.Decision)

	s.Run("second accept is refused without contacting the agent", func() {
		_, err := s.controller.Accept(s.ctx, rec)
		s.ErrorIs(err, ErrDecisionLocked)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("decline after accept is refused", func() {
		_, err := s.controller.Decline(s.ctx, rec)
		s.ErrorIs(err, ErrDecisionLocked)
	})

	s.Empty(s.publisher.Events())
}

func (s *LifecycleSuite) TestAcceptFailurePublishesAndAllowsRetry() {
	rec := offer()
	s.pending(s.controller, rec)
	gomock.InOrder(
		s.agent.EXPECT().AcceptOffer(gomock.Any(), rec.ID).Return(models.CredentialRecord{}, errors.New("mediator unreachable")),
		s.agent.EXPECT().AcceptOffer(gomock.Any(), rec.ID).Return(rec, nil),
	)

	st, err := s.controller.Accept(s.ctx, rec)
	s.Require().Error(err)
	s.Equal(models.PhasePending, st.Phase)
	s.Equal(models.DecisionNone, st.Decision)

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(errbus.CodeAcceptOffer, events[0].Code)
	s.Equal(errbus.KindAcceptOffer, events[0].Kind)
	s.Equal("mediator unreachable", events[0].DiagnosticCause)
	s.NotEmpty(events[0].Title)
	s.NotEmpty(events[0].Detail)

	st, err = s.controller.Accept(s.ctx, rec)
	s.Require().NoError(err)
	s.Equal(models.PhaseAccepted, st.Phase)
}

func (s *LifecycleSuite) TestConcurrentAcceptCallsAgentOnce() {
	rec := offer()
	s.pending(s.controller, rec)
	s.agent.EXPECT().AcceptOffer(gomock.Any(), rec.ID).Return(rec, nil).Times(1)

	result := testutil.RunConcurrent(20, func(int) error {
		_, err := s.controller.Accept(s.ctx, rec)
		return err
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
	s.Equal(int32(0), result.Errors)
	s.Equal(models.DecisionAccepted, s.controller.Status(rec.ID).Decision)
}

func (s *LifecycleSuite) TestForgetDropsInFlightResult() {
	rec := offer()
	s.pending(s.controller, rec)
	entered := make(chan struct{})
	release := make(chan struct{})
	s.agent.EXPECT().AcceptOffer(gomock.Any(), rec.ID).DoAndReturn(
		func(context.Context, string) (models.CredentialRecord, error) {
			close(entered)
			<-release
			return rec, nil
		})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.controller.Accept(s.ctx, rec)
	}()

	<-entered
	s.controller.Forget(rec.ID)
	close(release)
	<-done

	st := s.controller.Status(rec.ID)
	s.Equal(models.PhasePending, st.Phase)
	s.Equal(models.DecisionNone, st.Decision)
}

func (s *LifecycleSuite) TestDecisionHonorsAgentStateBeforeFirstUse() {
	s.Run("accept on a thread already done does not reach the agent", func() {
		s.SetupTest()
		rec := offer()
		done := models.CredentialRecord{ID: "cred-2", State: models.StateDone, ThreadID: rec.ThreadID}
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{rec, done}, nil).Times(1)

		st, err := s.controller.Accept(s.ctx, rec)
		s.ErrorIs(err, ErrDecisionLocked)
		s.Equal(models.PhaseAccepted, st.Phase)
		s.Empty(s.publisher.Events())
	})

	s.Run("decline on a thread already declined does not reach the agent", func() {
		s.SetupTest()
		rec := offer()
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{declinedRecord(studentPreview(), "saved-def")}, nil).Times(1)

		st, err := s.controller.Decline(s.ctx, rec)
		s.ErrorIs(err, ErrDecisionLocked)
		s.Equal(models.PhaseDeclined, st.Phase)
		s.Require().NotNil(st.DeclinedSnapshot)
		s.Equal(studentPreview(), st.DeclinedSnapshot.Attributes)
		s.Empty(s.publisher.Events())
	})

	s.Run("thread state is checked once per entry", func() {
		s.SetupTest()
		rec := offer()
		gomock.InOrder(
			s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{rec}, nil).Times(1),
			s.agent.EXPECT().AcceptOffer(gomock.Any(), rec.ID).Return(models.CredentialRecord{}, errors.New("mediator unreachable")),
			s.agent.EXPECT().AcceptOffer(gomock.Any(), rec.ID).Return(rec, nil),
		)

		_, err := s.controller.Accept(s.ctx, rec)
		s.Require().Error(err)
		st, err := s.controller.Accept(s.ctx, rec)
		s.Require().NoError(err)
		s.Equal(models.PhaseAccepted, st.Phase)
	})

	s.Run("unreachable agent still lets the holder decide", func() {
		s.SetupTest()
		rec := offer()
		s.agent.EXPECT().GetAll(gomock.Any()).Return(nil, errors.New("wallet locked"))
		s.agent.EXPECT().AcceptOffer(gomock.Any(), rec.ID).Return(rec, nil)

		st, err := s.controller.Accept(s.ctx, rec)
		s.Require().NoError(err)
		s.Equal(models.PhaseAccepted, st.Phase)
	})
}

// -----------------------------------------------------------------------------
// Decline
// -----------------------------------------------------------------------------

func (s *LifecycleSuite) TestDeclineFullFlow() {
	rec := offer()
	rec.ConnectionID = "conn-1"
	s.pending(s.controller, rec)

	var saved models.CredentialRecord
	gomock.InOrder(
		s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(studentFormatData(), nil),
		s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil),
		s.agent.EXPECT().FindByID(gomock.Any(), rec.ID).Return(models.CredentialRecord{ID: rec.ID, State: models.StateDeclined, ThreadID: rec.ThreadID}, nil),
		s.agent.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r models.CredentialRecord) error {
				saved = r
				return nil
			}),
		s.agent.EXPECT().FindConnectionByID(gomock.Any(), "conn-1").Return(models.Connection{ID: "conn-1"}, nil),
		s.agent.EXPECT().SendProblemReport(gomock.Any(), rec.ID, DefaultDeclineDescription).Return(nil),
	)

	st, err := s.controller.Decline(s.ctx, rec)
	s.Require().NoError(err)
	s.Equal(models.PhaseDeclined, st.Phase)
	s.Equal(models.DecisionDeclined, st.Decision)
	s.Require().NotNil(st.DeclinedSnapshot)
	s.Equal(studentPreview(), st.DeclinedSnapshot.Attributes)
	s.Equal("Th7:3:CL:12:NHCS-ID", st.DeclinedSnapshot.CredentialDefinitionID)

	var preview []models.Attribute
	ok, err := saved.Metadata.Get(models.MetaOfferPreview, &preview)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(studentPreview(), preview)
	s.JSONEq(`"Th7:3:CL:12:NHCS-ID"`, string(saved.Metadata[models.MetaCredDefID]))
	s.JSONEq(`"Th7:2:student:1.0"`, string(saved.Metadata[models.MetaSchemaID]))

	s.Empty(s.publisher.Events())
}

func (s *LifecycleSuite) TestForgetDuringDeclineStillSavesSnapshot() {
	rec := offer()
	s.pending(s.controller, rec)

	entered := make(chan struct{})
	release := make(chan struct{})
	var saved []models.CredentialRecord
	s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(studentFormatData(), nil)
	s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).DoAndReturn(
		func(context.Context, string) (models.CredentialRecord, error) {
			close(entered)
			<-release
			return rec, nil
		})
	s.agent.EXPECT().FindByID(gomock.Any(), rec.ID).Return(models.CredentialRecord{ID: rec.ID, State: models.StateDeclined, ThreadID: rec.ThreadID}, nil)
	s.agent.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r models.CredentialRecord) error {
			saved = append(saved, r)
			return nil
		}).Times(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.controller.Decline(s.ctx, rec)
	}()

	<-entered
	s.controller.Forget(rec.ID)
	close(release)
	<-done

	s.Require().Len(saved, 1)
	var preview []models.Attribute
	ok, err := saved[0].Metadata.Get(models.MetaOfferPreview, &preview)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(studentPreview(), preview)

	// The forgotten entry did not take the in-flight result.
	s.Equal(models.DecisionNone, s.controller.Status(rec.ID).Decision)

	s.Run("the next decision sees the declined record", func() {
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{saved[0]}, nil)

		st, err := s.controller.Decline(s.ctx, rec)
		s.ErrorIs(err, ErrDecisionLocked)
		s.Equal(models.PhaseDeclined, st.Phase)
		s.Require().NotNil(st.DeclinedSnapshot)
		s.Equal(studentPreview(), st.DeclinedSnapshot.Attributes)
	})
}

func (s *LifecycleSuite) TestDeclineKeepsExistingSavedPreview() {
	rec := offer()
	s.pending(s.controller, rec)

	stored := declinedRecord([]models.Attribute{{Name: "studentId", Value: "first-write"}}, "")
	s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(studentFormatData(), nil)
	s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)
	s.agent.EXPECT().FindByID(gomock.Any(), rec.ID).Return(stored, nil)
	s.agent.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

	st, err := s.controller.Decline(s.ctx, rec)
	s.Require().NoError(err)
	s.Equal(models.DecisionDeclined, st.Decision)
	s.Empty(s.publisher.Events())
}

func (s *LifecycleSuite) TestDeclinedSnapshotDoesNotShareFormatData() {
	rec := offer()
	s.pending(s.controller, rec)

	fd := studentFormatData()
	s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(fd, nil)
	s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)
	s.agent.EXPECT().FindByID(gomock.Any(), rec.ID).Return(models.CredentialRecord{ID: rec.ID, State: models.StateDeclined}, nil)
	s.agent.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.controller.Decline(s.ctx, rec)
	s.Require().NoError(err)

	fd.OfferAttributes[0].Value = "changed by agent"

	st := s.controller.Status(rec.ID)
	s.Require().NotNil(st.DeclinedSnapshot)
	s.Equal(studentPreview(), st.DeclinedSnapshot.Attributes)
}

func (s *LifecycleSuite) TestDeclineOfferFailureKeepsPending() {
	rec := offer()
	s.pending(s.controller, rec)
	s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(studentFormatData(), nil)
	s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(models.CredentialRecord{}, errors.New("record locked"))

	st, err := s.controller.Decline(s.ctx, rec)
	s.Require().Error(err)
	s.Equal(models.PhasePending, st.Phase)
	s.Equal(models.DecisionNone, st.Decision)
	s.Nil(st.DeclinedSnapshot)

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(errbus.CodeDeclineOffer, events[0].Code)
	s.Equal(errbus.KindDeclineOffer, events[0].Kind)
	s.Equal("decline_offer: record locked", events[0].DiagnosticCause)
}

func (s *LifecycleSuite) TestDeclineWithFormatDataFailure() {
	rec := offer()
	s.Require().NoError(rec.EnsureMetadata().Set(models.MetaAnonCredsCredential, models.AnonCredsCredential{CredentialDefinitionID: "known-def"}))
	s.pending(s.controller, rec)

	s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(models.FormatData{}, errors.New("offer expired"))
	s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)

	st, err := s.controller.Decline(s.ctx, rec)
	s.Require().NoError(err)
	s.Equal(models.DecisionDeclined, st.Decision)
	s.Require().NotNil(st.DeclinedSnapshot)
	s.Empty(st.DeclinedSnapshot.Attributes)
	s.Equal("known-def", st.DeclinedSnapshot.CredentialDefinitionID)

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(errbus.CodeDeclineOffer, events[0].Code)
	s.Equal("format_data: offer expired", events[0].DiagnosticCause)
}

func (s *LifecycleSuite) TestDeclineLaterStepFailuresKeepDecision() {
	cases := []struct {
		name  string
		setup func(rec models.CredentialRecord)
		cause string
	}{
		{
			name: "record lookup fails",
			setup: func(rec models.CredentialRecord) {
				s.agent.EXPECT().FindByID(gomock.Any(), rec.ID).Return(models.CredentialRecord{}, errors.New("storage down"))
			},
			cause: "persist_snapshot: storage down",
		},
		{
			name: "update fails",
			setup: func(rec models.CredentialRecord) {
				s.agent.EXPECT().FindByID(gomock.Any(), rec.ID).Return(rec, nil)
				s.agent.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("write conflict"))
			},
			cause: "persist_snapshot: write conflict",
		},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.SetupTest()
			rec := offer()
			s.pending(s.controller, rec)
			s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(studentFormatData(), nil)
			s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)
			tc.setup(rec)

			st, err := s.controller.Decline(s.ctx, rec)
			s.Require().NoError(err)
			s.Equal(models.DecisionDeclined, st.Decision)

			events := s.publisher.Events()
			s.Require().Len(events, 1)
			s.Equal(errbus.CodeDeclineOffer, events[0].Code)
			s.Equal(tc.cause, events[0].DiagnosticCause)
		})
	}
}

func (s *LifecycleSuite) TestDeclineCounterpartyReport() {
	s.Run("missing connection skips the report", func() {
		s.SetupTest()
		rec := offer()
		s.pending(s.controller, rec)
		rec.ConnectionID = "gone"
		s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(models.FormatData{}, nil)
		s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)
		s.agent.EXPECT().FindConnectionByID(gomock.Any(), "gone").Return(models.Connection{}, fmt.Errorf("connection gone: %w", sentinel.ErrNotFound))

		_, err := s.controller.Decline(s.ctx, rec)
		s.Require().NoError(err)
		s.Empty(s.publisher.Events())
	})

	s.Run("report failure is published", func() {
		s.SetupTest()
		rec := offer()
		s.pending(s.controller, rec)
		rec.ConnectionID = "conn-1"
		s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(models.FormatData{}, nil)
		s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)
		s.agent.EXPECT().FindConnectionByID(gomock.Any(), "conn-1").Return(models.Connection{ID: "conn-1"}, nil)
		s.agent.EXPECT().SendProblemReport(gomock.Any(), rec.ID, gomock.Any()).Return(errors.New("transport closed"))

		st, err := s.controller.Decline(s.ctx, rec)
		s.Require().NoError(err)
		s.Equal(models.PhaseDeclined, st.Phase)

		events := s.publisher.Events()
		s.Require().Len(events, 1)
		s.Equal("problem_report: transport closed", events[0].DiagnosticCause)
	})

	s.Run("no connection id skips lookup", func() {
		s.SetupTest()
		rec := offer()
		s.pending(s.controller, rec)
		s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(models.FormatData{}, nil)
		s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)

		_, err := s.controller.Decline(s.ctx, rec)
		s.Require().NoError(err)
	})
}

func (s *LifecycleSuite) TestDeclineCustomDescription() {
	controller, err := New(s.agent, s.publisher,
		WithLogger(logger.Discard()),
		WithDeclineDescription("Offer rejected by holder"),
	)
	s.Require().NoError(err)

	rec := offer()
	rec.ConnectionID = "conn-1"
	s.pending(controller, rec)
	s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(models.FormatData{}, nil)
	s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)
	s.agent.EXPECT().FindConnectionByID(gomock.Any(), "conn-1").Return(models.Connection{ID: "conn-1"}, nil)
	s.agent.EXPECT().SendProblemReport(gomock.Any(), rec.ID, "Offer rejected by holder").Return(nil)

	_, err = controller.Decline(s.ctx, rec)
	s.Require().NoError(err)
}

// -----------------------------------------------------------------------------
// Reconcile
// -----------------------------------------------------------------------------

func declinedRecord(preview []models.Attribute, credDefID string) models.CredentialRecord {
	rec := models.CredentialRecord{ID: "cred-1", State: models.StateDeclined, ThreadID: "thread-1"}
	md := rec.EnsureMetadata()
	if preview != nil {
		_ = md.Set(models.MetaOfferPreview, preview)
	}
	if credDefID != "" {
		_ = md.Set(models.MetaCredDefID, credDefID)
	}
	return rec
}

func (s *LifecycleSuite) TestReconcile() {
	s.Run("done record on the thread means accepted", func() {
		s.SetupTest()
		done := models.CredentialRecord{ID: "cred-2", State: models.StateDone, ThreadID: "thread-1"}
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{done}, nil)

		st := s.controller.Reconcile(s.ctx, offer())
		s.Equal(models.PhaseAccepted, st.Phase)
	})

	s.Run("declined record loads the saved snapshot", func() {
		s.SetupTest()
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{declinedRecord(studentPreview(), "saved-def")}, nil)

		st := s.controller.Reconcile(s.ctx, offer())
		s.Equal(models.PhaseDeclined, st.Phase)
		s.Require().NotNil(st.DeclinedSnapshot)
		s.Equal(studentPreview(), st.DeclinedSnapshot.Attributes)
		s.Equal("saved-def", st.DeclinedSnapshot.CredentialDefinitionID)
	})

	s.Run("missing saved cred def falls back to anoncreds metadata", func() {
		s.SetupTest()
		declined := declinedRecord(studentPreview(), "")
		s.Require().NoError(declined.Metadata.Set(models.MetaAnonCredsCredential, models.AnonCredsCredential{
			CredentialDefinitionID: "anon-def",
			SchemaID:               "anon-schema",
		}))
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{declined}, nil)

		st := s.controller.Reconcile(s.ctx, offer())
		s.Require().NotNil(st.DeclinedSnapshot)
		s.Equal("anon-def", st.DeclinedSnapshot.CredentialDefinitionID)
		s.Equal("anon-schema", st.DeclinedSnapshot.SchemaID)
	})

	s.Run("caller known cred def is the last fallback", func() {
		s.SetupTest()
		known := offer()
		s.Require().NoError(known.EnsureMetadata().Set(models.MetaAnonCredsCredential, models.AnonCredsCredential{CredentialDefinitionID: "known-def"}))
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{declinedRecord(studentPreview(), "")}, nil)

		st := s.controller.Reconcile(s.ctx, known)
		s.Require().NotNil(st.DeclinedSnapshot)
		s.Equal("known-def", st.DeclinedSnapshot.CredentialDefinitionID)
	})

	s.Run("declined without saved preview has no snapshot", func() {
		s.SetupTest()
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{declinedRecord(nil, "")}, nil)

		st := s.controller.Reconcile(s.ctx, offer())
		s.Equal(models.PhaseDeclined, st.Phase)
		s.Nil(st.DeclinedSnapshot)
	})

	s.Run("done outranks declined", func() {
		s.SetupTest()
		done := models.CredentialRecord{ID: "cred-2", State: models.StateDone, ThreadID: "thread-1"}
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{declinedRecord(studentPreview(), ""), done}, nil)

		s.Equal(models.PhaseAccepted, s.controller.Reconcile(s.ctx, offer()).Phase)
	})

	s.Run("other threads are ignored", func() {
		s.SetupTest()
		other := models.CredentialRecord{ID: "cred-9", State: models.StateDone, ThreadID: "thread-9"}
		s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{other}, nil)

		s.Equal(models.PhasePending, s.controller.Reconcile(s.ctx, offer()).Phase)
	})

	s.Run("errors are logged not published", func() {
		s.SetupTest()
		s.agent.EXPECT().GetAll(gomock.Any()).Return(nil, errors.New("wallet locked"))

		st := s.controller.Reconcile(s.ctx, offer())
		s.Equal(models.PhasePending, st.Phase)
		s.Empty(s.publisher.Events())
	})
}

func (s *LifecycleSuite) TestPersistedStateOverridesMemory() {
	rec := offer()
	s.pending(s.controller, rec)
	s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(models.FormatData{}, nil)
	s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)
	_, err := s.controller.Decline(s.ctx, rec)
	s.Require().NoError(err)

	done := models.CredentialRecord{ID: rec.ID, State: models.StateDone, ThreadID: rec.ThreadID}
	s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{done}, nil)

	st := s.controller.Reconcile(s.ctx, rec)
	s.Equal(models.DecisionAccepted, st.Decision)
}

func (s *LifecycleSuite) TestDeclinedSnapshotSurvivesRestart() {
	rec := offer()
	s.pending(s.controller, rec)
	var persisted models.CredentialRecord
	s.agent.EXPECT().GetFormatData(gomock.Any(), rec.ID).Return(studentFormatData(), nil)
	s.agent.EXPECT().DeclineOffer(gomock.Any(), rec.ID).Return(rec, nil)
	s.agent.EXPECT().FindByID(gomock.Any(), rec.ID).Return(models.CredentialRecord{ID: rec.ID, State: models.StateDeclined, ThreadID: rec.ThreadID}, nil)
	s.agent.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r models.CredentialRecord) error {
		persisted = r
		return nil
	})
	_, err := s.controller.Decline(s.ctx, rec)
	s.Require().NoError(err)

	restarted, err := New(s.agent, s.publisher, WithLogger(logger.Discard()))
	s.Require().NoError(err)
	s.agent.EXPECT().GetAll(gomock.Any()).Return([]models.CredentialRecord{persisted}, nil)

	st := restarted.Reconcile(s.ctx, models.CredentialRecord{ID: rec.ID, State: models.StateDeclined, ThreadID: rec.ThreadID})
	s.Equal(models.PhaseDeclined, st.Phase)
	s.Require().NotNil(st.DeclinedSnapshot)
	s.Equal(studentPreview(), st.DeclinedSnapshot.Attributes)
	s.Equal("Th7:2:student:1.0", st.DeclinedSnapshot.SchemaID)
}

func (s *LifecycleSuite) TestReconcileAll() {
	a := offer()
	b := models.CredentialRecord{ID: "cred-2", State: models.StateOfferReceived, ThreadID: "thread-2"}
	all := []models.CredentialRecord{
		{ID: "cred-1", State: models.StateDone, ThreadID: "thread-1"},
		declinedRecord(nil, ""),
	}
	all[1].ID, all[1].ThreadID = "cred-2", "thread-2"
	s.agent.EXPECT().GetAll(gomock.Any()).Return(all, nil).Times(2)

	statuses, err := s.controller.ReconcileAll(s.ctx, []models.CredentialRecord{a, b})
	s.Require().NoError(err)
	s.Equal(models.PhaseAccepted, statuses["cred-1"].Phase)
	s.Equal(models.PhaseDeclined, statuses["cred-2"].Phase)
}

func (s *LifecycleSuite) TestStatusJSON() {
	raw, err := json.Marshal(s.controller.Status("cred-1"))
	s.Require().NoError(err)
	s.JSONEq(`{"id":"cred-1","phase":"pending","decision":"none","processing":false}`, string(raw))
}
