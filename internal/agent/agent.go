// Package agent is the in-process credential-exchange agent. It owns the
// credential records the wallet core reads and writes through ports.Agent,
// and talks to issuers through a Counterparty.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"credwallet/internal/agent/store"
	"credwallet/internal/credential/models"
	"credwallet/internal/credential/ports"
	"credwallet/pkg/platform/sentinel"
)

var _ ports.Agent = (*Local)(nil)

// Counterparty sends exchange messages to the issuer on a connection.
type Counterparty interface {
	// RequestCredential answers an offer and returns the issued attributes.
	RequestCredential(ctx context.Context, connectionID string, offer models.FormatData) ([]models.Attribute, error)
	SendProblemReport(ctx context.Context, connectionID, threadID, description string) error
}

// IncomingOffer is an offer received from an issuer.
type IncomingOffer struct {
	ConnectionID string             `json:"connection_id"`
	ThreadID     string             `json:"thread_id,omitempty"`
	Attributes   []models.Attribute `json:"attributes"`
	CredDefID    string             `json:"cred_def_id,omitempty"`
	SchemaID     string             `json:"schema_id,omitempty"`
}

// Local implements ports.Agent over a record store.
type Local struct {
	store        store.Store
	counterparty Counterparty
	logger       *slog.Logger
}

// Option configures a Local agent.
type Option func(*Local)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Local) {
		a.logger = logger
	}
}

// New creates a Local agent.
func New(st store.Store, counterparty Counterparty, opts ...Option) (*Local, error) {
	if st == nil {
		return nil, errors.New("record store is required")
	}
	if counterparty == nil {
		return nil, errors.New("counterparty is required")
	}
	a := &Local{store: st, counterparty: counterparty, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// AddConnection registers a connection offers can arrive on.
func (a *Local) AddConnection(ctx context.Context, conn models.Connection) error {
	if conn.ID == "" {
		return errors.New("connection id is required")
	}
	return a.store.SaveConnection(ctx, conn)
}

// ReceiveOffer records an incoming offer in the offer-received state. The
// connection must be known.
func (a *Local) ReceiveOffer(ctx context.Context, offer IncomingOffer) (models.CredentialRecord, error) {
	if offer.ConnectionID == "" {
		return models.CredentialRecord{}, errors.New("connection id is required")
	}
	if _, err := a.store.FindConnection(ctx, offer.ConnectionID); err != nil {
		return models.CredentialRecord{}, err
	}

	record := models.CredentialRecord{
		ID:           uuid.NewString(),
		State:        models.StateOfferReceived,
		ThreadID:     offer.ThreadID,
		ConnectionID: offer.ConnectionID,
	}
	if record.ThreadID == "" {
		record.ThreadID = uuid.NewString()
	}
	if offer.CredDefID != "" || offer.SchemaID != "" {
		ac := models.AnonCredsCredential{CredentialDefinitionID: offer.CredDefID, SchemaID: offer.SchemaID}
		if err := record.EnsureMetadata().Set(models.MetaAnonCredsCredential, ac); err != nil {
			return models.CredentialRecord{}, err
		}
	}

	entry := store.Entry{
		Record: record,
		Format: models.FormatData{
			OfferAttributes: offer.Attributes,
			Offer:           &models.Offer{AnonCreds: &models.OfferFormat{CredDefID: offer.CredDefID, SchemaID: offer.SchemaID}},
		},
	}
	if err := a.store.Create(ctx, entry); err != nil {
		return models.CredentialRecord{}, err
	}

	a.logger.InfoContext(ctx, "credential offer received",
		"credential_id", record.ID,
		"thread_id", record.ThreadID,
		"connection_id", record.ConnectionID,
	)
	return record, nil
}

func (a *Local) GetAll(ctx context.Context) ([]models.CredentialRecord, error) {
	entries, err := a.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.CredentialRecord, len(entries))
	for i, e := range entries {
		out[i] = e.Record
	}
	return out, nil
}

func (a *Local) FindByID(ctx context.Context, id string) (models.CredentialRecord, error) {
	e, err := a.store.FindByID(ctx, id)
	if err != nil {
		return models.CredentialRecord{}, err
	}
	return e.Record, nil
}

// GetFormatData returns the live offer data; it is empty once declined.
func (a *Local) GetFormatData(ctx context.Context, id string) (models.FormatData, error) {
	e, err := a.store.FindByID(ctx, id)
	if err != nil {
		return models.FormatData{}, err
	}
	return e.Format, nil
}

// AcceptOffer requests the credential from the issuer and stores it. The
// record must be offer-received both before and after the request.
func (a *Local) AcceptOffer(ctx context.Context, id string) (models.CredentialRecord, error) {
	e, err := a.store.FindByID(ctx, id)
	if err != nil {
		return models.CredentialRecord{}, err
	}
	if err := requireOffer(&e); err != nil {
		return models.CredentialRecord{}, err
	}

	issued, err := a.counterparty.RequestCredential(ctx, e.Record.ConnectionID, e.Format)
	if err != nil {
		return models.CredentialRecord{}, fmt.Errorf("request credential: %w", err)
	}

	updated, err := a.store.Execute(ctx, id, requireOffer, func(e *store.Entry) {
		e.Record.State = models.StateDone
		e.Record.Attributes = issued
	})
	if err != nil {
		return models.CredentialRecord{}, err
	}

	a.logger.InfoContext(ctx, "credential offer accepted",
		"credential_id", id,
		"thread_id", updated.Record.ThreadID,
	)
	return updated.Record, nil
}

// DeclineOffer moves the record to declined and clears the live offer data.
func (a *Local) DeclineOffer(ctx context.Context, id string) (models.CredentialRecord, error) {
	updated, err := a.store.Execute(ctx, id, requireOffer, func(e *store.Entry) {
		e.Record.State = models.StateDeclined
		e.Format = models.FormatData{}
	})
	if err != nil {
		return models.CredentialRecord{}, err
	}

	a.logger.InfoContext(ctx, "credential offer declined",
		"credential_id", id,
		"thread_id", updated.Record.ThreadID,
	)
	return updated.Record, nil
}

// SendProblemReport sends description to the counterparty of record id.
func (a *Local) SendProblemReport(ctx context.Context, id, description string) error {
	e, err := a.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if e.Record.ConnectionID == "" {
		return fmt.Errorf("credential %s has no connection: %w", id, sentinel.ErrInvalidState)
	}
	return a.counterparty.SendProblemReport(ctx, e.Record.ConnectionID, e.Record.ThreadID, description)
}

// Update writes the record's metadata, and its attributes when set. State and
// identity stay as stored.
func (a *Local) Update(ctx context.Context, record models.CredentialRecord) error {
	next := record.Clone()
	_, err := a.store.Execute(ctx, record.ID,
		func(*store.Entry) error { return nil },
		func(e *store.Entry) {
			e.Record.Metadata = next.Metadata
			if next.Attributes != nil {
				e.Record.Attributes = next.Attributes
			}
		},
	)
	return err
}

func (a *Local) FindConnectionByID(ctx context.Context, id string) (models.Connection, error) {
	return a.store.FindConnection(ctx, id)
}

func requireOffer(e *store.Entry) error {
	if e.Record.State != models.StateOfferReceived {
		return fmt.Errorf("credential %s is %s: %w", e.Record.ID, e.Record.State, sentinel.ErrInvalidState)
	}
	return nil
}
