// Package store persists the local agent's credential records, the offer data
// kept beside them, and known connections.
package store

import (
	"context"

	"credwallet/internal/credential/models"
)

// Entry is a credential record plus the live offer data for it.
type Entry struct {
	Record models.CredentialRecord `json:"record"`
	Format models.FormatData       `json:"format"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	out := Entry{Record: e.Record.Clone()}
	out.Format.OfferAttributes = append([]models.Attribute(nil), e.Format.OfferAttributes...)
	if e.Format.Offer != nil {
		offer := models.Offer{}
		if e.Format.Offer.AnonCreds != nil {
			f := *e.Format.Offer.AnonCreds
			offer.AnonCreds = &f
		}
		if e.Format.Offer.Indy != nil {
			f := *e.Format.Offer.Indy
			offer.Indy = &f
		}
		out.Format.Offer = &offer
	}
	return out
}

// Store is implemented by InMemoryStore and RedisStore.
//
// Lookups of missing entries or connections return an error wrapping
// sentinel.ErrNotFound. Create of an existing id wraps sentinel.ErrConflict.
type Store interface {
	Create(ctx context.Context, entry Entry) error
	FindByID(ctx context.Context, id string) (Entry, error)
	ListAll(ctx context.Context) ([]Entry, error)
	ListByThread(ctx context.Context, threadID string) ([]Entry, error)

	// Execute atomically validates and mutates the entry for id. A validate
	// error is returned unchanged and nothing is written.
	Execute(ctx context.Context, id string, validate func(*Entry) error, mutate func(*Entry)) (Entry, error)

	SaveConnection(ctx context.Context, conn models.Connection) error
	FindConnection(ctx context.Context, id string) (models.Connection, error)
}
