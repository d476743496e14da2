// Package ports declares the credential-exchange agent the wallet core drives.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Agent

import (
	"context"

	"credwallet/internal/credential/models"
)

// Agent is the credential-exchange engine owning credential records.
//
// Lookups return an error wrapping sentinel.ErrNotFound when the record or
// connection does not exist. Implementations own their timeouts.
type Agent interface {
	GetAll(ctx context.Context) ([]models.CredentialRecord, error)
	FindByID(ctx context.Context, id string) (models.CredentialRecord, error)
	GetFormatData(ctx context.Context, id string) (models.FormatData, error)
	AcceptOffer(ctx context.Context, id string) (models.CredentialRecord, error)
	DeclineOffer(ctx context.Context, id string) (models.CredentialRecord, error)
	SendProblemReport(ctx context.Context, id, description string) error
	Update(ctx context.Context, record models.CredentialRecord) error
	FindConnectionByID(ctx context.Context, id string) (models.Connection, error)
}
