package agent

import (
	"context"
	"log/slog"

	"credwallet/internal/credential/models"
)

// Loopback is a Counterparty for a wallet running without an issuer network:
// it issues exactly the offered attributes and logs problem reports.
type Loopback struct {
	logger *slog.Logger
}

// NewLoopback creates a Loopback counterparty.
func NewLoopback(logger *slog.Logger) *Loopback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loopback{logger: logger}
}

func (l *Loopback) RequestCredential(_ context.Context, _ string, offer models.FormatData) ([]models.Attribute, error) {
	return append([]models.Attribute(nil), offer.OfferAttributes...), nil
}

func (l *Loopback) SendProblemReport(ctx context.Context, connectionID, threadID, description string) error {
	l.logger.InfoContext(ctx, "problem report sent",
		"connection_id", connectionID,
		"thread_id", threadID,
		"description", description,
	)
	return nil
}
