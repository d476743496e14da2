package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"credwallet/internal/agent"
	"credwallet/internal/credential/card"
	"credwallet/internal/credential/lifecycle"
	"credwallet/internal/credential/models"
	"credwallet/pkg/platform/httputil"
	"credwallet/pkg/requestcontext"
)

// Wallet is the record-owning side of the agent as the bridge sees it.
type Wallet interface {
	GetAll(ctx context.Context) ([]models.CredentialRecord, error)
	FindByID(ctx context.Context, id string) (models.CredentialRecord, error)
	AddConnection(ctx context.Context, conn models.Connection) error
	ReceiveOffer(ctx context.Context, offer agent.IncomingOffer) (models.CredentialRecord, error)
}

// Decider accepts and declines offers.
type Decider interface {
	Accept(ctx context.Context, record models.CredentialRecord) (lifecycle.Status, error)
	Decline(ctx context.Context, record models.CredentialRecord) (lifecycle.Status, error)
}

// CardPresenter builds credential cards.
type CardPresenter interface {
	Present(ctx context.Context, record models.CredentialRecord) card.Card
	PresentResolved(ctx context.Context, record models.CredentialRecord) (card.Card, error)
}

// CredentialHandler exposes offers, cards and the accept/decline lifecycle.
type CredentialHandler struct {
	wallet    Wallet
	decider   Decider
	presenter CardPresenter
	logger    *slog.Logger
}

// NewCredentialHandler constructs a credential handler.
func NewCredentialHandler(wallet Wallet, decider Decider, presenter CardPresenter, logger *slog.Logger) (*CredentialHandler, error) {
	if wallet == nil {
		return nil, errors.New("wallet is required")
	}
	if decider == nil {
		return nil, errors.New("decider is required")
	}
	if presenter == nil {
		return nil, errors.New("card presenter is required")
	}
	return &CredentialHandler{wallet: wallet, decider: decider, presenter: presenter, logger: logger}, nil
}

// Register mounts the credential endpoints.
func (h *CredentialHandler) Register(r chi.Router) {
	r.Post("/connections", h.HandleAddConnection)
	r.Post("/credentials/offers", h.HandleReceiveOffer)
	r.Get("/credentials", h.HandleListCards)
	r.Get("/credentials/{id}/card", h.HandleCard)
	r.Post("/credentials/{id}/accept", h.HandleAccept)
	r.Post("/credentials/{id}/decline", h.HandleDecline)
}

type connectionRequest struct {
	ID         string `json:"id"`
	TheirLabel string `json:"their_label"`
}

func (r *connectionRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.TheirLabel = strings.TrimSpace(r.TheirLabel)
}

func (r *connectionRequest) Validate() error {
	if r.ID == "" {
		return errors.New("id is required")
	}
	return nil
}

type offerRequest agent.IncomingOffer

func (r *offerRequest) Normalize() {
	r.ConnectionID = strings.TrimSpace(r.ConnectionID)
	r.ThreadID = strings.TrimSpace(r.ThreadID)
}

func (r *offerRequest) Validate() error {
	if r.ConnectionID == "" {
		return errors.New("connection_id is required")
	}
	if len(r.Attributes) == 0 {
		return errors.New("attributes are required")
	}
	for _, a := range r.Attributes {
		if strings.TrimSpace(a.Name) == "" {
			return errors.New("attribute name is required")
		}
	}
	return nil
}

// HandleAddConnection handles POST /connections.
func (h *CredentialHandler) HandleAddConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[connectionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	conn := models.Connection{ID: req.ID, TheirLabel: req.TheirLabel}
	if err := h.wallet.AddConnection(ctx, conn); err != nil {
		httputil.WriteError(w, toDomain(err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, conn)
}

// HandleReceiveOffer handles POST /credentials/offers.
func (h *CredentialHandler) HandleReceiveOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[offerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	record, err := h.wallet.ReceiveOffer(ctx, agent.IncomingOffer(*req))
	if err != nil {
		h.logger.WarnContext(ctx, "offer intake failed",
			"request_id", requestID,
			"connection_id", req.ConnectionID,
			"error", err,
		)
		httputil.WriteError(w, toDomain(err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

// HandleListCards handles GET /credentials. Cards still resolving report
// loading.
func (h *CredentialHandler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.wallet.GetAll(ctx)
	if err != nil {
		httputil.WriteError(w, toDomain(err))
		return
	}
	cards := make([]card.Card, 0, len(records))
	for _, rec := range records {
		cards = append(cards, h.presenter.Present(ctx, rec))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"credentials": cards})
}

// HandleCard handles GET /credentials/{id}/card and waits for resolution.
func (h *CredentialHandler) HandleCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	record, ok := h.record(w, r)
	if !ok {
		return
	}
	c, err := h.presenter.PresentResolved(ctx, record)
	if err != nil {
		httputil.WriteError(w, toDomain(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// HandleAccept handles POST /credentials/{id}/accept.
func (h *CredentialHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "accept", h.decider.Accept)
}

// HandleDecline handles POST /credentials/{id}/decline.
func (h *CredentialHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "decline", h.decider.Decline)
}

func (h *CredentialHandler) decide(w http.ResponseWriter, r *http.Request, decision string, fn func(context.Context, models.CredentialRecord) (lifecycle.Status, error)) {
	ctx := r.Context()
	record, ok := h.record(w, r)
	if !ok {
		return
	}
	st, err := fn(ctx, record)
	if err != nil {
		h.logger.WarnContext(ctx, "credential decision failed",
			"request_id", requestcontext.RequestID(ctx),
			"credential_id", record.ID,
			"decision", decision,
			"error", err,
		)
		httputil.WriteError(w, toDomain(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

func (h *CredentialHandler) record(w http.ResponseWriter, r *http.Request) (models.CredentialRecord, bool) {
	record, err := h.wallet.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, toDomain(err))
		return models.CredentialRecord{}, false
	}
	return record, true
}
