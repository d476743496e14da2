package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"credwallet/internal/workflow/menu"
	"credwallet/internal/workflow/metrics"
	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/render"
	"credwallet/internal/workflow/schema"
	dErrors "credwallet/pkg/domain-errors"
	"credwallet/pkg/platform/httputil"
	"credwallet/pkg/requestcontext"
)

// MenuHandler assembles workflow action menus and relays interaction with them.
type MenuHandler struct {
	validator *schema.Validator
	assembler *menu.Assembler
	views     *menu.ViewCache
	sink      ActionSink
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewMenuHandler constructs a menu handler. A nil sink logs actions.
func NewMenuHandler(validator *schema.Validator, assembler *menu.Assembler, views *menu.ViewCache, sink ActionSink, metrics *metrics.Metrics, logger *slog.Logger) (*MenuHandler, error) {
	if validator == nil {
		return nil, errors.New("schema validator is required")
	}
	if assembler == nil {
		return nil, errors.New("assembler is required")
	}
	if views == nil {
		return nil, errors.New("view cache is required")
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}
	return &MenuHandler{
		validator: validator,
		assembler: assembler,
		views:     views,
		sink:      sink,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Register mounts the menu endpoints. Node keys may contain slashes, so press
// and change take the key from the wildcard.
func (h *MenuHandler) Register(r chi.Router) {
	r.Post("/workflows/{workflowID}/menus", h.HandleAssemble)
	r.Get("/views/{viewID}", h.HandleGetView)
	r.Delete("/views/{viewID}", h.HandleDeleteView)
	r.Post("/views/{viewID}/press/*", h.HandlePress)
	r.Post("/views/{viewID}/change/*", h.HandleChange)
}

type viewResponse struct {
	ViewID     string         `json:"view_id"`
	WorkflowID string         `json:"workflow_id"`
	Nodes      []*render.Node `json:"nodes"`
	FormData   map[string]any `json:"form_data"`

	// Actions lists what the interaction dispatched, for hosts that read
	// actions from the response.
	Actions []menu.Dispatch `json:"actions,omitempty"`
}

func toViewResponse(v *menu.View, actions []menu.Dispatch) viewResponse {
	nodes := v.Nodes()
	if nodes == nil {
		nodes = []*render.Node{}
	}
	return viewResponse{
		ViewID:     v.ID.String(),
		WorkflowID: v.WorkflowID,
		Nodes:      nodes,
		FormData:   v.FormData(),
		Actions:    actions,
	}
}

type changeRequest struct {
	Value any `json:"value"`
}

// HandleAssemble handles POST /workflows/{workflowID}/menus. The body is the
// action-menu payload array.
func (h *MenuHandler) HandleAssemble(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	workflowID := chi.URLParam(r, "workflowID")
	start := time.Now()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.validator.Validate(payload); err != nil {
		h.metrics.IncrementPayloadRejected("schema")
		h.logger.WarnContext(ctx, "action menu rejected",
			"request_id", requestID,
			"workflow_id", workflowID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	items, err := models.DecodeContent(payload)
	if err != nil {
		h.metrics.IncrementPayloadRejected("decode")
		httputil.WriteError(w, err)
		return
	}

	var view *menu.View
	view = h.assembler.Assemble(ctx, items, workflowID, func(actionID, wfID string, invitation ...string) {
		a := Action{ViewID: view.ID.String(), WorkflowID: wfID, ActionID: actionID}
		if len(invitation) > 0 {
			a.Invitation = invitation[0]
		}
		h.sink.Deliver(context.Background(), a)
	})
	h.views.Put(view)

	h.logger.InfoContext(ctx, "action menu assembled",
		"request_id", requestID,
		"workflow_id", workflowID,
		"view_id", view.ID.String(),
		"items", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toViewResponse(view, nil))
}

// HandleGetView handles GET /views/{viewID}.
func (h *MenuHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Get(chi.URLParam(r, "viewID"))
	if err != nil {
		httputil.WriteError(w, toDomain(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toViewResponse(view, nil))
}

// HandleDeleteView handles DELETE /views/{viewID}.
func (h *MenuHandler) HandleDeleteView(w http.ResponseWriter, r *http.Request) {
	h.views.Delete(chi.URLParam(r, "viewID"))
	w.WriteHeader(http.StatusNoContent)
}

// HandlePress handles POST /views/{viewID}/press/{key}.
func (h *MenuHandler) HandlePress(w http.ResponseWriter, r *http.Request) {
	h.interact(w, r, func(ctx context.Context, v *menu.View, key string) error {
		return v.Press(ctx, key)
	})
}

// HandleChange handles POST /views/{viewID}/change/{key} with body {"value": ...}.
func (h *MenuHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[changeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.interact(w, r, func(ctx context.Context, v *menu.View, key string) error {
		return v.Change(ctx, key, req.Value)
	})
}

func (h *MenuHandler) interact(w http.ResponseWriter, r *http.Request, trigger func(context.Context, *menu.View, string) error) {
	ctx := r.Context()
	key := chi.URLParam(r, "*")

	view, err := h.views.Get(chi.URLParam(r, "viewID"))
	if err != nil {
		httputil.WriteError(w, toDomain(err))
		return
	}

	seq := view.DispatchSeq()
	if err := trigger(ctx, view, key); err != nil {
		h.logger.WarnContext(ctx, "view interaction failed",
			"request_id", requestcontext.RequestID(ctx),
			"view_id", view.ID.String(),
			"key", key,
			"error", err,
		)
		httputil.WriteError(w, toDomain(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toViewResponse(view, view.DispatchedSince(seq)))
}
