package menu

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/render"
	"credwallet/pkg/platform/sentinel"
)

// View is one assembled action menu with its form state. Nodes are rebuilt
// lazily after the form state changes.
type View struct {
	ID         uuid.UUID
	WorkflowID string

	assembler *Assembler
	items     []models.ContentItem
	onAction  ActionFunc
	form      *FormState

	mu       sync.Mutex
	root     *render.Node
	rendered uint64

	logMu sync.Mutex
	log   []Dispatch
	seq   uint64
}

// Dispatch is one action forwarded by the view. Seq starts at 1 and increases
// by one per action.
type Dispatch struct {
	Seq        uint64 `json:"seq"`
	ActionID   string `json:"action_id"`
	WorkflowID string `json:"workflow_id"`
	Invitation string `json:"invitation,omitempty"`
}

// maxDispatchLog bounds the per-view action history.
const maxDispatchLog = 64

// Root returns the current render tree.
func (v *View) Root() *render.Node {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshLocked(context.Background())
	return v.root
}

// Nodes returns one node per rendered item, in payload order.
func (v *View) Nodes() []*render.Node {
	return v.Root().Children
}

// Items returns the payload the view was assembled from.
func (v *View) Items() []models.ContentItem {
	return v.items
}

// FormData returns a copy of the form state.
func (v *View) FormData() map[string]any {
	return v.form.Snapshot()
}

// SetField updates one form value.
func (v *View) SetField(name string, value any) {
	v.form.Set(name, value)
}

// Press triggers the press handler of the node with key.
func (v *View) Press(ctx context.Context, key string) error {
	node := v.find(ctx, key)
	if node == nil || node.OnPress == nil {
		return fmt.Errorf("pressable node %q: %w", key, sentinel.ErrNotFound)
	}
	node.OnPress()
	return nil
}

// Change triggers the change handler of the node with key.
func (v *View) Change(ctx context.Context, key string, value any) error {
	node := v.find(ctx, key)
	if node == nil || node.OnChange == nil {
		return fmt.Errorf("editable node %q: %w", key, sentinel.ErrNotFound)
	}
	node.OnChange(value)
	return nil
}

func (v *View) find(ctx context.Context, key string) *render.Node {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshLocked(ctx)
	return v.root.Find(key)
}

func (v *View) render(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renderLocked(ctx)
}

func (v *View) refreshLocked(ctx context.Context) {
	if v.root == nil || v.form.Version() != v.rendered {
		v.renderLocked(ctx)
	}
}

func (v *View) renderLocked(ctx context.Context) {
	v.rendered = v.form.Version()
	children := make([]*render.Node, 0, len(v.items))
	for i, item := range v.items {
		if item == nil {
			continue
		}
		children = append(children, v.assembler.renderItem(ctx, v, i, item))
	}
	v.root = render.New(render.KindView, v.ID.String(), nil, children...).WithStyle("bubble")
}

// DispatchSeq returns the sequence number of the latest action, 0 if none.
func (v *View) DispatchSeq() uint64 {
	v.logMu.Lock()
	defer v.logMu.Unlock()
	return v.seq
}

// DispatchedSince returns the retained actions with Seq greater than seq.
func (v *View) DispatchedSince(seq uint64) []Dispatch {
	v.logMu.Lock()
	defer v.logMu.Unlock()
	var out []Dispatch
	for _, d := range v.log {
		if d.Seq > seq {
			out = append(out, d)
		}
	}
	return out
}

func (v *View) record(d Dispatch) {
	v.logMu.Lock()
	defer v.logMu.Unlock()
	v.seq++
	d.Seq = v.seq
	v.log = append(v.log, d)
	if len(v.log) > maxDispatchLog {
		v.log = v.log[len(v.log)-maxDispatchLog:]
	}
}

// dispatch applies the invitation rule: only a non-empty string payload is
// forwarded as the third argument.
func (v *View) dispatch(actionID string, payload any) {
	d := Dispatch{ActionID: actionID, WorkflowID: v.WorkflowID}
	if s, ok := payload.(string); ok && s != "" {
		d.Invitation = s
	}
	v.record(d)
	v.assembler.metrics.IncrementActionDispatched(d.Invitation != "")

	if v.onAction == nil {
		return
	}
	if d.Invitation != "" {
		v.onAction(actionID, v.WorkflowID, d.Invitation)
		return
	}
	v.onAction(actionID, v.WorkflowID)
}
