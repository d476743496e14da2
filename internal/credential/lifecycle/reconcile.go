package lifecycle

import (
	"context"
	"time"

	"credwallet/internal/credential/models"
	"credwallet/internal/platform/tracer"
)

// Reconcile aligns the decision for record with the agent's records on the
// same thread: a done record means accepted, otherwise a declined record means
// declined and its saved snapshot is loaded. The agent's state overrides the
// in-memory decision. Failures are logged and the current status returned.
func (c *Controller) Reconcile(ctx context.Context, record models.CredentialRecord) Status {
	ctx, span := c.tracer.Start(ctx, tracer.SpanReconcile,
		tracer.String(tracer.AttrCredentialID, record.ID),
		tracer.String(tracer.AttrThreadID, record.ThreadID),
	)

	start := time.Now()
	all, err := c.agent.GetAll(ctx)
	c.metrics.ObserveAgentCall("get_all", start)
	span.End(err)
	if err != nil {
		c.metrics.IncrementReconciliation("error")
		c.logger.WarnContext(ctx, "failed to reconcile credential state",
			"credential_id", record.ID,
			"error", err,
		)
		return c.Status(record.ID)
	}

	var done, declined *models.CredentialRecord
	for i := range all {
		r := &all[i]
		if !sameThread(record, *r) {
			continue
		}
		switch r.State {
		case models.StateDone:
			if done == nil {
				done = r
			}
		case models.StateDeclined:
			if declined == nil {
				declined = r
			}
		}
	}

	var snapshot *models.AttributeSnapshot
	if done == nil && declined != nil {
		snapshot = c.declinedSnapshot(ctx, *declined, record)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(record.ID)
	e.reconciled = true
	switch {
	case done != nil:
		e.decision = models.DecisionAccepted
		c.metrics.IncrementReconciliation("accepted")
	case declined != nil:
		e.decision = models.DecisionDeclined
		if snapshot != nil {
			e.declined = snapshot
		}
		c.metrics.IncrementReconciliation("declined")
	default:
		c.metrics.IncrementReconciliation("unchanged")
	}
	return e.status(record.ID)
}

// declinedSnapshot reads the snapshot saved on decline. Missing ids fall back
// to the declined record's anoncreds metadata, then to what the caller knows.
// It returns nil when no preview was saved.
func (c *Controller) declinedSnapshot(ctx context.Context, declined, known models.CredentialRecord) *models.AttributeSnapshot {
	var preview []models.Attribute
	ok, err := declined.Metadata.Get(models.MetaOfferPreview, &preview)
	if err != nil {
		c.logger.WarnContext(ctx, "unreadable declined snapshot",
			"credential_id", declined.ID,
			"error", err,
		)
		return nil
	}
	if !ok || preview == nil {
		return nil
	}

	var credDefID, schemaID string
	_, _ = declined.Metadata.Get(models.MetaCredDefID, &credDefID)
	_, _ = declined.Metadata.Get(models.MetaSchemaID, &schemaID)

	ac := declined.AnonCreds()
	if credDefID == "" {
		credDefID = firstNonEmpty(ac.CredentialDefinitionID, known.AnonCreds().CredentialDefinitionID)
	}
	if schemaID == "" {
		schemaID = ac.SchemaID
	}
	return &models.AttributeSnapshot{
		Attributes:             preview,
		CredentialDefinitionID: credDefID,
		SchemaID:               schemaID,
	}
}

// sameThread matches on thread id, or on record id when no thread is known.
func sameThread(a, b models.CredentialRecord) bool {
	if a.ThreadID == "" {
		return a.ID == b.ID
	}
	return a.ThreadID == b.ThreadID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
