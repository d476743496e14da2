package lifecycle

import (
	"context"
	"errors"
	"slices"
	"time"

	"credwallet/internal/credential/models"
	"credwallet/internal/platform/errbus"
	"credwallet/internal/platform/tracer"
	"credwallet/pkg/platform/sentinel"
)

// Decline declines the offer. The guard is the same as Accept's.
//
// Steps run in order and each is best effort:
//  1. fetch the offer format data to recover the preview and ids
//  2. decline the offer with the agent
//  3. persist the recovered snapshot into the record metadata
//  4. send a problem report when the record is linked to a connection
//
// The decision becomes declined as soon as step 2 succeeds. A failure in step
// 2 publishes a 1025 error event and leaves the offer pending; failures in the
// other steps publish the same code but never revert the decision. Steps 3 and
// 4 run even when the entry was forgotten meanwhile, since the agent has
// already declined the offer.
func (c *Controller) Decline(ctx context.Context, record models.CredentialRecord) (Status, error) {
	c.ensureReconciled(ctx, record)
	e, ok := c.begin(record.ID)
	if !ok {
		c.metrics.IncrementDecision("decline", "skipped")
		return c.Status(record.ID), ErrDecisionLocked
	}

	ctx, span := c.tracer.Start(ctx, tracer.SpanDecline,
		tracer.String(tracer.AttrCredentialID, record.ID),
		tracer.String(tracer.AttrThreadID, record.ThreadID),
	)

	snapshot := c.recoverSnapshot(ctx, record)

	start := time.Now()
	_, err := c.agent.DeclineOffer(ctx, record.ID)
	c.metrics.ObserveAgentCall("decline_offer", start)
	if err != nil {
		span.SetAttributes(tracer.String(tracer.AttrStep, StepDeclineOffer))
		span.End(err)

		c.mu.Lock()
		if c.currentLocked(record.ID, e) {
			e.processing = false
		}
		st := e.status(record.ID)
		c.mu.Unlock()

		c.metrics.IncrementDecision("decline", "failure")
		c.logger.ErrorContext(ctx, "failed to decline credential offer",
			"credential_id", record.ID,
			"error", err,
		)
		c.publish(ctx, errbus.KindDeclineOffer, errbus.CodeDeclineOffer, StepDeclineOffer, err)
		return st, err
	}

	c.mu.Lock()
	if c.currentLocked(record.ID, e) {
		if e.decision == models.DecisionNone {
			e.decision = models.DecisionDeclined
		}
		if e.declined == nil {
			e.declined = &snapshot
		}
	}
	claimed := !snapshot.Empty() && c.claimSnapshotLocked(record.ID)
	c.mu.Unlock()

	if claimed {
		c.persistSnapshot(ctx, record.ID, snapshot)
	}
	c.reportToCounterparty(ctx, record)

	c.mu.Lock()
	if c.currentLocked(record.ID, e) {
		e.processing = false
	}
	st := e.status(record.ID)
	c.mu.Unlock()

	span.SetAttributes(tracer.Int(tracer.AttrAttributes, len(snapshot.Attributes)))
	span.End(nil)
	c.metrics.IncrementDecision("decline", "success")
	c.logger.InfoContext(ctx, "credential offer declined",
		"credential_id", record.ID,
		"snapshot_attributes", len(snapshot.Attributes),
	)
	return st, nil
}

// recoverSnapshot is step 1. Ids missing from the format data fall back to the
// ids the agent recorded when the offer arrived.
func (c *Controller) recoverSnapshot(ctx context.Context, record models.CredentialRecord) models.AttributeSnapshot {
	ac := record.AnonCreds()
	snapshot := models.AttributeSnapshot{
		CredentialDefinitionID: ac.CredentialDefinitionID,
		SchemaID:               ac.SchemaID,
	}

	start := time.Now()
	fd, err := c.agent.GetFormatData(ctx, record.ID)
	c.metrics.ObserveAgentCall("get_format_data", start)
	if err != nil {
		c.stepFailed(ctx, record.ID, StepFormatData, err)
		return snapshot
	}

	snapshot.Attributes = slices.Clone(fd.OfferAttributes)
	if id := fd.CredDefID(); id != "" {
		snapshot.CredentialDefinitionID = id
	}
	if id := fd.SchemaID(); id != "" {
		snapshot.SchemaID = id
	}
	return snapshot
}

// persistSnapshot is step 3. A preview already on the record is kept.
func (c *Controller) persistSnapshot(ctx context.Context, id string, snapshot models.AttributeSnapshot) {
	rec, err := c.agent.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		c.logger.WarnContext(ctx, "declined record vanished before snapshot could be saved", "credential_id", id)
		return
	}
	if err != nil {
		c.stepFailed(ctx, id, StepPersist, err)
		return
	}
	if _, ok := rec.Metadata[models.MetaOfferPreview]; ok {
		c.logger.DebugContext(ctx, "declined snapshot already saved", "credential_id", id)
		return
	}

	md := rec.EnsureMetadata()
	if err := errors.Join(
		md.Set(models.MetaOfferPreview, snapshot.Attributes),
		md.Set(models.MetaCredDefID, snapshot.CredentialDefinitionID),
		md.Set(models.MetaSchemaID, snapshot.SchemaID),
	); err != nil {
		c.stepFailed(ctx, id, StepPersist, err)
		return
	}

	start := time.Now()
	err = c.agent.Update(ctx, rec)
	c.metrics.ObserveAgentCall("update", start)
	if err != nil {
		c.stepFailed(ctx, id, StepPersist, err)
	}
}

// reportToCounterparty is step 4.
func (c *Controller) reportToCounterparty(ctx context.Context, record models.CredentialRecord) {
	if record.ConnectionID == "" {
		return
	}
	if _, err := c.agent.FindConnectionByID(ctx, record.ConnectionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return
		}
		c.stepFailed(ctx, record.ID, StepConnection, err)
		return
	}

	ctx, span := c.tracer.Start(ctx, tracer.SpanProblemReport, tracer.String(tracer.AttrCredentialID, record.ID))
	start := time.Now()
	err := c.agent.SendProblemReport(ctx, record.ID, c.declineDescription)
	c.metrics.ObserveAgentCall("send_problem_report", start)
	span.End(err)
	if err != nil {
		c.stepFailed(ctx, record.ID, StepProblemReport, err)
	}
}

func (c *Controller) stepFailed(ctx context.Context, id, step string, err error) {
	c.metrics.IncrementDeclineStepFailure(step)
	c.logger.WarnContext(ctx, "decline step failed",
		"credential_id", id,
		"step", step,
		"error", err,
	)
	c.publish(ctx, errbus.KindDeclineOffer, errbus.CodeDeclineOffer, step, err)
}
