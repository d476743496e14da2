package lifecycle

import (
	"context"
	"time"

	"credwallet/internal/credential/models"
	"credwallet/internal/platform/errbus"
	"credwallet/internal/platform/tracer"
)

// Accept asks the agent to accept the offer. Only one accept or decline per
// id runs at a time and none runs after a decision was made; such calls
// return ErrDecisionLocked without contacting the agent. On failure an error
// event with code 1024 is published and the offer stays pending so the holder
// can retry.
func (c *Controller) Accept(ctx context.Context, record models.CredentialRecord) (Status, error) {
	c.ensureReconciled(ctx, record)
	e, ok := c.begin(record.ID)
	if !ok {
		c.metrics.IncrementDecision("accept", "skipped")
		return c.Status(record.ID), ErrDecisionLocked
	}

	ctx, span := c.tracer.Start(ctx, tracer.SpanAccept,
		tracer.String(tracer.AttrCredentialID, record.ID),
		tracer.String(tracer.AttrThreadID, record.ThreadID),
	)
	start := time.Now()
	_, err := c.agent.AcceptOffer(ctx, record.ID)
	c.metrics.ObserveAgentCall("accept_offer", start)
	span.End(err)

	c.mu.Lock()
	if c.currentLocked(record.ID, e) {
		e.processing = false
		if err == nil && e.decision == models.DecisionNone {
			e.decision = models.DecisionAccepted
		}
	}
	st := e.status(record.ID)
	c.mu.Unlock()

	if err != nil {
		c.metrics.IncrementDecision("accept", "failure")
		c.logger.ErrorContext(ctx, "failed to accept credential offer",
			"credential_id", record.ID,
			"error", err,
		)
		c.publish(ctx, errbus.KindAcceptOffer, errbus.CodeAcceptOffer, "", err)
		return st, err
	}

	c.metrics.IncrementDecision("accept", "success")
	c.logger.InfoContext(ctx, "credential offer accepted", "credential_id", record.ID)
	return st, nil
}
