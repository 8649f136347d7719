// Package events publishes CV case lifecycle events. Consumers (CRM sync,
// notifications) bind to the cv.events topic exchange by routing key.
package events

import (
	"context"
	"time"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
	"github.com/ehstaff/ehstaff-backend/pkg/logger"
	"github.com/ehstaff/ehstaff-backend/pkg/messaging"
)

// Sink is the transport-level publish operation. Satisfied by
// messaging.Publisher; tests substitute a recorder.
type Sink interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// CasePayload is the common event body for case lifecycle events.
type CasePayload struct {
	CaseID     string        `json:"case_id"`
	UserID     string        `json:"user_id"`
	FileName   string        `json:"file_name,omitempty"`
	Status     domain.Status `json:"status"`
	ApprovedBy string        `json:"approved_by,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// CasePublisher emits lifecycle events for CV cases. Publish failures are
// logged and swallowed: event delivery never fails a state transition.
type CasePublisher struct {
	sink   Sink
	logger *logger.Logger
}

// NewCasePublisher creates a lifecycle event publisher.
func NewCasePublisher(sink Sink, log *logger.Logger) *CasePublisher {
	return &CasePublisher{sink: sink, logger: log}
}

// Uploaded emits cv.uploaded after a case is created.
func (p *CasePublisher) Uploaded(ctx context.Context, c *domain.Case) {
	p.emit(ctx, messaging.EventCVUploaded, CasePayload{
		CaseID:     c.ID,
		UserID:     c.UserID,
		FileName:   c.OriginalFileName,
		Status:     c.Status,
		OccurredAt: time.Now().UTC(),
	})
}

// Processed emits cv.processed when structuring completes.
func (p *CasePublisher) Processed(ctx context.Context, caseID, userID string) {
	p.emit(ctx, messaging.EventCVProcessed, CasePayload{
		CaseID:     caseID,
		UserID:     userID,
		Status:     domain.StatusProcessed,
		OccurredAt: time.Now().UTC(),
	})
}

// Approved emits cv.approved after reviewer sign-off.
func (p *CasePublisher) Approved(ctx context.Context, caseID, userID, approvedBy string) {
	p.emit(ctx, messaging.EventCVApproved, CasePayload{
		CaseID:     caseID,
		UserID:     userID,
		Status:     domain.StatusApproved,
		ApprovedBy: approvedBy,
		OccurredAt: time.Now().UTC(),
	})
}

// Rejected emits cv.rejected when processing fails terminally.
func (p *CasePublisher) Rejected(ctx context.Context, caseID, userID, reason string) {
	p.emit(ctx, messaging.EventCVRejected, CasePayload{
		CaseID:     caseID,
		UserID:     userID,
		Status:     domain.StatusRejected,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}

// Deleted emits cv.deleted after a case row is removed.
func (p *CasePublisher) Deleted(ctx context.Context, caseID, userID string) {
	p.emit(ctx, messaging.EventCVDeleted, CasePayload{
		CaseID:     caseID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *CasePublisher) emit(ctx context.Context, eventType string, payload CasePayload) {
	if p == nil || p.sink == nil {
		return
	}
	if err := p.sink.Publish(ctx, eventType, payload); err != nil {
		p.logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("case_id", payload.CaseID).
			Msg("failed to publish case event")
	}
}
