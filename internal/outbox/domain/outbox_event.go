// Package domain defines the transactional outbox entities for principal lifecycle events.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/authgate/internal/errors"
	principalDomain "github.com/allisson/authgate/internal/principal/domain"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// EventTypePrincipalCreated is emitted when registration commits.
const EventTypePrincipalCreated = "principal.created"

// OutboxEvent represents an event in the transactional outbox pattern.
// Events are written in the same transaction as the state change they
// announce and relayed to the broker by a background worker.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PrincipalCreatedPayload is the JSON body of a principal.created event.
type PrincipalCreatedPayload struct {
	PrincipalID string `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	Module      string `json:"module"`
	Plan        string `json:"plan"`
	Action      string `json:"action"`
}

// NewPrincipalCreatedEvent builds a pending outbox event announcing a freshly
// registered principal.
func NewPrincipalCreatedEvent(principal *principalDomain.Principal, plan principalDomain.Plan) (*OutboxEvent, error) {
	payload := PrincipalCreatedPayload{
		PrincipalID: principal.ID.String(),
		Username:    principal.Username,
		Role:        string(principal.Role),
		Module:      string(principal.Module),
		Plan:        string(plan),
		Action:      "CREATE",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal event payload")
	}

	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: EventTypePrincipalCreated,
		Payload:   string(body),
		Status:    OutboxEventStatusPending,
	}, nil
}
