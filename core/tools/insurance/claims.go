package insurance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ClaimStatus tracks where a claim is in its lifecycle.
type ClaimStatus string

const (
	ClaimStatusOpen        ClaimStatus = "open"
	ClaimStatusTransferred ClaimStatus = "transferred"
	ClaimStatusClosed      ClaimStatus = "closed"
)

// Claim is an insurance claim opened during a call.
type Claim struct {
	ID           string            `json:"id"`
	CallerName   string            `json:"caller_name"`
	IncidentDate string            `json:"incident_date"`
	Description  string            `json:"description"`
	Status       ClaimStatus       `json:"status"`
	Fields       map[string]string `json:"fields,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ErrClaimNotFound reports a claim id with no stored claim.
var ErrClaimNotFound = errors.New("claim not found")

// EditableFields lists the claim fields the model may update after a
// claim is opened. Anything else requires a human agent.
var EditableFields = []string{
	"caller_name",
	"incident_date",
	"description",
	"policy_number",
	"vehicle",
	"contact_phone",
}

// ClaimStore persists claims across a call.
type ClaimStore interface {
	Create(ctx context.Context, claim Claim) (Claim, error)
	UpdateField(ctx context.Context, id, field, value string) (Claim, error)
	UpdateStatus(ctx context.Context, id string, status ClaimStatus) (Claim, error)
	Get(ctx context.Context, id string) (Claim, error)
}

// MemoryClaimStore is an in-process [ClaimStore].
type MemoryClaimStore struct {
	mu     sync.RWMutex
	claims map[string]Claim
	now    func() time.Time
}

// NewMemoryClaimStore constructs an empty store.
func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{
		claims: map[string]Claim{},
		now:    time.Now,
	}
}

func (s *MemoryClaimStore) Create(ctx context.Context, claim Claim) (Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim.ID = uuid.NewString()
	claim.Status = ClaimStatusOpen
	claim.CreatedAt = s.now()
	claim.UpdatedAt = claim.CreatedAt
	s.claims[claim.ID] = claim
	return claim, nil
}

func (s *MemoryClaimStore) UpdateField(ctx context.Context, id, field, value string) (Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim, ok := s.claims[id]
	if !ok {
		return Claim{}, fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}

	switch field {
	case "caller_name":
		claim.CallerName = value
	case "incident_date":
		claim.IncidentDate = value
	case "description":
		claim.Description = value
	default:
		if !slices.Contains(EditableFields, field) {
			return Claim{}, fmt.Errorf("field %q is not editable", field)
		}
		if claim.Fields == nil {
			claim.Fields = map[string]string{}
		}
		claim.Fields[field] = value
	}

	claim.UpdatedAt = s.now()
	s.claims[id] = claim
	return claim, nil
}

func (s *MemoryClaimStore) UpdateStatus(ctx context.Context, id string, status ClaimStatus) (Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claim, ok := s.claims[id]
	if !ok {
		return Claim{}, fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}

	claim.Status = status
	claim.UpdatedAt = s.now()
	s.claims[id] = claim
	return claim, nil
}

func (s *MemoryClaimStore) Get(ctx context.Context, id string) (Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claim, ok := s.claims[id]
	if !ok {
		return Claim{}, fmt.Errorf("%w: %s", ErrClaimNotFound, id)
	}
	return claim, nil
}
