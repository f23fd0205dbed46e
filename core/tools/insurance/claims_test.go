package insurance

import (
	"errors"
	"testing"
)

func TestMemoryClaimStoreAssignsIDsAndTimestamps(t *testing.T) {
	store := NewMemoryClaimStore()

	claim, err := store.Create(t.Context(), Claim{CallerName: "Ada"})
	if err != nil {
		t.Fatalf("expected the claim to be created, got %v", err)
	}

	if claim.ID == "" {
		t.Error("expected an assigned claim id")
	}
	if claim.Status != ClaimStatusOpen {
		t.Errorf("expected a new claim to be open, got %q", claim.Status)
	}
	if claim.CreatedAt.IsZero() || !claim.CreatedAt.Equal(claim.UpdatedAt) {
		t.Errorf("expected matching timestamps, got %v and %v", claim.CreatedAt, claim.UpdatedAt)
	}
}

func TestMemoryClaimStoreUpdatesAuxiliaryFields(t *testing.T) {
	store := NewMemoryClaimStore()

	created, err := store.Create(t.Context(), Claim{CallerName: "Ada"})
	if err != nil {
		t.Fatalf("expected the claim to be created, got %v", err)
	}

	updated, err := store.UpdateField(t.Context(), created.ID, "policy_number", "POL-123")
	if err != nil {
		t.Fatalf("expected the update to succeed, got %v", err)
	}
	if updated.Fields["policy_number"] != "POL-123" {
		t.Errorf("expected the auxiliary field to be stored, got %v", updated.Fields)
	}
}

func TestMemoryClaimStoreRejectsNonEditableFields(t *testing.T) {
	store := NewMemoryClaimStore()

	created, err := store.Create(t.Context(), Claim{CallerName: "Ada"})
	if err != nil {
		t.Fatalf("expected the claim to be created, got %v", err)
	}

	if _, err := store.UpdateField(t.Context(), created.ID, "status", "closed"); err == nil {
		t.Fatal("expected a non-editable field to be rejected")
	}
}

func TestMemoryClaimStoreReportsMissingClaims(t *testing.T) {
	store := NewMemoryClaimStore()

	if _, err := store.Get(t.Context(), "missing"); !errors.Is(err, ErrClaimNotFound) {
		t.Fatalf("expected ErrClaimNotFound, got %v", err)
	}
	if _, err := store.UpdateStatus(t.Context(), "missing", ClaimStatusClosed); !errors.Is(err, ErrClaimNotFound) {
		t.Fatalf("expected ErrClaimNotFound, got %v", err)
	}
}
