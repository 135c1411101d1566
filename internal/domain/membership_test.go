package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

const testUserID = "112233445566778899"

func TestNewMembership(t *testing.T) {
	t.Parallel()
	channelID := uuid.New()
	expires := time.Now().Add(24 * time.Hour)

	m, err := NewMembership(testUserID, channelID, MethodScreenshot, &expires)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if m.Status != MembershipStatusActive {
		t.Errorf("Expected status %s, got %s", MembershipStatusActive, m.Status)
	}
	if m.VerifiedAt.IsZero() {
		t.Error("Expected non-zero VerifiedAt time")
	}

	// OAuth memberships do not need an expiry
	if _, err := NewMembership(testUserID, channelID, MethodOAuth, nil); err != nil {
		t.Errorf("Expected no error for oauth membership, got %v", err)
	}

	if _, err := NewMembership(testUserID, channelID, MethodScreenshot, nil); !errors.Is(err, ErrMissingExpiry) {
		t.Errorf("Expected error %v, got %v", ErrMissingExpiry, err)
	}

	if _, err := NewMembership("not-a-snowflake", channelID, MethodOAuth, nil); !errors.Is(err, ErrInvalidSnowflake) {
		t.Errorf("Expected error %v, got %v", ErrInvalidSnowflake, err)
	}

	if _, err := NewMembership(testUserID, uuid.Nil, MethodOAuth, nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Expected error %v, got %v", ErrInvalidID, err)
	}

	if _, err := NewMembership(testUserID, channelID, "carrier-pigeon", nil); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("Expected error %v, got %v", ErrInvalidMethod, err)
	}
}

func TestMembershipExpired(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	testCases := []struct {
		name      string
		expiresAt *time.Time
		expected  bool
	}{
		{"no expiry", nil, false},
		{"past expiry", &past, true},
		{"expiry now", &now, true},
		{"future expiry", &future, false},
	}

	for _, tc := range testCases {
		m := Membership{ExpiresAt: tc.expiresAt}
		if got := m.Expired(now); got != tc.expected {
			t.Errorf("%s: expected Expired() = %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestMembershipValidateStatus(t *testing.T) {
	t.Parallel()
	m, err := NewMembership(testUserID, uuid.New(), MethodOAuth, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	m.Status = MembershipStatusRevoked
	if err := m.Validate(); err != nil {
		t.Errorf("Expected revoked membership to be valid, got %v", err)
	}
	if m.Active() {
		t.Error("Expected revoked membership to be inactive")
	}

	m.Status = "lapsed"
	if err := m.Validate(); !errors.Is(err, ErrInvalidMembershipStatus) {
		t.Errorf("Expected error %v, got %v", ErrInvalidMembershipStatus, err)
	}
}
