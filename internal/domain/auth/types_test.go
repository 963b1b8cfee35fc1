package auth

import (
	"testing"
	"time"
)

func TestPrincipal_Expired(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	if (Principal{Method: MethodAPIKey}).Expired(now) {
		t.Fatalf("api key principals never expire")
	}
	if !(Principal{ExpiresAt: now}).Expired(now) {
		t.Fatalf("expected expiry at the boundary")
	}
	if (Principal{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Fatalf("did not expect expiry")
	}
}
