package push

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	if pub == "" {
		t.Error("expected non-empty public key")
	}
	if priv == "" {
		t.Error("expected non-empty private key")
	}

	// Public key should be base64url-encoded, 65 bytes uncompressed P-256 point
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	// Private key should be base64url-encoded, 32 bytes P-256 scalar
	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	// Generate again — should be different
	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestPayloadBuilders(t *testing.T) {
	awarded := GoalAwardedPayload(80)
	if awarded.Tag != "goal-awarded" {
		t.Errorf("tag = %q, want %q", awarded.Tag, "goal-awarded")
	}
	if !strings.Contains(awarded.Body, "80") {
		t.Errorf("body %q should mention the points", awarded.Body)
	}

	zero := GoalZeroPayload()
	if zero.Tag != "goal-zero" {
		t.Errorf("tag = %q, want %q", zero.Tag, "goal-zero")
	}

	task := TaskGeneratedPayload("Take out trash")
	if !strings.Contains(task.Body, "Take out trash") {
		t.Errorf("body %q should mention the task title", task.Body)
	}

	pts := PointsAwardedPayload(5, "helping with dinner")
	if !strings.Contains(pts.Body, "helping with dinner") {
		t.Errorf("body %q should include the note", pts.Body)
	}
}
