package auth

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGate_MissingToken(t *testing.T) {
	for _, strict := range []bool{true, false} {
		g := NewGate(testSecret, strict)
		d := g.Authenticate("")
		if d.CanContinue {
			t.Errorf("strict=%v: empty token: CanContinue = true, want false", strict)
		}
		if d.Status != StatusInvalid {
			t.Errorf("strict=%v: empty token: Status = %q, want %q", strict, d.Status, StatusInvalid)
		}
	}
}

func TestGate_ValidToken(t *testing.T) {
	token, err := GenerateToken(testSecret, 7, "sess-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	g := NewGate(testSecret, true)
	d := g.Authenticate(token)
	if !d.CanContinue {
		t.Fatalf("valid token: CanContinue = false (status %q), want true", d.Status)
	}
	if d.Claims == nil || d.Claims.UserID != 7 {
		t.Errorf("valid token: Claims = %+v, want UserID 7", d.Claims)
	}
	if d.Claims.SessionID != "sess-1" {
		t.Errorf("valid token: SessionID = %q, want %q", d.Claims.SessionID, "sess-1")
	}
}

func TestGate_ExpiredToken(t *testing.T) {
	token, err := GenerateToken(testSecret, 7, "", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// expiry wins over the strict/permissive split
	for _, strict := range []bool{true, false} {
		g := NewGate(testSecret, strict)
		d := g.Authenticate(token)
		if d.CanContinue {
			t.Errorf("strict=%v: expired token: CanContinue = true, want false", strict)
		}
		if d.Status != StatusExpired {
			t.Errorf("strict=%v: expired token: Status = %q, want %q", strict, d.Status, StatusExpired)
		}
	}
}

func TestGate_BadSignature(t *testing.T) {
	token, err := GenerateToken("other-secret", 7, "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	strictGate := NewGate(testSecret, true)
	d := strictGate.Authenticate(token)
	if d.CanContinue || d.Status != StatusInvalid {
		t.Errorf("strict: bad signature: got %+v, want deny invalid", d)
	}

	looseGate := NewGate(testSecret, false)
	d = looseGate.Authenticate(token)
	if !d.CanContinue {
		t.Errorf("permissive: bad signature: CanContinue = false, want true")
	}
}

func TestGate_NoSecretConfigured(t *testing.T) {
	token, err := GenerateToken("whatever", 7, "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	strictGate := NewGate("", true)
	if d := strictGate.Authenticate(token); d.CanContinue || d.Status != StatusInvalid {
		t.Errorf("strict without secret: got %+v, want deny invalid", d)
	}

	looseGate := NewGate("", false)
	if d := looseGate.Authenticate(token); !d.CanContinue {
		t.Errorf("permissive without secret: CanContinue = false, want true")
	}
}

func TestGate_GarbageToken(t *testing.T) {
	strictGate := NewGate(testSecret, true)
	if d := strictGate.Authenticate("not.a.jwt"); d.CanContinue || d.Status != StatusInvalid {
		t.Errorf("strict: garbage token: got %+v, want deny invalid", d)
	}
}
