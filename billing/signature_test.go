package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

const testSecret = "test-webhook-secret"

func sign(t *testing.T, payload string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureValid(t *testing.T) {
	sig := sign(t, "pay_123|sub_456")
	if !VerifySignature("pay_123", "sub_456", sig, testSecret) {
		t.Fatalf("valid signature rejected")
	}
}

func TestVerifySignatureByteFlip(t *testing.T) {
	sig := sign(t, "pay_123|sub_456")
	for i := 0; i < len(sig); i++ {
		flipped := []byte(sig)
		if flipped[i] == 'a' {
			flipped[i] = 'b'
		} else {
			flipped[i] = 'a'
		}
		if string(flipped) == sig {
			continue
		}
		if VerifySignature("pay_123", "sub_456", string(flipped), testSecret) {
			t.Fatalf("signature with byte %d flipped accepted", i)
		}
	}
}

func TestVerifySignatureOperandOrderMatters(t *testing.T) {
	// Signature computed over the swapped order must be rejected.
	swapped := sign(t, "sub_456|pay_123")
	if VerifySignature("pay_123", "sub_456", swapped, testSecret) {
		t.Fatalf("swapped operand order accepted")
	}
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	sig := sign(t, "pay_123|sub_456")
	if VerifySignature("pay_123", "sub_456", sig, "other-secret") {
		t.Fatalf("signature accepted under wrong secret")
	}
}

func TestVerifySignatureEmpty(t *testing.T) {
	if VerifySignature("pay_123", "sub_456", "", testSecret) {
		t.Fatalf("empty signature accepted")
	}
}
