package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signature computes the gateway's payment signature:
// HMAC-SHA256(secret, "{paymentId}|{subscriptionId}"), hex encoded. Operand
// order matters.
func Signature(paymentID, subscriptionID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(paymentID + "|" + subscriptionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the client-supplied signature against the expected
// value in constant time. This is the sole integrity check that an activation
// request originates from a completed payment.
func VerifySignature(paymentID, subscriptionID, signature, secret string) bool {
	expected := Signature(paymentID, subscriptionID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
