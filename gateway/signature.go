package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayload computes the hex HMAC-SHA256 signature the gateway attaches to
// a completed payment: HMAC(secret, orderId + "|" + paymentId).
func SignPayload(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks that a payment callback genuinely came from the
// gateway. Comparison is constant-time. Malformed input is treated as not
// verified; this never errors.
func VerifySignature(orderID, paymentID, providedSignature, secret string) bool {
	if orderID == "" || paymentID == "" || providedSignature == "" {
		return false
	}
	provided, err := hex.DecodeString(providedSignature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hmac.Equal(mac.Sum(nil), provided)
}
