package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

const trackingScope = "order"

func base64UrlEncode(input []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(input), "=")
}

func base64UrlDecode(input string) ([]byte, error) {
	padded := input
	if m := len(input) % 4; m != 0 {
		padded += strings.Repeat("=", 4-m)
	}
	return base64.URLEncoding.DecodeString(padded)
}

// CreateOrderTrackingToken returns the token a customer presents to look up
// their order without an account.
func CreateOrderTrackingToken(secret, orderNumber string) string {
	payloadB64 := base64UrlEncode([]byte(trackingScope + ":" + strings.ToUpper(orderNumber)))
	return payloadB64 + "." + base64UrlEncode(trackingMAC(secret, payloadB64))
}

func VerifyOrderTrackingToken(secret, token, orderNumber string) bool {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 2 {
		return false
	}
	payloadB64, sigB64 := parts[0], parts[1]

	actual, err := base64UrlDecode(sigB64)
	if err != nil {
		return false
	}
	if !hmac.Equal(actual, trackingMAC(secret, payloadB64)) {
		return false
	}

	payloadRaw, err := base64UrlDecode(payloadB64)
	if err != nil {
		return false
	}
	return string(payloadRaw) == trackingScope+":"+strings.ToUpper(orderNumber)
}

func trackingMAC(secret, payloadB64 string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payloadB64))
	return mac.Sum(nil)
}
