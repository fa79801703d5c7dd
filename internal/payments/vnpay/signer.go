package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
)

// Canonicalize produces the string the gateway signs: parameters sorted by
// key byte order, URL-encoded, joined with '&'. Empty values and the hash
// parameters themselves are excluded.
func Canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" || k == paramSecureHash || k == paramSecureHashType {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

// Sign computes the lowercase hex HMAC-SHA512 of data under secret.
func Sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the signature over params and compares it with
// the provided hash. Comparison is constant-time and case-insensitive since
// the gateway is inconsistent about hex casing.
func VerifySignature(secret string, params map[string]string, provided string) bool {
	if provided == "" {
		return false
	}
	want := Sign(secret, Canonicalize(params))
	return hmac.Equal([]byte(want), []byte(strings.ToLower(provided)))
}
