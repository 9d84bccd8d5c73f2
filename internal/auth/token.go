package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Cookie values carry the session token in signed form, token + "." +
// base64url(HMAC-SHA256(secret, token)). A client can read its token but
// cannot mint or alter one without the secret.

// Sign returns the signed cookie form of a session token.
func Sign(token string, secret []byte) string {
	return token + "." + signature(token, secret)
}

// Verify checks a signed cookie value and returns the embedded token.
// Tampered or malformed values come back as not ok.
func Verify(value string, secret []byte) (string, bool) {
	i := strings.LastIndex(value, ".")
	if i <= 0 {
		return "", false
	}
	token, sig := value[:i], value[i+1:]
	if !hmac.Equal([]byte(sig), []byte(signature(token, secret))) {
		return "", false
	}
	return token, true
}

func signature(token string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
