package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const CredentialKey contextKey = "credential"

// BearerCredential extracts the caller credential from the Authorization
// header and stores it in the request context. It never rejects a request:
// a missing or unverifiable credential resolves to the anonymous profile
// further down.
func BearerCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred := bearer(r.Header.Get("Authorization"))
		if cred == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), CredentialKey, cred)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Support both "Bearer <token>" and "<token>" formats
func bearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 6 && strings.EqualFold(header[:6], "bearer") && (len(header) == 6 || header[6] == ' ') {
		header = header[6:]
	}
	return strings.TrimSpace(header)
}

// CredentialFromContext returns the credential stored by BearerCredential.
func CredentialFromContext(ctx context.Context) string {
	if cred, ok := ctx.Value(CredentialKey).(string); ok {
		return cred
	}
	return ""
}
