package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/bryanwahyu/ip-inspection/internal/domain/profile"
)

const leeway = time.Minute

// Verifier checks HS256 session tokens issued by the login flow.
type Verifier struct {
	key []byte
	now func() time.Time
}

func NewVerifier(signingKey string) *Verifier {
	return &Verifier{key: []byte(signingKey), now: time.Now}
}

type sessionClaims struct {
	jwt.Claims
	OpenID string `json:"feishu_open_id,omitempty"`
}

// Verify returns the provider subject carried by credential: the
// feishu_open_id claim, else the standard sub claim.
func (v *Verifier) Verify(_ context.Context, credential string) (string, error) {
	claims, err := v.claims(strings.TrimSpace(credential))
	if err != nil {
		return "", fmt.Errorf("%w: %v", profile.ErrInvalidCredential, err)
	}
	if err := claims.ValidateWithLeeway(jwt.Expected{Time: v.now()}, leeway); err != nil {
		return "", fmt.Errorf("%w: %v", profile.ErrInvalidCredential, err)
	}

	subject := claims.OpenID
	if subject == "" {
		subject = claims.Subject
	}
	if subject == "" {
		return "", fmt.Errorf("%w: no subject claim", profile.ErrInvalidCredential)
	}
	return subject, nil
}

func (v *Verifier) claims(credential string) (sessionClaims, error) {
	claims, err := v.joseClaims(credential)
	if err == nil {
		return claims, nil
	}
	if c, lerr := v.stdBase64Claims(credential); lerr == nil {
		return c, nil
	}
	return claims, err
}

func (v *Verifier) joseClaims(credential string) (sessionClaims, error) {
	var claims sessionClaims
	tok, err := jwt.ParseSigned(credential, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return claims, err
	}
	if err := tok.Claims(v.key, &claims); err != nil {
		return claims, err
	}
	return claims, nil
}

// stdBase64Claims accepts the login flow's session tokens, whose three
// segments are padded standard base64 rather than base64url. The HMAC
// covers the encoded "header.payload" text.
func (v *Verifier) stdBase64Claims(credential string) (sessionClaims, error) {
	var claims sessionClaims
	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		return claims, errors.New("token must have three segments")
	}

	rawHeader, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return claims, fmt.Errorf("decode header: %w", err)
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(rawHeader, &header); err != nil {
		return claims, fmt.Errorf("parse header: %w", err)
	}
	if header.Alg != string(jose.HS256) {
		return claims, fmt.Errorf("unexpected alg %q", header.Alg)
	}

	sig, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return claims, fmt.Errorf("decode signature: %w", err)
	}
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return claims, errors.New("signature mismatch")
	}

	payload, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return claims, fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, fmt.Errorf("parse payload: %w", err)
	}
	return claims, nil
}
