package services

import (
	"context"
	"crypto/rsa"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ExternalIdentity struct {
	Provider      string
	Sub           string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	NonceClaim    string
}

type OIDCVerifier interface {
	VerifyGoogleIDToken(ctx context.Context, idToken string, expectedNonceHash string) (*ExternalIdentity, error)
}

type oidcVerifier struct {
	httpClient     *http.Client
	googleClientID string

	discoveryURL string
	allowedIss   []string

	mu           sync.Mutex
	jwksURI      string
	keys         map[string]*rsa.PublicKey
	lastKeyFetch time.Time
}

func NewOIDCVerifier(httpClient *http.Client, googleClientID string) (OIDCVerifier, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if strings.TrimSpace(googleClientID) == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	return &oidcVerifier{
		httpClient:     httpClient,
		googleClientID: googleClientID,
		discoveryURL:   "https://accounts.google.com/.well-known/openid-configuration",
		allowedIss:     []string{"accounts.google.com", "https://accounts.google.com"},
		keys:           map[string]*rsa.PublicKey{},
	}, nil
}

func (v *oidcVerifier) VerifyGoogleIDToken(ctx context.Context, idToken string, expectedNonceHash string) (*ExternalIdentity, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("id_token is empty")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("missing kid")
		}
		return v.keyForKID(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid id_token: %w", err)
	}
	if tok == nil || !tok.Valid {
		return nil, fmt.Errorf("invalid id_token")
	}

	iss, _ := claims["iss"].(string)
	if !contains(v.allowedIss, iss) {
		return nil, fmt.Errorf("issuer mismatch: %q", iss)
	}
	if !audContains(claims["aud"], v.googleClientID) {
		return nil, fmt.Errorf("audience mismatch")
	}
	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return nil, fmt.Errorf("missing sub")
	}

	out := &ExternalIdentity{
		Provider: "google",
		Sub:      sub,
	}
	out.Email, _ = claims["email"].(string)
	out.EmailVerified, _ = claims["email_verified"].(bool)
	out.FirstName, _ = claims["given_name"].(string)
	out.LastName, _ = claims["family_name"].(string)
	out.NonceClaim, _ = claims["nonce"].(string)

	if err := verifyNonceAgainstHash(out.NonceClaim, expectedNonceHash); err != nil {
		return nil, err
	}
	return out, nil
}

// Google's nonce claim carries the raw nonce; we store only its hash.
func verifyNonceAgainstHash(nonceClaim, expectedNonceHash string) error {
	if strings.TrimSpace(expectedNonceHash) == "" {
		return fmt.Errorf("missing expected nonce hash")
	}
	if strings.TrimSpace(nonceClaim) == "" {
		return fmt.Errorf("missing nonce claim in id_token")
	}
	if constantTimeEq(HashNonce(nonceClaim), expectedNonceHash) {
		return nil
	}
	return fmt.Errorf("nonce mismatch")
}

func constantTimeEq(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func contains(vals []string, v string) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}

func audContains(aud any, want string) bool {
	switch x := aud.(type) {
	case string:
		return x == want
	case []any:
		for _, item := range x {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// ----- JWKS -----

type oidcDiscovery struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

type jwksDocument struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (v *oidcVerifier) keyForKID(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	// Rotation: refetch on unknown kid, at most once a minute.
	if time.Since(v.lastKeyFetch) < time.Minute {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	if err := v.refreshKeysLocked(ctx); err != nil {
		return nil, err
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return key, nil
}

func (v *oidcVerifier) refreshKeysLocked(ctx context.Context) error {
	if v.jwksURI == "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.discoveryURL, nil)
		if err != nil {
			return err
		}
		res, err := v.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("oidc discovery: %w", err)
		}
		defer res.Body.Close()
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return fmt.Errorf("oidc discovery failed: %s", res.Status)
		}
		var d oidcDiscovery
		if err := json.NewDecoder(res.Body).Decode(&d); err != nil {
			return err
		}
		if strings.TrimSpace(d.JWKSURI) == "" {
			return fmt.Errorf("oidc discovery missing jwks_uri")
		}
		v.jwksURI = d.JWKSURI
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURI, nil)
	if err != nil {
		return err
	}
	res, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwks fetch: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("jwks fetch failed: %s", res.Status)
	}
	var doc jwksDocument
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return err
	}

	keys := map[string]*rsa.PublicKey{}
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaKeyFromJWK(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return fmt.Errorf("jwks document has no usable RSA keys")
	}
	v.keys = keys
	v.lastKeyFetch = time.Now()
	return nil
}

func rsaKeyFromJWK(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("bad modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("bad exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}
