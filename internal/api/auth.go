package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/halcyonlabs/inneros/internal/platform/errors"
	"github.com/halcyonlabs/inneros/internal/platform/requestctx"
)

// principalClaims are the token claims an API bearer token carries.
type principalClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

// Authenticator verifies bearer tokens and resolves the caller principal.
type Authenticator struct {
	key    []byte
	issuer string
}

// NewAuthenticator creates a bearer-token authenticator over an HMAC key.
func NewAuthenticator(key []byte, issuer string) (*Authenticator, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("signing key is required")
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return nil, fmt.Errorf("issuer is required")
	}
	return &Authenticator{key: key, issuer: issuer}, nil
}

// IssueToken signs a token for the principal. Used by tests and local
// tooling; production tokens come from the hosted identity provider with
// the same shape.
func (a *Authenticator) IssueToken(principal requestctx.Principal) (string, error) {
	if a == nil {
		return "", fmt.Errorf("authenticator is not configured")
	}
	claims := principalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  a.issuer,
			Subject: principal.UserID,
		},
		TenantID: principal.TenantID,
		Role:     string(principal.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token into a principal.
func (a *Authenticator) Verify(token string) (requestctx.Principal, error) {
	if a == nil {
		return requestctx.Principal{}, fmt.Errorf("authenticator is not configured")
	}
	var claims principalClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(a.issuer),
	)
	if err != nil {
		return requestctx.Principal{}, apperrors.Wrap(apperrors.CodeUnauthenticated, "invalid bearer token", err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return requestctx.Principal{}, apperrors.New(apperrors.CodeUnauthenticated, "bearer token subject is required")
	}
	role := requestctx.Role(strings.TrimSpace(claims.Role))
	switch role {
	case requestctx.RoleMember, requestctx.RoleCoach, requestctx.RoleAdmin:
	case "":
		role = requestctx.RoleMember
	default:
		return requestctx.Principal{}, apperrors.New(apperrors.CodeUnauthenticated, "bearer token role is unknown")
	}
	return requestctx.Principal{
		UserID:   claims.Subject,
		TenantID: strings.TrimSpace(claims.TenantID),
		Role:     role,
	}, nil
}

// Middleware authenticates every request and stores the principal in the
// request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			writeError(w, apperrors.New(apperrors.CodeUnauthenticated, "bearer token is required"))
			return
		}
		principal, err := a.Verify(strings.TrimSpace(token))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithPrincipal(r.Context(), principal)))
	})
}
