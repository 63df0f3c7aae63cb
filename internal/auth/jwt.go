package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shopadmin/internal/entity"
)

// Token kinds issued by the manager. Session tokens back interactive logins,
// API tokens are long-lived credentials for integrations and CLI tooling.
const (
	TokenKindSession = "session"
	TokenKindAPI     = "api"
)

var (
	// ErrTokenExpired indicates the token was well-formed but past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed tokens and signature mismatches.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims represents JWT claims for authenticated requests.
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Kind     string `json:"kind,omitempty"`
	jwt.RegisteredClaims
}

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret        []byte
	issuer        string
	sessionExpiry time.Duration
	apiExpiry     time.Duration
}

// NewManager creates a new JWT manager.
func NewManager(secret, issuer string, sessionExpiry, apiExpiry time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if sessionExpiry <= 0 {
		sessionExpiry = time.Hour * 24
	}
	if apiExpiry <= 0 {
		apiExpiry = time.Hour * 24 * 30
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "shopadmin"
	}
	return &Manager{
		secret:        []byte(trimmed),
		issuer:        issuer,
		sessionExpiry: sessionExpiry,
		apiExpiry:     apiExpiry,
	}, nil
}

// GenerateSessionToken issues a signed 24h session JWT for the provided user.
// The claims are a snapshot at issuance time; the auth middleware re-reads the
// live user record so deactivation takes effect without a revocation list.
func (m *Manager) GenerateSessionToken(user *entity.DbUser) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if user == nil || user.ID == 0 {
		return "", time.Time{}, errors.New("invalid user for token generation")
	}
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Kind:     TokenKindSession,
	}
	return m.sign(claims, m.sessionExpiry)
}

// GenerateAPIToken issues a long-lived token carrying only the user id.
func (m *Manager) GenerateAPIToken(userID uint) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if userID == 0 {
		return "", time.Time{}, errors.New("invalid user for token generation")
	}
	claims := Claims{
		UserID: userID,
		Kind:   TokenKindAPI,
	}
	return m.sign(claims, m.apiExpiry)
}

func (m *Manager) sign(claims Claims, expiry time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(expiry)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", claims.UserID),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates the token and returns claims. Expired tokens are
// reported as ErrTokenExpired, everything else as ErrTokenInvalid.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
