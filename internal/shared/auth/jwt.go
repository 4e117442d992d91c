package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTTL = 30 * 24 * time.Hour

// Claims represents the identity contained in a JWT.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

var (
	settingsMu sync.RWMutex
	secret     string
	ttl        time.Duration
)

// Configure sets the signing secret and token lifetime. Empty values fall back to JWT_SECRET and defaults.
func Configure(signingSecret string, tokenTTL time.Duration) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	secret = strings.TrimSpace(signingSecret)
	ttl = tokenTTL
}

// SignJWT signs the given subject and profile with HS256 using the configured secret.
func SignJWT(sub, email, name string) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(sub) == "" {
		return "", errors.New("sub is required")
	}

	now := time.Now().UTC()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// VerifyJWT verifies a token and returns its claims.
func VerifyJWT(token string) (Claims, error) {
	key, err := secretKey()
	if err != nil {
		return Claims{}, err
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func tokenTTL() time.Duration {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if ttl <= 0 {
		return defaultTTL
	}
	return ttl
}

func secretKey() ([]byte, error) {
	settingsMu.RLock()
	key := secret
	settingsMu.RUnlock()
	if key == "" {
		key = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}
	env := strings.ToLower(strings.TrimSpace(os.Getenv("ENV")))
	if env == "production" || env == "prod" {
		if key == "" {
			return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
		}
	}
	if key == "" {
		key = "dev-secret"
	}
	return []byte(key), nil
}
