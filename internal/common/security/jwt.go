package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs and verifies the simulator's HS256 bearer tokens.
type Issuer struct {
	auth *jwtauth.JWTAuth
	exp  time.Duration
	now  func() time.Time
}

func NewIssuer(key []byte, exp time.Duration) *Issuer {
	return &Issuer{
		auth: jwtauth.New("HS256", key, nil),
		exp:  exp,
		now:  time.Now,
	}
}

// Auth exposes the underlying jwtauth instance for the chi Verifier middleware.
func (i *Issuer) Auth() *jwtauth.JWTAuth { return i.auth }

func (i *Issuer) GenerateToken(userID int64, role string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"user_id": strconv.FormatInt(userID, 10),
		"role":    role,
		"exp":     now.Add(i.exp).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := i.auth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, can be used in middleware or services
func GetUserIDFromClaims(claims jwt.MapClaims) (int64, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return 0, errors.New("user_id claim is missing or not a string")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("user_id claim is not numeric")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

// TokenExpiry reads the exp claim without verifying the signature. The client
// never holds the signing key; it only needs to know when to stop sending a
// token. ok is false for opaque or exp-less tokens.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// TokenExpired reports whether token carries an exp claim at or before now.
func TokenExpired(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	return ok && !now.Before(exp)
}
