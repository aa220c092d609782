package server

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var InvalidTokenErr = errors.New("Could not validate credentials")

// TokenManager issues and verifies the HS256 bearer tokens the backend
// uses: sub carries the username, exp the expiry.
type TokenManager struct {
	secret   []byte
	lifetime time.Duration
	nowTime  func() time.Time
}

func NewTokenManager(secret string, lifetime time.Duration) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		lifetime: lifetime,
		nowTime:  time.Now,
	}
}

// Issue returns a signed token for username along with its lifetime in
// seconds, the shape of the login response's expires_in field.
func (tm *TokenManager) Issue(username string) (string, int, error) {
	now := tm.nowTime()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(tm.lifetime).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", 0, errors.Wrap(err, "[TokenManager.Issue] sign token")
	}
	return signed, int(tm.lifetime.Seconds()), nil
}

// Verify validates the signature and expiry and returns the subject.
func (tm *TokenManager) Verify(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return tm.nowTime() }))
	if err != nil || !parsed.Valid {
		return "", InvalidTokenErr
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", InvalidTokenErr
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", InvalidTokenErr
	}
	return sub, nil
}
