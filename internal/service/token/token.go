package token

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "accessToken"
	sessionTTL = 7 * 24 * time.Hour
)

type Service struct {
	Secret []byte
}

func CreateCookie(name string, value string, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Service) Sign(userID uint) (string, time.Time, error) {
	exp := time.Now().Add(sessionTTL)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *Service) Parse(raw string) (uint, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !t.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("cannot parse claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid subject claim")
	}
	return uint(sub), nil
}

// StartSession signs a session token for userID and sets the auth cookie.
func (s *Service) StartSession(c echo.Context, userID uint) error {
	signed, exp, err := s.Sign(userID)
	if err != nil {
		return err
	}
	c.SetCookie(CreateCookie(CookieName, signed, "/", exp))
	return nil
}

// CurrentUser resolves the session cookie to a user id. The second return is
// false for missing, expired or tampered tokens.
func (s *Service) CurrentUser(c echo.Context) (uint, bool) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	id, err := s.Parse(cookie.Value)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *Service) EndSession(c echo.Context) {
	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie(CookieName, "", "/", expired))
}
