package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

// DeviceCookie holds the signed device token.
const DeviceCookie = "ygodle_device"

const deviceTTL = 365 * 24 * time.Hour

type ctxDeviceKey struct{}

// withDevice attaches the caller's device id to the request context,
// issuing a new id (and cookie) when the request carries no valid token.
func (s *Server) withDevice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.parseDevice(bearerOrCookie(r))
		if !ok {
			id = uuid.NewString()
			tok, exp, err := s.signDevice(id)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("sign device token")
				writeError(w, http.StatusInternalServerError, "sign_failed")
				return
			}
			s.setDeviceCookie(w, tok, exp)
			w.Header().Set("X-Device-Token", tok)
			hlog.FromRequest(r).Debug().Str("device", id).Msg("new device")
		}
		ctx := context.WithValue(r.Context(), ctxDeviceKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// deviceID returns the id set by withDevice.
func deviceID(r *http.Request) string {
	id, _ := r.Context().Value(ctxDeviceKey{}).(string)
	return id
}

// signDevice creates an HS256 JWT whose subject is the device id.
func (s *Server) signDevice(id string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(deviceTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseDevice validates a device token and returns its subject.
func (s *Server) parseDevice(tok string) (string, bool) {
	if tok == "" {
		return "", false
	}
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", false
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", false
	}
	return claims.Subject, true
}

// setDeviceCookie writes the device cookie with appropriate security attributes.
func (s *Server) setDeviceCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.opts.Production
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from the Authorization header or the device cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(DeviceCookie); err == nil {
		return c.Value
	}
	return ""
}
