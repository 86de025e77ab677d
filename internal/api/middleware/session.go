package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/ports"
)

// snapshotKey is where the resolved session snapshot lives in the echo
// context for the rest of the chain.
const snapshotKey = "session_snapshot"

// tokenKey holds the parsed session token for handlers that need it (logout).
const tokenKey = "session_token"

// SessionCookie is the cookie carrying the session JWT when no Authorization
// header is present.
const SessionCookie = "session_token"

// Session resolves the visitor's session once per request and stores the
// snapshot in the context. It never rejects a request itself: a missing or
// invalid token yields an anonymous snapshot and the guards downstream decide
// what that means for the route.
func Session(resolver ports.SessionResolver, jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c, jwtSecret)
			c.Set(tokenKey, token)

			if token.Anonymous() {
				c.Set(snapshotKey, domain.Snapshot{})
				return next(c)
			}

			snap := resolver.Resolve(c.Request().Context(), token)
			c.Set(snapshotKey, snap)
			return next(c)
		}
	}
}

// Snapshot returns the session snapshot stored by the Session middleware.
// Routes not wrapped by it see an anonymous snapshot.
func Snapshot(c echo.Context) domain.Snapshot {
	snap, _ := c.Get(snapshotKey).(domain.Snapshot)
	return snap
}

// Token returns the parsed session token stored by the Session middleware.
func Token(c echo.Context) ports.SessionToken {
	token, _ := c.Get(tokenKey).(ports.SessionToken)
	return token
}

// extractToken pulls the session JWT from the Authorization header or the
// session cookie and validates its signature. The subject claim keys the
// query cache; the raw token is forwarded upstream.
func extractToken(c echo.Context, jwtSecret string) ports.SessionToken {
	raw := bearerToken(c)
	if raw == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			raw = cookie.Value
		}
	}
	if raw == "" {
		return ports.SessionToken{}
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return ports.SessionToken{}
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return ports.SessionToken{}
	}

	return ports.SessionToken{SessionID: sub, Bearer: raw}
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
