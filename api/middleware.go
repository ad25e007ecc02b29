package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// authCookieName is the cookie browser clients carry the token in. API
// clients send the same token as a bearer header.
const authCookieName = "authToken"

const identityContextKey = "taskboard.identity"

// Identity is the authenticated caller attached to the request context by
// AuthMiddleware. Handlers must treat it as the only source of the caller's
// user ID.
type Identity struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

func setIdentity(c echo.Context, id Identity) {
	c.Set(identityContextKey, id)
}

func currentIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityContextKey).(Identity)
	return id, ok
}

// AuthMiddleware authenticates the request before the handler runs. A missing
// token yields 401, a bad or revoked one 403; handlers behind it always see a
// populated identity.
func AuthMiddleware(auth Authenticator, sessions Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{Message: msgLoginFirst})
			}
			userID, expiresAt, err := auth.VerifyToken(token)
			if err != nil {
				return c.JSON(http.StatusForbidden, errorResponse{Message: msgInvalidToken})
			}
			if sessions != nil {
				revoked, err := sessions.IsRevoked(c.Request().Context(), token)
				if err != nil {
					c.Logger().Error(err)
					return c.JSON(http.StatusInternalServerError, serverError(err))
				}
				if revoked {
					return c.JSON(http.StatusForbidden, errorResponse{Message: msgInvalidToken})
				}
			}
			setIdentity(c, Identity{UserID: userID, Token: token, ExpiresAt: expiresAt})
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); token != "" {
		return token
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	token := strings.TrimSpace(header[len(prefix):])
	if strings.Count(token, ".") != 2 {
		return ""
	}
	return token
}
