package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"taskboard-api/domain"
)

type userResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

type usersResponse struct {
	Message string           `json:"message"`
	Users   []domain.UserRef `json:"users"`
}

type loginResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
	Token   string      `json:"token"`
}

func signup(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req signupRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if errs := validateSignup(req); len(errs) > 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Errors: errs})
		}

		email := strings.TrimSpace(req.Email)
		if _, err := store.FetchUserByEmail(ctx, email); err == nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgUserExists})
		} else if !isNotFound(err) {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}

		user, err := store.CreateUser(ctx, domain.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
		})
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		return c.JSON(http.StatusCreated, userResponse{Message: msgUserCreated, User: user})
	}
}

func login(store Storage, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req loginRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if errs := validateLogin(req); len(errs) > 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Errors: errs})
		}

		user, err := store.FetchUserByEmail(ctx, strings.TrimSpace(req.Email))
		if err != nil {
			if isNotFound(err) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: msgUserNotFound})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidPassword})
		}

		token, expiresAt, err := auth.IssueToken(user.ID)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		c.SetCookie(&http.Cookie{
			Name:     authCookieName,
			Value:    token,
			Expires:  expiresAt,
			HttpOnly: true,
			Path:     "/",
		})
		return c.JSON(http.StatusOK, loginResponse{Message: msgLoginSuccess, User: user, Token: token})
	}
}

// logout revokes the presented token for its remaining lifetime and clears
// the cookie.
func logout(sessions Sessions) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, _ := currentIdentity(c)

		if sessions != nil {
			if err := sessions.Revoke(c.Request().Context(), identity.Token, time.Until(identity.ExpiresAt)); err != nil {
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, serverError(err))
			}
		}
		clearAuthCookie(c)
		return c.JSON(http.StatusOK, errorResponse{Message: msgLogoutSuccess})
	}
}

func getUser(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := store.FetchUser(c.Request().Context(), c.Param("id"))
		if err != nil {
			if isNotFound(err) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: msgUserNotFound})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		return c.JSON(http.StatusOK, userResponse{Message: msgUserFound, User: user})
	}
}

type editUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}

// editUser updates the caller's own profile. A password change requires the
// current password; any change invalidates the cookie so clients re-login.
func editUser(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		identity, _ := currentIdentity(c)

		var req editUserRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		user, err := store.FetchUser(ctx, identity.UserID)
		if err != nil {
			if isNotFound(err) {
				return c.JSON(http.StatusNotFound, errorResponse{Error: msgUserNotFound})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}

		if req.Password != "" && req.NewPassword != "" {
			if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidPassword})
			}
			hash, hashErr := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
			if hashErr != nil {
				c.Logger().Error(hashErr)
				return c.JSON(http.StatusInternalServerError, serverError(hashErr))
			}
			user.PasswordHash = string(hash)
		}
		if req.Name != "" {
			user.Name = strings.TrimSpace(req.Name)
		}
		if req.Email != "" {
			user.Email = strings.TrimSpace(req.Email)
		}

		saved, err := store.SaveUser(ctx, user)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		clearAuthCookie(c)
		return c.JSON(http.StatusOK, userResponse{Message: msgUserUpdated, User: saved})
	}
}

func listUsers(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := store.FetchUsers(c.Request().Context())
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		refs := make([]domain.UserRef, 0, len(users))
		for _, u := range users {
			refs = append(refs, domain.UserRef{ID: u.ID, Email: u.Email})
		}
		return c.JSON(http.StatusOK, usersResponse{Message: msgUsersRetrieved, Users: refs})
	}
}

type checkAuthResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

func checkAuth() echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, _ := currentIdentity(c)
		return c.JSON(http.StatusOK, checkAuthResponse{Message: msgAuthenticated, UserID: identity.UserID})
	}
}

func clearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}
