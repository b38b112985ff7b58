package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/narahq/nara-chat/internal/logger"
	"github.com/narahq/nara-chat/internal/utils"
)

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// It inspects the incoming "Authorization" header, extracts the bearer token,
// verifies it via [utils.VerifyProviderToken], and resolves the token's
// subject to a local user row through the user repository. Users are
// provisioned on first sight: a previously unseen subject gets a row created
// transparently. On success the resolved [models.User] is stored in the
// request context under [utils.UserCtxKey] before delegating to the next
// handler.
//
// The middleware rejects requests with HTTP 401 Unauthorized in the following cases:
//   - The "Authorization" header is absent ([ErrEmptyAuthorizationHeader]).
//   - The header value cannot be parsed as a bearer token
//     ([ErrInvalidAuthorizationHeader] or [ErrEmptyToken]).
//   - The token has expired ([utils.ErrTokenIsExpired]).
//   - The token is otherwise invalid or cannot be verified.
//
// A verified token whose user cannot be resolved or provisioned is a storage
// failure and yields HTTP 500.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := getTokenFromAuthHeader(authHeader)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := utils.VerifyProviderToken(tokenString, h.authCfg.JWTSecret, h.authCfg.JWTIssuer)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrTokenIsExpired):
				log.Err(err).Msg("token expired")
				http.Error(w, utils.ErrTokenIsExpired.Error(), http.StatusUnauthorized)
				return
			default:
				log.Err(err).Msg("error occurred during verifying token")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
		}

		ctx := r.Context()
		user, err := h.services.Users.GetOrCreateUser(ctx, claims.Subject, claims.Email)
		if err != nil {
			log.Err(err).Str("subject_id", claims.Subject).Msg("error resolving user for verified token")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// Store the authenticated user in the context so that downstream
		// handlers can retrieve it without re-verifying the token.
		ctx = context.WithValue(ctx, utils.UserCtxKey, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getTokenFromAuthHeader extracts the bearer token string from a raw
// "Authorization" HTTP header value.
//
// The header is expected to follow the standard format:
//
//	Authorization: <scheme> <token>
//
// It returns the following sentinel errors:
//   - [ErrInvalidAuthorizationHeader] — if the header contains fewer than
//     two space-separated parts (i.e. the token is missing entirely).
//   - [ErrEmptyToken] — if the second part exists but is an empty string.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}
