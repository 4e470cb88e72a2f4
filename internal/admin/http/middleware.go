package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/userdesk/userdesk/internal/admin/domain"
	"github.com/userdesk/userdesk/internal/admin/service"
	"github.com/userdesk/userdesk/pkg/httpx"
	"github.com/userdesk/userdesk/pkg/idx"
)

type ctxKey string

const ctxKeyUser ctxKey = "current_user"

// CurrentUser returns the authenticated user the auth middleware resolved
// into the request context, if any.
func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(domain.User)
	return u, ok
}

// pathID validates the {id} path parameter. Identifiers are ULIDs, so a
// malformed value can never name a row and maps straight to not-found.
func pathID(r *http.Request) (string, error) {
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		return "", domain.ErrNotFound
	}
	return id.String(), nil
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer")), true
}

// requireUser resolves the bearer access token into a full user record and
// stores it in the request context. Requests without a valid token get the
// uniform 401 without reaching the handler.
func requireUser(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				httpx.WriteBearerError(w, domain.ErrAuth.Error())
				return
			}

			user, err := auth.ResolveCurrentUser(r.Context(), raw)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// optionalUser is requireUser for endpoints that work unauthenticated (open
// registration). No Authorization header passes through anonymously, but a
// header that fails verification is still rejected rather than silently
// downgraded.
func optionalUser(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.ResolveCurrentUser(r.Context(), raw)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
