package http

import (
	"context"
	"net/http"

	"github.com/secmon-lab/iract/pkg/domain/model"
	"github.com/secmon-lab/iract/pkg/usecase"
	"github.com/secmon-lab/iract/pkg/utils/logging"
)

// SessionCookieName holds the browser session ID
const SessionCookieName = "iract_session"

type ctxSessionKey struct{}

func withSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey{}, sess)
}

func sessionFrom(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(ctxSessionKey{}).(*model.Session)
	return sess
}

// sessionMiddleware resolves the session from the cookie, creating a new one
// when the cookie is missing or refers to an expired session
func sessionMiddleware(post *usecase.PostUseCase, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id model.SessionID
			if c, err := r.Cookie(SessionCookieName); err == nil {
				id = model.SessionID(c.Value)
			}

			sess := post.Session(id)
			if sess.ID() != id {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    string(sess.ID()),
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := withSession(r.Context(), sess)
			ctx = logging.With(ctx, logging.From(ctx).With(usecase.SessionIDKey, sess.ID()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
