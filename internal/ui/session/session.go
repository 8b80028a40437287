// Package session gives every browser an anonymous identity and remembers
// whether it is browsing in view mode.
package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// CookieName is the session cookie name.
const CookieName = "metacatalog"

const (
	keyOwner    = "owner"
	keyViewMode = "view_mode"
)

// Identity is what the UI knows about the current browser.
type Identity struct {
	// OwnerID is stamped on assets this browser creates or edits.
	OwnerID string
	// ViewMode hides and refuses every mutation.
	ViewMode bool
}

// ShortOwner returns the owner ID prefix shown in the header.
func (i Identity) ShortOwner() string {
	if len(i.OwnerID) <= 8 {
		return i.OwnerID
	}
	return i.OwnerID[:8]
}

type ctxKey struct{}

// FromContext returns the identity stored by Middleware.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// NewStore creates the cookie store used for sessions.
func NewStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// Load reads the identity for r, issuing a new anonymous owner ID when the
// browser has none. A new or unreadable session is saved before returning,
// so Load must run before anything is written to w.
func Load(store sessions.Store, w http.ResponseWriter, r *http.Request) (Identity, error) {
	// A cookie signed with another secret yields an error and a fresh session.
	sess, err := store.Get(r, CookieName)
	if sess == nil {
		return Identity{}, err
	}

	id := Identity{}
	id.OwnerID, _ = sess.Values[keyOwner].(string)
	id.ViewMode, _ = sess.Values[keyViewMode].(bool)

	if id.OwnerID == "" || err != nil {
		if id.OwnerID == "" {
			id.OwnerID = uuid.NewString()
		}
		sess.Values[keyOwner] = id.OwnerID
		sess.Values[keyViewMode] = id.ViewMode
		if err := sess.Save(r, w); err != nil {
			return id, err
		}
	}
	return id, nil
}

// SetViewMode stores the view-mode flag for the browser behind r.
func SetViewMode(store sessions.Store, w http.ResponseWriter, r *http.Request, on bool) (Identity, error) {
	sess, err := store.Get(r, CookieName)
	if sess == nil {
		return Identity{}, err
	}

	id := Identity{ViewMode: on}
	id.OwnerID, _ = sess.Values[keyOwner].(string)
	if id.OwnerID == "" {
		id.OwnerID = uuid.NewString()
	}
	sess.Values[keyOwner] = id.OwnerID
	sess.Values[keyViewMode] = on
	return id, sess.Save(r, w)
}

// Middleware loads the identity into the request context.
func Middleware(store sessions.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := Load(store, w, r)
			if err != nil {
				logger.Warn("failed to save session", slog.String("error", err.Error()))
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
