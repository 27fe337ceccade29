// Package httpcors builds CORS middleware from the resolved store, admin,
// and auth allow-lists.
//
// The commerce runtime serves three route groups, each with its own
// allow-list.  Router mounts whichever handlers the caller supplies under
// /store, /admin, and /auth with the matching go-chi/cors middleware, so a
// Go front end sees exactly the origins the runtime would accept.
package httpcors

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/yanizio/barrio/internal/config"
)

// Route prefixes used by the runtime.
const (
	StorePrefix = "/store"
	AdminPrefix = "/admin"
	AuthPrefix  = "/auth"
)

// Handlers holds one handler per route group.  Nil handlers are skipped.
type Handlers struct {
	Store http.Handler
	Admin http.Handler
	Auth  http.Handler
}

// Middleware returns a CORS handler limited to c.Origins.  Credentials are
// allowed because every group uses cookie or bearer auth.  An empty list
// denies every cross-origin request; go-chi/cors would otherwise treat it
// as "*".
func Middleware(c config.CORS) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   c.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Publishable-Api-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(c.Origins) == 0 {
		opts.AllowOriginFunc = denyOrigin
	}
	return cors.Handler(opts)
}

func denyOrigin(*http.Request, string) bool { return false }

// Router mounts h under the runtime prefixes with per-group CORS.
func Router(cfg config.HTTP, h Handlers) chi.Router {
	r := chi.NewRouter()

	mount := func(prefix string, c config.CORS, next http.Handler) {
		if next == nil {
			return
		}
		r.Route(prefix, func(sub chi.Router) {
			sub.Use(Middleware(c))
			sub.Mount("/", next)
		})
	}

	mount(StorePrefix, cfg.StoreCORS, h.Store)
	mount(AdminPrefix, cfg.AdminCORS, h.Admin)
	mount(AuthPrefix, cfg.AuthCORS, h.Auth)
	return r
}
