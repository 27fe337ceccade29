package httpcors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/barrio/internal/config"
)

func testHTTP(t *testing.T) config.HTTP {
	t.Helper()
	cfg, err := config.Resolve(config.ModeDevelopment, config.NewSource(map[string]string{
		config.KeyStoreCORS: "https://shop.example",
		config.KeyAdminCORS: "https://admin.example",
	}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return cfg.HTTP
}

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRouter_PerGroupOrigins(t *testing.T) {
	r := Router(testHTTP(t), Handlers{Store: ok(), Admin: ok()})

	cases := []struct {
		path, origin string
		allowed      bool
	}{
		{"/store/products", "https://shop.example", true},
		{"/store/products", "https://admin.example", false},
		{"/admin/orders", "https://admin.example", true},
		{"/admin/orders", "https://shop.example", false},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, c.path, nil)
		req.Header.Set("Origin", c.origin)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s from %s: status = %d, want 200", c.path, c.origin, rr.Code)
		}
		got := rr.Header().Get("Access-Control-Allow-Origin")
		if c.allowed && got != c.origin {
			t.Errorf("%s from %s: allow-origin = %q", c.path, c.origin, got)
		}
		if !c.allowed && got != "" {
			t.Errorf("%s from %s: unexpected allow-origin %q", c.path, c.origin, got)
		}
	}
}

func TestRouter_Preflight(t *testing.T) {
	r := Router(testHTTP(t), Handlers{Store: ok()})

	req := httptest.NewRequest(http.MethodOptions, "/store/carts", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("allow-credentials = %q", got)
	}
}

func TestRouter_SkipsNilHandlers(t *testing.T) {
	r := Router(testHTTP(t), Handlers{Store: ok()})

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestRouter_EmptyListDeniesAll(t *testing.T) {
	cfg, err := config.Resolve(config.ModeProduction, config.NewSource(map[string]string{
		config.KeyStoreCORS: " , ",
	}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(cfg.HTTP.StoreCORS.Origins) != 0 {
		t.Fatalf("origins = %v, want none", cfg.HTTP.StoreCORS.Origins)
	}
	r := Router(cfg.HTTP, Handlers{Store: ok()})

	req := httptest.NewRequest(http.MethodGet, "/store/products", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin = %q, want none", got)
	}

	pre := httptest.NewRequest(http.MethodOptions, "/store/carts", nil)
	pre.Header.Set("Origin", "https://evil.example")
	pre.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, pre)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("preflight allow-origin = %q, want none", got)
	}
}
