// internal/vault/vault.go
//
// Vault-backed secret indirection for environment input.
//
// Context
// -------
//   - Operators may set any variable to `vault:<mount>/<path>#<key>` instead
//     of a literal.  `Expand` swaps each such value for the secret before
//     `config.Resolve` runs, so the resolved model only ever holds plain
//     strings.
//   - `Client` wraps the HashiCorp Vault Go SDK with KV-v2 reads, a per-key
//     TTL cache, and background token renewal.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, zap.S().Infof)       // only when VAULT_ADDR is set.
//  2. src, err = vault.Expand(ctx, src, cli)          // before Resolve.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/yanizio/barrio/internal/config"
)

// Prefix marks an environment value as a Vault reference.
const Prefix = "vault:"

// CacheTTL bounds how long Expand trusts a fetched secret.
const CacheTTL = 5 * time.Minute

// KVReader is the part of Client that Expand needs.
type KVReader interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

//
// SECTION 1.  Expansion
//

// Expand returns a copy of src with every `vault:` value replaced by its
// secret.  The first failed lookup aborts with the variable name attached.
func Expand(ctx context.Context, src config.Source, kv KVReader) (config.Source, error) {
	out := src
	for _, name := range src.Keys() {
		raw := src.Get(name)
		if !strings.HasPrefix(raw, Prefix) {
			continue
		}
		path, key, err := ParseRef(raw)
		if err != nil {
			return config.Source{}, fmt.Errorf("vault: %s: %w", name, err)
		}
		val, err := kv.GetKV(ctx, path, key, CacheTTL)
		if err != nil {
			return config.Source{}, fmt.Errorf("vault: %s: %w", name, err)
		}
		out = out.With(name, val)
	}
	return out, nil
}

// ParseRef splits `vault:secret/shop/stripe#api_key` into its path and key.
func ParseRef(ref string) (path, key string, err error) {
	body := strings.TrimPrefix(ref, Prefix)
	path, key, ok := strings.Cut(body, "#")
	if !ok || path == "" || key == "" {
		return "", "", fmt.Errorf("malformed reference %q, want vault:<mount>/<path>#<key>", ref)
	}
	if mount, rel := splitMount(path); mount == "" || rel == "" {
		return "", "", fmt.Errorf("reference %q has no mount", ref)
	}
	return path, key, nil
}

//
// SECTION 2.  Client
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)

	cacheMu sync.RWMutex
	cache   map[string]cached // path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a client from VAULT_ADDR / VAULT_TOKEN and starts token
// renewal, which stops when ctx ends.
func New(ctx context.Context, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		logFn: logFn,
		cache: make(map[string]cached),
	}
	go c.renewLoop(ctx)
	return c, nil
}

// GetKV fetches one key from a KV-v2 secret.  With ttl > 0 the value is
// cached for that long.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key
	if ttl > 0 {
		c.cacheMu.RLock()
		cv, ok := c.cache[canonical]
		c.cacheMu.RUnlock()
		if ok && time.Now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	return sval, nil
}

// Healthy reports whether the server is initialized and unsealed.
func (c *Client) Healthy(ctx context.Context) error {
	h, err := c.api.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health: %w", err)
	}
	if !h.Initialized || h.Sealed {
		return fmt.Errorf("vault health: initialized=%t sealed=%t", h.Initialized, h.Sealed)
	}
	return nil
}

//
// SECTION 3.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			c.logFn("vault: token renew self failed: %v", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.logFn("vault: token is not renewable, sleeping 1h")
			backoff(ctx, time.Hour)
			continue
		}

		watcher, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
			Secret: sec,
		})
		if err != nil {
			c.logFn("vault: watcher init error: %v", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		c.watch(ctx, watcher)
	}
}

// watch blocks until the watcher stops or ctx ends.
func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher) {
	go w.Start()
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				c.logFn("vault: token renewal stopped: %v", err)
			}
			backoff(ctx, 15*time.Second)
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.logFn("vault: token renewed, ttl=%ds", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

//
// SECTION 4.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
