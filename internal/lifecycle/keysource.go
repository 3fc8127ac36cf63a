package lifecycle

import (
	"context"
	"eigenkey/internal/lifecycle/interfaces"
	"eigenkey/internal/providers"
	"eigenkey/internal/structures"
	"errors"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	vaultapi "github.com/hashicorp/vault/api"
	"github.com/spf13/cast"
)

var (
	// ErrNoKeys is returned when a source has no allow-list to offer.
	ErrNoKeys = errors.New("no access keys available")
	// ErrSourceUnavailable is returned when a source cannot be reached or read.
	ErrSourceUnavailable = errors.New("key source unavailable")
	// ErrInvalidKey is returned for key material that would not survive
	// normalization.
	ErrInvalidKey = errors.New("invalid access key")
)

// DefaultKeys is the development allow-list used when no other source answers.
var DefaultKeys = []string{
	"EF-26Q1-A9F4KZ2M",
	"EF-26Q1-B3H8LP5N",
	"EF-26Q1-C7J2MR9R",
}

const allowListCacheKey = "allowlist"

// VaultKeySource reads the allow-list from a KV v2 secret field, either a
// list or a comma or whitespace separated string.
type VaultKeySource struct {
	client *vaultapi.Client
	mount  string
	path   string
	field  string
}

func NewVaultKeySource(conf structures.VaultConfig) (*VaultKeySource, error) {
	cfg := vaultapi.DefaultConfig()
	cfg.Address = conf.Address
	if conf.Timeout > 0 {
		cfg.Timeout = conf.Timeout
	}
	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	if conf.Token != "" {
		client.SetToken(conf.Token)
	}
	return &VaultKeySource{
		client: client,
		mount:  conf.Mount,
		path:   conf.Path,
		field:  conf.Field,
	}, nil
}

func (v *VaultKeySource) Name() string {
	return "vault"
}

func (v *VaultKeySource) Keys(ctx context.Context) ([]string, error) {
	secret, err := v.client.KVv2(v.mount).Get(ctx, v.path)
	if err != nil {
		return nil, fmt.Errorf("%w: vault %s/%s: %v", ErrSourceUnavailable, v.mount, v.path, err)
	}
	raw, ok := secret.Data[v.field]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: vault %s/%s has no field %q", ErrNoKeys, v.mount, v.path, v.field)
	}
	return parseKeyList(raw)
}

func parseKeyList(raw interface{}) ([]string, error) {
	if s, ok := raw.(string); ok {
		return strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\n' || r == '\t'
		}), nil
	}
	keys, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoKeys, err)
	}
	return keys, nil
}

// FileKeySource reads {"keys": [...]} from a local JSON file.
type FileKeySource struct {
	path string
}

func NewFileKeySource(path string) *FileKeySource {
	return &FileKeySource{path: path}
}

func (f *FileKeySource) Name() string {
	return "file"
}

func (f *FileKeySource) Keys(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	var payload struct {
		Keys []string `json:"keys"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrSourceUnavailable, f.path, err)
	}
	return payload.Keys, nil
}

type StaticKeySource struct {
	keys []string
}

func NewStaticKeySource(keys []string) *StaticKeySource {
	return &StaticKeySource{keys: keys}
}

func (s *StaticKeySource) Name() string {
	return "static"
}

func (s *StaticKeySource) Keys(_ context.Context) ([]string, error) {
	if len(s.keys) == 0 {
		return nil, ErrNoKeys
	}
	return append([]string(nil), s.keys...), nil
}

// ChainKeySource answers with the first source that does not fail.
type ChainKeySource struct {
	sources []interfaces.KeySourceInterface
	logger  providers.Logger
}

func NewChainKeySource(logger providers.Logger, sources ...interfaces.KeySourceInterface) *ChainKeySource {
	return &ChainKeySource{sources: sources, logger: logger}
}

func (c *ChainKeySource) Name() string {
	names := make([]string, 0, len(c.sources))
	for _, src := range c.sources {
		names = append(names, src.Name())
	}
	return strings.Join(names, ">")
}

func (c *ChainKeySource) Keys(ctx context.Context) ([]string, error) {
	var lastErr error = ErrNoKeys
	for _, src := range c.sources {
		keys, err := src.Keys(ctx)
		if err == nil {
			return keys, nil
		}
		c.logger.Debugf(providers.TypeApp, "Key source %s skipped: %s", src.Name(), err)
		lastErr = err
	}
	return nil, lastErr
}

// CachedKeySource keeps the resolved allow-list in the shared cache for the
// cache TTL. Failures are not cached.
type CachedKeySource struct {
	inner interfaces.KeySourceInterface
	cache providers.CacheProviderInterface
}

func NewCachedKeySource(inner interfaces.KeySourceInterface, cache providers.CacheProviderInterface) *CachedKeySource {
	return &CachedKeySource{inner: inner, cache: cache}
}

func (c *CachedKeySource) Name() string {
	return "cached(" + c.inner.Name() + ")"
}

func (c *CachedKeySource) Keys(ctx context.Context) ([]string, error) {
	if data, ok := c.cache.Get(allowListCacheKey); ok {
		var keys []string
		if err := json.Unmarshal(data, &keys); err == nil {
			return keys, nil
		}
	}

	keys, err := c.inner.Keys(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(keys); err == nil {
		c.cache.Set(allowListCacheKey, data)
	}
	return keys, nil
}

// NewKeySource builds the configured chain: Vault when enabled, then the
// local keys file, then the fallback list.
func NewKeySource(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface) (interfaces.KeySourceInterface, error) {
	var sources []interfaces.KeySourceInterface

	if conf.Vault.Enabled {
		vault, err := NewVaultKeySource(conf.Vault)
		if err != nil {
			return nil, err
		}
		sources = append(sources, vault)
	}
	if conf.Access.KeysFile != "" {
		sources = append(sources, NewFileKeySource(conf.Access.KeysFile))
	}

	fallback := conf.Access.FallbackKeys
	if len(fallback) == 0 {
		fallback = DefaultKeys
	}
	sources = append(sources, NewStaticKeySource(fallback))

	chain := NewChainKeySource(logger, sources...)
	logger.Infof(providers.TypeApp, "Allow-list sources: %s", chain.Name())
	return NewCachedKeySource(chain, cache), nil
}
