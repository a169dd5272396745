package generate

import (
	"os"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	defaults "github.com/terminai/terminai-api/default"
)

const defaultPromptTTL = 5 * time.Minute

// PromptStore serves the system prompt. A custom prompt file, when
// configured, is re-read at most once per TTL so edits apply without a
// restart. Missing or empty files fall back to the built-in prompt.
type PromptStore struct {
	path  string
	cache *ttlcache.Cache[string, string]
	log   *zap.Logger
}

// NewPromptStore creates a store for the prompt file at path. An empty path
// always serves the built-in prompt.
func NewPromptStore(path string, ttl time.Duration, log *zap.Logger) *PromptStore {
	if ttl <= 0 {
		ttl = defaultPromptTTL
	}
	ps := &PromptStore{path: path, log: log}

	loader := ttlcache.LoaderFunc[string, string](
		func(c *ttlcache.Cache[string, string], key string) *ttlcache.Item[string, string] {
			return c.Set(key, ps.load(key), ttlcache.DefaultTTL)
		},
	)
	ps.cache = ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
		ttlcache.WithLoader[string, string](loader),
	)
	go ps.cache.Start()
	return ps
}

// System returns the current system prompt.
func (ps *PromptStore) System() string {
	if ps.path == "" {
		return defaultSystemPrompt()
	}
	item := ps.cache.Get(ps.path)
	if item == nil {
		return defaultSystemPrompt()
	}
	return item.Value()
}

// Close stops the cache expiration loop.
func (ps *PromptStore) Close() {
	ps.cache.Stop()
}

func (ps *PromptStore) load(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		ps.log.Warn("failed to read custom prompt, using built-in default", zap.String("path", path), zap.Error(err))
		return defaultSystemPrompt()
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		ps.log.Warn("custom prompt is empty, using built-in default", zap.String("path", path))
		return defaultSystemPrompt()
	}
	ps.log.Debug("loaded custom prompt", zap.String("path", path))
	return prompt
}

func defaultSystemPrompt() string {
	return strings.TrimSpace(defaults.DefaultPrompt)
}
