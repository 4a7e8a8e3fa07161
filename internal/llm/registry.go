package llm

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderFactory builds a ready-to-use provider. Model and credentials are
// closed over from config at registration time, so only the selected
// provider's settings ever need to be valid.
type ProviderFactory func() (Provider, error)

// Registry resolves the configured provider name to a factory. Names are
// matched case-insensitively.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(strings.TrimSpace(name))] = f
}

// Get builds the named provider. An unknown name lists what is registered,
// since the usual cause is a typo in AI_PROVIDER.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q (registered: %s)", name, strings.Join(r.names(), ", "))
	}
	return f()
}

func (r *Registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for n := range r.factories {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
