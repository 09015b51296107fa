package ratelimit

import "strings"

// MatchEndpoint resolves a request path and method to its endpoint
// configuration. Exact path matches win; patterns ending in "/" match as
// prefixes (e.g. "/holdings/" covers "/holdings/reload"). Returns nil when
// nothing matches, in which case the caller falls back to the default limit.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// The health check is always unlimited.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	var prefixMatch *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method {
			continue
		}
		if cfg.Path == path {
			return cfg
		}
		if prefixMatch == nil && strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			prefixMatch = cfg
		}
	}
	return prefixMatch
}
