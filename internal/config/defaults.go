package config

import (
	"os"
	"time"
)

// ApplyDefaults sets default values for any zero values in cfg. Ranking
// weights are left alone: each domain profile fills its own defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 50
	}
	if cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		cfg.Search.DefaultLimit = cfg.Search.MaxLimit
	}
	if cfg.Search.EmptyQuery == "" {
		cfg.Search.EmptyQuery = "all"
	}
	if cfg.Search.SynonymMatch == "" {
		cfg.Search.SynonymMatch = "token"
	}
	if cfg.Search.DidYouMean == 0 {
		cfg.Search.DidYouMean = 3
	}
	// search.min_score is the shorthand for ranking.min_score.
	if cfg.Search.MinScore != nil && !cfg.Ranking.IsExplicit("min_score") {
		cfg.Ranking.MinScore = *cfg.Search.MinScore
		cfg.Ranking.SetExplicit("min_score")
	}
	if cfg.Remote.Provider == "" {
		cfg.Remote.Provider = ProviderHTTP
	}
	if cfg.Remote.APIKey == "" {
		cfg.Remote.APIKey = os.Getenv("FANDEX_REMOTE_API_KEY")
	}
	if cfg.Remote.APIKey == "" && cfg.Remote.Provider == ProviderOpenAI {
		cfg.Remote.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Remote.Timeout == 0 {
		cfg.Remote.Timeout = 3 * time.Second
	}
	if cfg.Remote.LocalWeight == 0 && cfg.Remote.RemoteWeight == 0 {
		cfg.Remote.LocalWeight = 0.5
		cfg.Remote.RemoteWeight = 0.5
	}
	if cfg.Remote.MaxCandidates == 0 {
		cfg.Remote.MaxCandidates = 200
	}
}
