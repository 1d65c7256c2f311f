// Package profile assembles the per-domain search configuration: field
// weights plus the synonym and typo tables the query pipeline runs on.
package profile

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/fandex/internal/keyword"
	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/ranking"
)

//go:embed lexicons/*.yaml
var builtin embed.FS

// Profile is the immutable search configuration of one domain. It is built
// once at startup and shared by all searches on that domain.
type Profile struct {
	Domain   models.Domain
	Synonyms *keyword.SynonymTable
	Typos    *keyword.TypoCorrector
	Analyzer *ranking.QueryAnalyzer
	Ranking  *ranking.RankingConfig
}

// Options control how profiles are loaded.
type Options struct {
	// LexiconDir may hold <domain>.yaml files whose entries take precedence
	// over the built-in tables.
	LexiconDir string
	MatchMode  keyword.MatchMode
	// Ranking holds user overrides; zero fields take the domain default.
	Ranking *ranking.RankingConfig
	Logger  *zap.Logger
}

// BuiltinLexicon returns the lexicon shipped with the binary for a domain.
func BuiltinLexicon(d models.Domain) (*keyword.Lexicon, error) {
	data, err := builtin.ReadFile("lexicons/" + string(d) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: no built-in lexicon for %q", models.ErrUnknownDomain, d)
	}
	lex, err := keyword.ParseLexicon(data)
	if err != nil {
		return nil, fmt.Errorf("built-in %s lexicon: %w", d, err)
	}
	return lex, nil
}

// Load builds the profile of one domain. Any table error is returned so the
// caller can fail at startup rather than per search.
func Load(d models.Domain, opts Options) (*Profile, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lex, err := BuiltinLexicon(d)
	if err != nil {
		return nil, err
	}
	if opts.LexiconDir != "" {
		custom, err := loadOverride(opts.LexiconDir, d)
		if err != nil {
			return nil, err
		}
		if custom != nil {
			logger.Info("Applying lexicon override",
				zap.String("domain", string(d)),
				zap.Int("synonyms", len(custom.Synonyms)),
				zap.Int("typos", len(custom.Typos)))
			lex = lex.Overlay(custom)
		}
	}

	synonyms, typos, err := lex.Build(opts.MatchMode)
	if err != nil {
		return nil, fmt.Errorf("%s lexicon: %w", d, err)
	}
	for _, c := range synonyms.Conflicts() {
		logger.Warn("Synonym alias listed under more than one title",
			zap.String("domain", string(d)),
			zap.String("alias", c.Alias),
			zap.String("kept_under", c.FirstCanonical),
			zap.String("ignored_under", c.OtherCanonical))
	}

	logger.Debug("Loaded profile",
		zap.String("domain", string(d)),
		zap.Int("synonym_groups", len(synonyms.Groups())),
		zap.Int("typos", typos.Len()),
		zap.String("synonym_match", opts.MatchMode.String()))

	return &Profile{
		Domain:   d,
		Synonyms: synonyms,
		Typos:    typos,
		Analyzer: ranking.NewQueryAnalyzer(typos, synonyms),
		Ranking:  RankingFor(d, opts.Ranking),
	}, nil
}

// LoadAll loads the profile of every domain.
func LoadAll(opts Options) (map[models.Domain]*Profile, error) {
	profiles := make(map[models.Domain]*Profile, len(models.Domains()))
	for _, d := range models.Domains() {
		p, err := Load(d, opts)
		if err != nil {
			return nil, err
		}
		profiles[d] = p
	}
	return profiles, nil
}

func loadOverride(dir string, d models.Domain) (*keyword.Lexicon, error) {
	path := filepath.Join(dir, string(d)+".yaml")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat lexicon override: %w", err)
	}
	return keyword.LoadLexiconFile(path)
}

// RankingFor returns the ranking config of a domain: user overrides first,
// then the domain's own weights, then the global defaults.
func RankingFor(d models.Domain, overrides *ranking.RankingConfig) *ranking.RankingConfig {
	var cfg ranking.RankingConfig
	if overrides != nil {
		cfg = *overrides
	}
	switch d {
	case models.DomainQuiz:
		// Quizzes have short generic titles; the description and category
		// carry most of the meaning.
		if cfg.DescriptionWeight == 0 && !cfg.IsExplicit("description_weight") {
			cfg.DescriptionWeight = 0.75
		}
		if cfg.TaxonomyWeight == 0 && !cfg.IsExplicit("taxonomy_weight") {
			cfg.TaxonomyWeight = 0.85
		}
		if cfg.SuggestMinQuality == 0 && !cfg.IsExplicit("suggest_min_quality") {
			cfg.SuggestMinQuality = 4.0
		}
	case models.DomainManga:
		if cfg.PeopleWeight == 0 && !cfg.IsExplicit("people_weight") {
			cfg.PeopleWeight = 0.75
		}
	}
	cfg.ApplyDefaults()
	return &cfg
}
