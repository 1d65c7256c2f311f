package ranking

import (
	"maps"

	"gopkg.in/yaml.v3"
)

// RankingConfig holds all configuration for the ranking system.
//
// A zero value means "use the default" unless the key was set explicitly,
// either in YAML or with SetExplicit, so min_score: 0 keeps every match and
// max_fuzzy_distance: 0 turns fuzzy matching off.
type RankingConfig struct {
	// Field weights, applied to the tier score of a field match
	TitleWeight       float64 `yaml:"title_weight"`       // default: 1.0
	AltTitleWeight    float64 `yaml:"alt_title_weight"`   // default: 0.95
	DescriptionWeight float64 `yaml:"description_weight"` // default: 0.6
	TaxonomyWeight    float64 `yaml:"taxonomy_weight"`    // default: 0.8
	PeopleWeight      float64 `yaml:"people_weight"`      // default: 0.7

	// Title scoring values
	ExactScore           float64 `yaml:"exact_score"`            // default: 1.0
	PartialFloor         float64 `yaml:"partial_floor"`          // default: 0.65
	ReverseContainFactor float64 `yaml:"reverse_contain_factor"` // default: 0.9
	AllWordsScore        float64 `yaml:"all_words_score"`        // default: 0.7
	MaxFuzzyDistance     int     `yaml:"max_fuzzy_distance"`     // default: 2
	FuzzyFactor          float64 `yaml:"fuzzy_factor"`           // default: 0.6
	MinFuzzyLength       int     `yaml:"min_fuzzy_length"`       // default: 3
	MinContainLength     int     `yaml:"min_contain_length"`     // default: 3

	// Cross-field scoring values
	TaxonomyScore float64 `yaml:"taxonomy_score"` // default: 0.75
	PeopleScore   float64 `yaml:"people_score"`   // default: 0.65

	// Matches found through a synonym variant rather than the typed query
	SynonymFactor float64 `yaml:"synonym_factor"` // default: 0.9

	// Results scoring below this are dropped
	MinScore float64 `yaml:"min_score"` // default: 0.3

	// Similar-item recommendation weights
	GenreWeight   float64 `yaml:"genre_weight"`   // default: 3.0 per shared genre
	TagWeight     float64 `yaml:"tag_weight"`     // default: 1.5 per shared tag
	CreatorWeight float64 `yaml:"creator_weight"` // default: 4.0
	RatingWeight  float64 `yaml:"rating_weight"`  // default: 2.0
	RatingSpan    float64 `yaml:"rating_span"`    // default: 10
	RecencyWeight float64 `yaml:"recency_weight"` // default: 1.0
	RecencySpan   float64 `yaml:"recency_span"`   // default: 20 (years)

	// Autocomplete only proposes titles of items rated at least this
	SuggestMinQuality float64 `yaml:"suggest_min_quality"` // default: 7.0

	explicit map[string]bool // yaml keys set on purpose, zero included
}

// SetExplicit marks yaml keys as deliberately set so ApplyDefaults keeps
// their zero values.
func (c *RankingConfig) SetExplicit(keys ...string) {
	if c.explicit == nil {
		c.explicit = make(map[string]bool, len(keys))
	} else {
		c.explicit = maps.Clone(c.explicit)
	}
	for _, k := range keys {
		c.explicit[k] = true
	}
}

// IsExplicit reports whether key was set on purpose.
func (c *RankingConfig) IsExplicit(key string) bool {
	return c.explicit[key]
}

// UnmarshalYAML decodes the config and records which keys the document sets.
func (c *RankingConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain RankingConfig
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}
	if value.Kind == yaml.MappingNode {
		keys := make([]string, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			keys = append(keys, value.Content[i].Value)
		}
		c.SetExplicit(keys...)
	}
	return nil
}

// MarshalYAML omits zero values that were never set, so a saved config
// loads back with the same defaults.
func (c RankingConfig) MarshalYAML() (any, error) {
	type plain RankingConfig
	var node yaml.Node
	if err := node.Encode(plain(c)); err != nil {
		return nil, err
	}
	kept := node.Content[:0]
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Value == "0" && !c.explicit[k.Value] {
			continue
		}
		kept = append(kept, k, v)
	}
	node.Content = kept
	return &node, nil
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		TitleWeight:       1.0,
		AltTitleWeight:    0.95,
		DescriptionWeight: 0.6,
		TaxonomyWeight:    0.8,
		PeopleWeight:      0.7,

		ExactScore:           1.0,
		PartialFloor:         0.65,
		ReverseContainFactor: 0.9,
		AllWordsScore:        0.7,
		MaxFuzzyDistance:     2,
		FuzzyFactor:          0.6,
		MinFuzzyLength:       3,
		MinContainLength:     3,

		TaxonomyScore: 0.75,
		PeopleScore:   0.65,

		SynonymFactor: 0.9,
		MinScore:      0.3,

		GenreWeight:   3.0,
		TagWeight:     1.5,
		CreatorWeight: 4.0,
		RatingWeight:  2.0,
		RatingSpan:    10,
		RecencyWeight: 1.0,
		RecencySpan:   20,

		SuggestMinQuality: 7.0,
	}
}

// ApplyDefaults fills in zero values with defaults, except for keys set
// explicitly.
func (c *RankingConfig) ApplyDefaults() {
	defaults := DefaultRankingConfig()

	// Field weights
	setDefault(&c.TitleWeight, defaults.TitleWeight, c.explicit["title_weight"])
	setDefault(&c.AltTitleWeight, defaults.AltTitleWeight, c.explicit["alt_title_weight"])
	setDefault(&c.DescriptionWeight, defaults.DescriptionWeight, c.explicit["description_weight"])
	setDefault(&c.TaxonomyWeight, defaults.TaxonomyWeight, c.explicit["taxonomy_weight"])
	setDefault(&c.PeopleWeight, defaults.PeopleWeight, c.explicit["people_weight"])

	// Title scoring
	setDefault(&c.ExactScore, defaults.ExactScore, c.explicit["exact_score"])
	setDefault(&c.PartialFloor, defaults.PartialFloor, c.explicit["partial_floor"])
	setDefault(&c.ReverseContainFactor, defaults.ReverseContainFactor, c.explicit["reverse_contain_factor"])
	setDefault(&c.AllWordsScore, defaults.AllWordsScore, c.explicit["all_words_score"])
	setDefault(&c.MaxFuzzyDistance, defaults.MaxFuzzyDistance, c.explicit["max_fuzzy_distance"])
	setDefault(&c.FuzzyFactor, defaults.FuzzyFactor, c.explicit["fuzzy_factor"])
	setDefault(&c.MinFuzzyLength, defaults.MinFuzzyLength, c.explicit["min_fuzzy_length"])
	setDefault(&c.MinContainLength, defaults.MinContainLength, c.explicit["min_contain_length"])

	// Cross-field scoring
	setDefault(&c.TaxonomyScore, defaults.TaxonomyScore, c.explicit["taxonomy_score"])
	setDefault(&c.PeopleScore, defaults.PeopleScore, c.explicit["people_score"])
	setDefault(&c.SynonymFactor, defaults.SynonymFactor, c.explicit["synonym_factor"])
	setDefault(&c.MinScore, defaults.MinScore, c.explicit["min_score"])

	// Recommendations
	setDefault(&c.GenreWeight, defaults.GenreWeight, c.explicit["genre_weight"])
	setDefault(&c.TagWeight, defaults.TagWeight, c.explicit["tag_weight"])
	setDefault(&c.CreatorWeight, defaults.CreatorWeight, c.explicit["creator_weight"])
	setDefault(&c.RatingWeight, defaults.RatingWeight, c.explicit["rating_weight"])
	setDefault(&c.RatingSpan, defaults.RatingSpan, c.explicit["rating_span"])
	setDefault(&c.RecencyWeight, defaults.RecencyWeight, c.explicit["recency_weight"])
	setDefault(&c.RecencySpan, defaults.RecencySpan, c.explicit["recency_span"])

	setDefault(&c.SuggestMinQuality, defaults.SuggestMinQuality, c.explicit["suggest_min_quality"])
}

func setDefault[T int | float64](v *T, def T, explicit bool) {
	if *v == 0 && !explicit {
		*v = def
	}
}
