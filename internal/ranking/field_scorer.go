package ranking

import (
	"github.com/hyperjump/fandex/internal/keyword"
	"github.com/hyperjump/fandex/internal/models"
)

// FieldScorer evaluates every searchable field of an item against every
// query variant and keeps the best result.
type FieldScorer struct {
	config      *RankingConfig
	title       *TitleScorer
	description *DescriptionScorer
	taxonomy    *CrossFieldScorer
	people      *CrossFieldScorer
}

// NewFieldScorer creates a FieldScorer with the given config.
func NewFieldScorer(config *RankingConfig) *FieldScorer {
	return &FieldScorer{
		config:      config,
		title:       NewTitleScorer(config),
		description: NewDescriptionScorer(config),
		taxonomy:    NewTaxonomyScorer(config),
		people:      NewPeopleScorer(config),
	}
}

func (s *FieldScorer) scorerFor(kind models.FieldKind) Scorer {
	switch kind {
	case models.FieldTitle, models.FieldAltTitle:
		return s.title
	case models.FieldDescription:
		return s.description
	case models.FieldPeople:
		return s.people
	default:
		return s.taxonomy
	}
}

func (s *FieldScorer) weightFor(kind models.FieldKind) float64 {
	switch kind {
	case models.FieldTitle:
		return s.config.TitleWeight
	case models.FieldAltTitle:
		return s.config.AltTitleWeight
	case models.FieldDescription:
		return s.config.DescriptionWeight
	case models.FieldPeople:
		return s.config.PeopleWeight
	default:
		return s.config.TaxonomyWeight
	}
}

// ScoreItem scores item against all variants of q. Matches produced by a
// synonym variant are discounted and typed semantic.
func (s *FieldScorer) ScoreItem(q *AnalyzedQuery, item models.CatalogItem) *ScoreBreakdown {
	breakdown := &ScoreBreakdown{ItemID: item.ItemID()}
	if q.IsEmpty() {
		return breakdown
	}

	fields := item.SearchFields()
	values := make([][]string, len(fields))
	for i, f := range fields {
		for _, v := range f.Values {
			if n := keyword.Normalize(v); n != "" {
				values[i] = append(values[i], n)
			}
		}
	}

	perField := make([]FieldMatch, len(fields))
	for _, variant := range q.Variants {
		for i, f := range fields {
			if len(values[i]) == 0 {
				continue
			}
			raw, matchType := s.scorerFor(f.Kind).Score(variant, values[i])
			if raw <= 0 {
				continue
			}
			score := raw * s.weightFor(f.Kind)
			if variant.Synonym {
				score *= s.config.SynonymFactor
				matchType = models.MatchSemantic
			}
			m := FieldMatch{
				Field:     f.Name,
				Kind:      f.Kind,
				Variant:   variant.Text,
				Raw:       raw,
				Score:     score,
				MatchType: matchType,
			}
			if m.better(perField[i]) {
				perField[i] = m
			}
			if m.better(breakdown.Best) {
				breakdown.Best = m
			}
		}
	}

	for _, m := range perField {
		if m.Score > 0 {
			breakdown.Fields = append(breakdown.Fields, m)
			breakdown.MatchedFields = append(breakdown.MatchedFields, m.Field)
		}
	}
	breakdown.FinalScore = breakdown.Best.Score
	breakdown.MatchType = breakdown.Best.MatchType
	return breakdown
}
