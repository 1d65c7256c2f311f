package search

import (
	"strings"

	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/pkg/utils"
)

// MaxQueryLength caps the runes of a query kept for scoring. Edit distance
// is quadratic in length, so longer input is clipped rather than rejected.
const MaxQueryLength = 256

// ProcessQuery validates the search query, applies the limit defaults and
// clips an overlong query string.
func ProcessQuery(query *models.SearchQuery, defaultLimit, maxLimit int) error {
	query.Query = utils.Clip(strings.TrimSpace(query.Query), MaxQueryLength)
	return query.Validate(defaultLimit, maxLimit)
}
