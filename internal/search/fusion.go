package search

import (
	"sort"

	"github.com/hyperjump/fandex/pkg/utils"
)

// FusedResult holds an item ID with its blended local and remote scores.
type FusedResult struct {
	ItemID      string
	Score       float64
	LocalScore  float64
	RemoteScore float64
}

// NormalizeRelevance maps a remote relevance score into [0,1]. Values above
// 1 are read as percentages.
func NormalizeRelevance(v float64) float64 {
	if v > 1 {
		v /= 100
	}
	return utils.Clamp(v, 0, 1)
}

// NormalizeRemoteScores keeps the first score reported for each known item.
// known reports whether an id is in the catalog; unknown ids are dropped.
func NormalizeRemoteScores(results []RemoteResult, known func(id string) bool) map[string]float64 {
	normalized := make(map[string]float64, len(results))
	for _, r := range results {
		if !known(r.ItemID) {
			continue
		}
		if _, seen := normalized[r.ItemID]; seen {
			continue
		}
		normalized[r.ItemID] = NormalizeRelevance(r.RelevanceScore)
	}
	return normalized
}

// Fuse merges local and remote score maps with weights. order lists the
// candidate ids in catalog order; ids missing from both maps are skipped and
// equal scores keep that order.
func Fuse(order []string, localScores, remoteScores map[string]float64, localWeight, remoteWeight float64) []*FusedResult {
	results := make([]*FusedResult, 0, len(order))
	for _, id := range order {
		local, inLocal := localScores[id]
		remote, inRemote := remoteScores[id]
		if !inLocal && !inRemote {
			continue
		}
		results = append(results, &FusedResult{
			ItemID:      id,
			LocalScore:  local,
			RemoteScore: remote,
			Score:       localWeight*local + remoteWeight*remote,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}
