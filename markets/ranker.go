package markets

import (
	"strings"

	"oddsflow/models"
)

// Offer is one bookmaker's candidate bet for a single market type: the
// bookmaker's display name plus the outcome values it published.
type Offer struct {
	Bookmaker string
	Values    []models.OddValue
}

// Ranker scores offers by bookmaker preference and data richness. It is a
// pure value: the same inputs always select the same offer.
type Ranker struct {
	weights  map[string]int
	unlisted int
}

// NewRanker builds a ranker for an ordered preference list. Names closer to
// the front weigh more; any bookmaker off the list shares the lowest weight.
// Name matching is case-insensitive.
func NewRanker(preferred []string) *Ranker {
	weights := make(map[string]int, len(preferred))
	for i, name := range preferred {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		weights[key] = len(preferred) + 2 - i
	}
	return &Ranker{weights: weights, unlisted: 1}
}

func (r *Ranker) weight(bookmaker string) int {
	if w, ok := r.weights[strings.ToLower(strings.TrimSpace(bookmaker))]; ok {
		return w
	}
	return r.unlisted
}

// Score values an offer. Preference dominates; the published outcome count
// only breaks ties between equally preferred bookmakers.
func (r *Ranker) Score(o Offer) int {
	return r.weight(o.Bookmaker)*100 + len(o.Values)
}

// Best returns the highest scoring offer, or nil when offers is empty.
// Equal scores keep the earlier offer, so selection is stable.
func (r *Ranker) Best(offers []Offer) *Offer {
	var best *Offer
	bestScore := 0
	for i := range offers {
		if score := r.Score(offers[i]); best == nil || score > bestScore {
			best = &offers[i]
			bestScore = score
		}
	}
	return best
}
