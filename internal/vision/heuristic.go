package vision

import (
	"strings"

	"github.com/timmy/vismatch/internal/domain"
	"github.com/timmy/vismatch/internal/randutil"
)

// randomSignalThreshold makes every predicate fire for ~30% of draws regardless of content.
const randomSignalThreshold = 0.7

var (
	electronicsHints = []string{"smartphone", "laptop", "device"}
	fashionHints     = []string{"shoe", "sneaker", "clothing", "fashion"}
	applianceHints   = []string{"kitchen", "appliance", "home"}
)

// Signals are the content hints found in an image reference. They are deterministic;
// the randomness lives in Heuristic.
type Signals struct {
	Electronics bool
	Fashion     bool
	Appliance   bool
}

// Inspect runs the case-insensitive substring tests once for a reference.
func Inspect(imageRef string) Signals {
	lower := strings.ToLower(imageRef)
	return Signals{
		Electronics: containsAny(lower, electronicsHints),
		Fashion:     containsAny(lower, fashionHints),
		Appliance:   containsAny(lower, applianceHints),
	}
}

// Heuristic is the string-matching stand-in for a visual classifier. It models an
// imperfect classifier: every predicate can fire at random.
type Heuristic struct {
	rng randutil.Source
}

// NewHeuristic creates a Heuristic drawing from rng.
func NewHeuristic(rng randutil.Source) *Heuristic {
	return &Heuristic{rng: rng}
}

// LooksLikeElectronics reports an electronics signal for the reference.
func (h *Heuristic) LooksLikeElectronics(imageRef string) bool {
	return h.fire(Inspect(imageRef).Electronics)
}

// LooksLikeFashion reports a fashion signal for the reference.
func (h *Heuristic) LooksLikeFashion(imageRef string) bool {
	return h.fire(Inspect(imageRef).Fashion)
}

// LooksLikeAppliance reports an appliance signal for the reference.
func (h *Heuristic) LooksLikeAppliance(imageRef string) bool {
	return h.fire(Inspect(imageRef).Appliance)
}

// Classify evaluates the electronics, fashion and appliance predicates in that order
// and returns the first group that fires. Each call draws fresh random numbers.
func (h *Heuristic) Classify(s Signals) domain.CategoryGroup {
	switch {
	case h.fire(s.Electronics):
		return domain.GroupElectronics
	case h.fire(s.Fashion):
		return domain.GroupFashion
	case h.fire(s.Appliance):
		return domain.GroupAppliance
	default:
		return domain.GroupNone
	}
}

// fire draws the random fallback even when the hint matched, so the number of draws
// does not depend on the reference content.
func (h *Heuristic) fire(hint bool) bool {
	random := h.rng.Float64() > randomSignalThreshold
	return hint || random
}

func containsAny(s string, hints []string) bool {
	for _, hint := range hints {
		if strings.Contains(s, hint) {
			return true
		}
	}
	return false
}
