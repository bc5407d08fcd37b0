package selection

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/domain"
)

// Selector builds review queues. The zero value is not usable; use NewSelector.
//
// A Selector created without WithRand is safe for concurrent use. One created
// with WithRand shares the given source and is only as safe as that source.
type Selector struct {
	rng *rand.Rand
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand makes the selector shuffle with r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) {
		s.rng = r
	}
}

// NewSelector creates a Selector.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns the review queue for pool under policy, as copies in queue
// order. The result never holds more than policy.Limit cards. An empty result
// is not an error.
func (s *Selector) Select(
	pool []*domain.CardState,
	policy Policy,
	now time.Time,
) ([]*domain.CardState, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	candidates := filter(pool, policy, now)
	order(candidates, policy)

	// A random review picks a random subset, so the pool is shuffled before
	// anything is dropped.
	if policy.Mode == ModeRandomReview {
		s.shuffle(candidates)
	}

	var bands [][]*domain.CardState
	switch {
	case policy.Mode.bands():
		bands = band(candidates, policy, now)
	case policy.Mode == ModeNewCards:
		bands = [][]*domain.CardState{capNew(candidates, policy.MaxNewCards)}
	default:
		bands = [][]*domain.CardState{candidates}
	}

	bands = truncate(bands, policy.Limit)

	if policy.ShuffleCards {
		for _, b := range bands {
			s.shuffle(b)
		}
	}

	queue := make([]*domain.CardState, 0, policy.Limit)
	for _, b := range bands {
		for _, c := range b {
			queue = append(queue, c.Clone())
		}
	}

	return queue, nil
}

// IDs returns the card identifiers of queue in order.
func IDs(queue []*domain.CardState) []uuid.UUID {
	ids := make([]uuid.UUID, len(queue))
	for i, c := range queue {
		ids[i] = c.ID
	}
	return ids
}

// AvailableModes returns the modes that would produce a non-empty queue for
// pool. Targeted review is always available when the pool has a selectable card.
func AvailableModes(pool []*domain.CardState, now time.Time) []Mode {
	var modes []Mode
	for _, m := range Modes() {
		policy := Policy{Mode: m}
		for _, c := range pool {
			if c == nil || !c.IsSelectable() {
				continue
			}
			if m == ModeTargetedReview || matchesMode(c, policy, now) {
				modes = append(modes, m)
				break
			}
		}
	}
	return modes
}

func (s *Selector) shuffle(cards []*domain.CardState) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if s.rng != nil {
		s.rng.Shuffle(len(cards), swap)
		return
	}
	rand.Shuffle(len(cards), swap)
}

// filter keeps the selectable cards that match the mode and every filter.
func filter(pool []*domain.CardState, policy Policy, now time.Time) []*domain.CardState {
	var targets map[uuid.UUID]struct{}
	if policy.Mode == ModeTargetedReview {
		targets = make(map[uuid.UUID]struct{}, len(policy.TargetCardIDs))
		for _, id := range policy.TargetCardIDs {
			targets[id] = struct{}{}
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(pool))
	out := make([]*domain.CardState, 0, len(pool))
	for _, c := range pool {
		if c == nil || !c.IsSelectable() {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		if targets != nil {
			if _, ok := targets[c.ID]; !ok {
				continue
			}
		} else if !matchesMode(c, policy, now) {
			continue
		}
		if !matchesLists(c, policy) || !matchesWordTypes(c, policy) {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func matchesMode(c *domain.CardState, policy Policy, now time.Time) bool {
	switch policy.Mode {
	case ModeDueCards:
		return c.IsDue(now)
	case ModeDifficultCards:
		return c.ConsecutiveIncorrect > 0 || c.EaseFactor < policy.threshold()
	case ModeNewCards:
		return c.IsNew()
	case ModeRandomReview, ModeAllCards:
		return true
	default:
		return false
	}
}

func matchesLists(c *domain.CardState, policy Policy) bool {
	if len(policy.IncludeListIDs) > 0 && !slices.ContainsFunc(policy.IncludeListIDs, c.InList) {
		return false
	}
	return !slices.ContainsFunc(policy.ExcludeListIDs, c.InList)
}

func matchesWordTypes(c *domain.CardState, policy Policy) bool {
	if len(policy.IncludeWordTypes) > 0 && !slices.Contains(policy.IncludeWordTypes, c.WordType) {
		return false
	}
	return !slices.Contains(policy.ExcludeWordTypes, c.WordType)
}

// order sorts candidates in place by the mode's ordering, ending with the
// creation time and ID tie-breaks so equal pools always give equal queues.
func order(cards []*domain.CardState, policy Policy) {
	if policy.Mode == ModeTargetedReview {
		pos := make(map[uuid.UUID]int, len(policy.TargetCardIDs))
		for i, id := range policy.TargetCardIDs {
			if _, ok := pos[id]; !ok {
				pos[id] = i
			}
		}
		slices.SortFunc(cards, func(a, b *domain.CardState) int {
			return cmp.Compare(pos[a.ID], pos[b.ID])
		})
		return
	}

	slices.SortFunc(cards, func(a, b *domain.CardState) int {
		var c int
		switch policy.Mode {
		case ModeDueCards:
			c = cmp.Or(
				a.DueDate.Compare(b.DueDate),
				cmp.Compare(a.ConsecutiveCorrect, b.ConsecutiveCorrect),
			)
		case ModeDifficultCards:
			c = cmp.Or(
				cmp.Compare(a.EaseFactor, b.EaseFactor),
				cmp.Compare(b.ConsecutiveIncorrect, a.ConsecutiveIncorrect),
			)
		case ModeAllCards:
			c = a.DueDate.Compare(b.DueDate)
		}
		return cmp.Or(c, tieBreak(a, b))
	})
}

func tieBreak(a, b *domain.CardState) int {
	return cmp.Or(
		a.CreatedAt.Compare(b.CreatedAt),
		slices.Compare(a.ID[:], b.ID[:]),
	)
}

// band splits ordered candidates into reviewed-due, new and remaining cards.
// The relative order inside each band is kept. New cards beyond the policy's
// cap are dropped whether or not banding is requested.
func band(cards []*domain.CardState, policy Policy, now time.Time) [][]*domain.CardState {
	cards = capNew(cards, policy.MaxNewCards)
	if !policy.PrioritizeDueCards {
		return [][]*domain.CardState{cards}
	}

	var due, fresh, rest []*domain.CardState
	for _, c := range cards {
		switch {
		case c.IsNew():
			fresh = append(fresh, c)
		case c.IsDue(now):
			due = append(due, c)
		default:
			rest = append(rest, c)
		}
	}
	return [][]*domain.CardState{due, fresh, rest}
}

// capNew drops new cards after the first limit. A limit of zero keeps all of them.
func capNew(cards []*domain.CardState, limit int) []*domain.CardState {
	if limit <= 0 {
		return cards
	}
	out := make([]*domain.CardState, 0, len(cards))
	n := 0
	for _, c := range cards {
		if c.IsNew() {
			if n == limit {
				continue
			}
			n++
		}
		out = append(out, c)
	}
	return out
}

// truncate keeps the first limit cards across all bands.
func truncate(bands [][]*domain.CardState, limit int) [][]*domain.CardState {
	out := make([][]*domain.CardState, 0, len(bands))
	for _, b := range bands {
		if limit <= 0 {
			break
		}
		if len(b) > limit {
			b = b[:limit]
		}
		limit -= len(b)
		out = append(out, b)
	}
	return out
}
