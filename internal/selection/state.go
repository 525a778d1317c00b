package selection

import (
	"sort"

	"github.com/cucharaita/storefront/internal/domain"
)

// State maps an option group id to what is currently picked in it. Groups
// with nothing picked are absent.
type State map[int64]domain.GroupSelection

// Count returns how many option instances are picked in the group.
func (s State) Count(groupID int64) int {
	return len(s[groupID].Options)
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for id, g := range s {
		out[id] = cloneGroup(g)
	}
	return out
}

// Snapshot returns the picks ordered by group id, deep copied.
func (s State) Snapshot() []domain.GroupSelection {
	out := make([]domain.GroupSelection, 0, len(s))
	for _, g := range s {
		out = append(out, cloneGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out
}

// Flatten lists every picked instance across groups, single and multiple
// groups alike.
func (s State) Flatten() []domain.SelectedOption {
	var out []domain.SelectedOption
	for _, g := range s.Snapshot() {
		out = append(out, g.Options...)
	}
	return out
}

// FromSnapshot rebuilds a state from a stored snapshot.
func FromSnapshot(snapshot []domain.GroupSelection) State {
	s := make(State, len(snapshot))
	for _, g := range snapshot {
		if len(g.Options) == 0 {
			continue
		}
		s[g.GroupID] = cloneGroup(g)
	}
	return s
}

func cloneGroup(g domain.GroupSelection) domain.GroupSelection {
	c := g
	c.Options = append([]domain.SelectedOption(nil), g.Options...)
	return c
}
