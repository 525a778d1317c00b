package options

import "github.com/cucharaita/storefront/internal/domain"

// Group folds flat option rows into option groups. Groups keep the order in
// which they first appear and options keep their input order inside a group.
// Group metadata is taken from the first row that mentions the group.
func Group(records []domain.OptionRecord) []domain.OptionGroup {
	groups := make([]domain.OptionGroup, 0)
	index := make(map[int64]int)

	for _, rec := range records {
		pos, ok := index[rec.Group.ID]
		if !ok {
			g := rec.Group
			g.Options = nil
			groups = append(groups, g)
			pos = len(groups) - 1
			index[rec.Group.ID] = pos
		}

		opt := rec.Option
		opt.GroupID = rec.Group.ID
		groups[pos].Options = append(groups[pos].Options, opt)
	}

	return groups
}

// Find returns the group with the given id.
func Find(groups []domain.OptionGroup, groupID int64) (domain.OptionGroup, bool) {
	for _, g := range groups {
		if g.ID == groupID {
			return g, true
		}
	}
	return domain.OptionGroup{}, false
}

// Option returns the option with the given id inside a group.
func Option(group domain.OptionGroup, optionID int64) (domain.Option, bool) {
	for _, o := range group.Options {
		if o.ID == optionID {
			return o, true
		}
	}
	return domain.Option{}, false
}
