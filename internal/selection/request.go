package selection

import "github.com/cucharaita/storefront/internal/domain"

// Pick is one client-side selection action.
type Pick struct {
	GroupID  int64 `json:"group_id"`
	OptionID int64 `json:"option_id"`
}

// FromRequest replays client picks against the product's groups in order:
// toggles for single groups, additions for multiple groups. The first
// rejected pick is returned as a *ValidationError.
func FromRequest(groups []domain.OptionGroup, picks []Pick, quantity int) (*Selector, error) {
	sel := NewSelector(groups)
	sel.SetQuantity(quantity)

	for _, p := range picks {
		g, _, err := sel.lookup(p.GroupID, p.OptionID)
		if err != nil {
			return nil, err
		}
		if g.IsMultiple() {
			if _, err := sel.Add(p.GroupID, p.OptionID); err != nil {
				return nil, err
			}
			continue
		}
		if err := sel.Toggle(p.GroupID, p.OptionID); err != nil {
			return nil, err
		}
	}

	return sel, nil
}
