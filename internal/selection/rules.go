package selection

import (
	"fmt"

	"github.com/cucharaita/storefront/internal/domain"
)

// Status reports how far a group is from being satisfied.
type Status struct {
	GroupID   int64  `json:"group_id"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	Selected  int    `json:"selected"`
	Needed    int    `json:"needed"`
	Required  bool   `json:"required"`
	Satisfied bool   `json:"satisfied"`
	Message   string `json:"message,omitempty"`
}

// Satisfied applies the cardinality rule of a group to a pick count.
//
//	single:              required => exactly one; optional => at most one
//	multiple, limit > 0: required => count == limit; optional => 0 or limit
//	multiple, limit 0:   required => at least one; optional => anything
func Satisfied(g domain.OptionGroup, count int) bool {
	if !g.IsMultiple() {
		if g.Required {
			return count == 1
		}
		return count <= 1
	}

	if g.Limit > 0 {
		if count == g.Limit {
			return true
		}
		return !g.Required && count == 0
	}

	if g.Required {
		return count >= 1
	}
	return true
}

func statusFor(g domain.OptionGroup, count int) Status {
	st := Status{
		GroupID:   g.ID,
		Name:      g.Name,
		Mode:      string(g.Mode),
		Selected:  count,
		Needed:    needed(g),
		Required:  g.Required,
		Satisfied: Satisfied(g, count),
	}
	if st.Satisfied {
		return st
	}

	switch {
	case !g.IsMultiple():
		st.Message = fmt.Sprintf("Elige una opción de %s", g.Name)
	case g.Limit > 0:
		st.Message = fmt.Sprintf("Elige %d opciones de %s (%d/%d)", g.Limit, g.Name, count, g.Limit)
	default:
		st.Message = fmt.Sprintf("Elige al menos una opción de %s", g.Name)
	}
	return st
}

func needed(g domain.OptionGroup) int {
	switch {
	case !g.IsMultiple():
		return 1
	case g.Limit > 0:
		return g.Limit
	case g.Required:
		return 1
	}
	return 0
}
