package selection

import (
	"errors"
	"fmt"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/options"
	"github.com/google/uuid"
)

var (
	ErrLimitReached  = errors.New("selection limit reached")
	ErrUnknownGroup  = errors.New("unknown option group")
	ErrUnknownOption = errors.New("unknown option")
	ErrWrongMode     = errors.New("operation does not match group mode")
)

// ValidationError ties a rejected pick to its group and option.
type ValidationError struct {
	GroupID  int64
	OptionID int64
	Message  string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("group %d option %d: %v", e.GroupID, e.OptionID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Selector tracks the picks and quantity for one product while the customer
// configures it.
type Selector struct {
	groups   []domain.OptionGroup
	state    State
	quantity int
	newID    func() string
}

func NewSelector(groups []domain.OptionGroup) *Selector {
	return &Selector{
		groups:   groups,
		state:    make(State),
		quantity: 1,
		newID:    uuid.NewString,
	}
}

// Toggle picks an option in a single group. Picking the current option clears
// the group, picking another one replaces it.
func (s *Selector) Toggle(groupID, optionID int64) error {
	g, opt, err := s.lookup(groupID, optionID)
	if err != nil {
		return err
	}
	if g.IsMultiple() {
		return s.reject(g, optionID, ErrWrongMode, "")
	}

	if cur, ok := s.state[groupID]; ok && len(cur.Options) == 1 && cur.Options[0].OptionID == optionID {
		delete(s.state, groupID)
		return nil
	}

	s.state[groupID] = domain.GroupSelection{
		GroupID:   g.ID,
		GroupName: g.Name,
		Multiple:  false,
		Options:   []domain.SelectedOption{s.instance(opt)},
	}
	return nil
}

// Add appends one more instance of an option to a multiple group and returns
// the instance id. Once a positive limit is reached further picks are refused.
func (s *Selector) Add(groupID, optionID int64) (string, error) {
	g, opt, err := s.lookup(groupID, optionID)
	if err != nil {
		return "", err
	}
	if !g.IsMultiple() {
		return "", s.reject(g, optionID, ErrWrongMode, "")
	}

	cur := s.state[groupID]
	if g.Limit > 0 && len(cur.Options) >= g.Limit {
		msg := fmt.Sprintf("Solo puedes elegir %d opciones de %s", g.Limit, g.Name)
		return "", s.reject(g, optionID, ErrLimitReached, msg)
	}

	inst := s.instance(opt)
	cur.GroupID = g.ID
	cur.GroupName = g.Name
	cur.Multiple = true
	cur.Options = append(cur.Options, inst)
	s.state[groupID] = cur
	return inst.InstanceID, nil
}

// Remove drops one picked instance. It reports whether anything was removed.
func (s *Selector) Remove(groupID int64, instanceID string) bool {
	cur, ok := s.state[groupID]
	if !ok {
		return false
	}
	for i, o := range cur.Options {
		if o.InstanceID != instanceID {
			continue
		}
		cur.Options = append(cur.Options[:i:i], cur.Options[i+1:]...)
		if len(cur.Options) == 0 {
			delete(s.state, groupID)
		} else {
			s.state[groupID] = cur
		}
		return true
	}
	return false
}

func (s *Selector) SetQuantity(n int) {
	s.quantity = n
}

func (s *Selector) Quantity() int {
	return s.quantity
}

// State returns a copy of the current picks.
func (s *Selector) State() State {
	return s.state.Clone()
}

// CanAddToCart gates the add action: quantity of at least one and every group
// satisfied. A product without groups only needs the quantity.
func (s *Selector) CanAddToCart() bool {
	if s.quantity < 1 {
		return false
	}
	for _, g := range s.groups {
		if !Satisfied(g, s.state.Count(g.ID)) {
			return false
		}
	}
	return true
}

func (s *Selector) Statuses() []Status {
	out := make([]Status, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, statusFor(g, s.state.Count(g.ID)))
	}
	return out
}

func (s *Selector) lookup(groupID, optionID int64) (domain.OptionGroup, domain.Option, error) {
	g, ok := options.Find(s.groups, groupID)
	if !ok {
		return domain.OptionGroup{}, domain.Option{}, &ValidationError{GroupID: groupID, OptionID: optionID, Err: ErrUnknownGroup}
	}
	opt, ok := options.Option(g, optionID)
	if !ok {
		return g, domain.Option{}, s.reject(g, optionID, ErrUnknownOption, "")
	}
	return g, opt, nil
}

func (s *Selector) reject(g domain.OptionGroup, optionID int64, err error, msg string) error {
	return &ValidationError{GroupID: g.ID, OptionID: optionID, Message: msg, Err: err}
}

func (s *Selector) instance(opt domain.Option) domain.SelectedOption {
	return domain.SelectedOption{
		InstanceID: s.newID(),
		OptionID:   opt.ID,
		Name:       opt.Name,
		AddPrice:   opt.AddPrice,
	}
}
