package domain

import "github.com/shopspring/decimal"

type SelectionMode string

const (
	ModeSingle   SelectionMode = "single"
	ModeMultiple SelectionMode = "multiple"
)

// OptionGroup is a named set of add-ons for a product. Limit is the exact
// number of picks a group needs when positive; zero leaves a multiple group
// unbounded.
type OptionGroup struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Mode     SelectionMode `json:"mode"`
	Limit    int           `json:"limit"`
	Required bool          `json:"required"`
	Options  []Option      `json:"options"`
}

func (g OptionGroup) IsMultiple() bool {
	return g.Mode == ModeMultiple
}

type Option struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	AddPrice decimal.Decimal `json:"add_price"`
	GroupID  int64           `json:"group_id"`
}

// OptionRecord is one row of the product options table joined with its group.
type OptionRecord struct {
	Option Option
	Group  OptionGroup
}

// SelectedOption is one pick inside a group. InstanceID tells apart repeated
// picks of the same option in a multiple group.
type SelectedOption struct {
	InstanceID string          `json:"instance_id,omitempty" bson:"instance_id,omitempty"`
	OptionID   int64           `json:"option_id" bson:"option_id"`
	Name       string          `json:"name" bson:"name"`
	AddPrice   decimal.Decimal `json:"add_price" bson:"add_price"`
}

type GroupSelection struct {
	GroupID   int64            `json:"group_id" bson:"group_id"`
	GroupName string           `json:"group_name" bson:"group_name"`
	Multiple  bool             `json:"multiple" bson:"multiple"`
	Options   []SelectedOption `json:"options" bson:"options"`
}
