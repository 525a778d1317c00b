package cart

import (
	"fmt"
	"testing"
	"time"

	"github.com/cucharaita/storefront/internal/domain"
	"github.com/cucharaita/storefront/internal/selection"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAggregator() *Aggregator {
	n := 0
	return &Aggregator{
		newID: func() string {
			n++
			return fmt.Sprintf("line-%d", n)
		},
		now: func() time.Time { return time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC) },
	}
}

func cake() domain.Product {
	return domain.Product{ID: 1, Name: "Tarta de queso", Image: "tarta.jpg", Price: decimal.NewFromInt(20)}
}

func picks(groupID int64, multiple bool, optionIDs ...int64) domain.GroupSelection {
	g := domain.GroupSelection{GroupID: groupID, Multiple: multiple}
	for i, id := range optionIDs {
		g.Options = append(g.Options, domain.SelectedOption{
			InstanceID: fmt.Sprintf("%d-%d", groupID, i),
			OptionID:   id,
			AddPrice:   decimal.NewFromInt(1),
		})
	}
	return g
}

func state(groups ...domain.GroupSelection) selection.State {
	return selection.FromSnapshot(groups)
}

func TestAdd_MergesEqualSelection(t *testing.T) {
	agg := testAggregator()
	c := &domain.Cart{}

	first, err := agg.Add(c, cake(), state(picks(2, true, 20, 21), picks(1, false, 10)), 1)
	require.NoError(t, err)

	second, err := agg.Add(c, cake(), state(picks(1, false, 10), picks(2, true, 21, 20)), 2)
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(23).Equal(c.Lines[0].UnitPrice))
	assert.Equal(t, "Tarta de queso", c.Lines[0].Name)
	assert.Equal(t, "tarta.jpg", c.Lines[0].Image)
}

func TestAdd_DifferentSelectionsAreSeparateLines(t *testing.T) {
	agg := testAggregator()
	c := &domain.Cart{}

	_, err := agg.Add(c, cake(), state(picks(2, true, 20, 20)), 1)
	require.NoError(t, err)
	_, err = agg.Add(c, cake(), state(picks(2, true, 20)), 1)
	require.NoError(t, err)
	_, err = agg.Add(c, cake(), nil, 1)
	require.NoError(t, err)

	require.Len(t, c.Lines, 3)
	assert.Equal(t, "line-1", c.Lines[0].ID)
	assert.Equal(t, "line-3", c.Lines[2].ID)

	require.True(t, Remove(c, "line-2"))
	require.Len(t, c.Lines, 2)
	assert.Equal(t, "line-1", c.Lines[0].ID)
	assert.Equal(t, "line-3", c.Lines[1].ID)
	assert.Equal(t, 1, c.Lines[0].Quantity)
}

func TestAdd_SnapshotIsIndependent(t *testing.T) {
	agg := testAggregator()
	c := &domain.Cart{}
	s := state(picks(2, true, 20))

	_, err := agg.Add(c, cake(), s, 1)
	require.NoError(t, err)

	g := s[2]
	g.Options[0].OptionID = 99
	assert.Equal(t, int64(20), c.Lines[0].Selection[0].Options[0].OptionID)
}

func TestAdd_RejectsQuantityBelowOne(t *testing.T) {
	c := &domain.Cart{}
	_, err := testAggregator().Add(c, cake(), nil, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, c.Lines)
}

func TestDecrease(t *testing.T) {
	agg := testAggregator()
	c := &domain.Cart{}
	_, _ = agg.Add(c, cake(), nil, 2)

	require.True(t, Decrease(c, "line-1"))
	assert.Equal(t, 1, c.Lines[0].Quantity)

	require.True(t, Decrease(c, "line-1"))
	assert.Empty(t, c.Lines)

	assert.False(t, Decrease(c, "line-1"))
	assert.False(t, Remove(c, "line-1"))
}

func TestSubtotalAndTotal(t *testing.T) {
	agg := testAggregator()
	c := &domain.Cart{}
	_, _ = agg.Add(c, cake(), nil, 1)
	_, _ = agg.Add(c, domain.Product{ID: 2, Price: decimal.RequireFromString("2.5")}, nil, 2)

	sub := Subtotal(c)
	assert.True(t, decimal.NewFromInt(25).Equal(sub))
	assert.True(t, decimal.RequireFromString("22.5").Equal(Total(sub, decimal.RequireFromString("2.5"))))
	assert.True(t, decimal.Zero.Equal(Total(sub, decimal.NewFromInt(40))))
}

func TestSameSelection(t *testing.T) {
	tests := []struct {
		name string
		a, b []domain.GroupSelection
		want bool
	}{
		{"both empty", nil, nil, true},
		{"group order ignored", []domain.GroupSelection{picks(1, false, 10), picks(2, true, 20)}, []domain.GroupSelection{picks(2, true, 20), picks(1, false, 10)}, true},
		{"multiplicity matters", []domain.GroupSelection{picks(2, true, 20, 20)}, []domain.GroupSelection{picks(2, true, 20)}, false},
		{"missing group", []domain.GroupSelection{picks(1, false, 10)}, nil, false},
		{"single differs", []domain.GroupSelection{picks(1, false, 10)}, []domain.GroupSelection{picks(1, false, 11)}, false},
		{"mode mismatch", []domain.GroupSelection{picks(1, false, 10)}, []domain.GroupSelection{picks(1, true, 10)}, false},
		{"empty group ignored", []domain.GroupSelection{picks(3, true)}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameSelection(tt.a, tt.b))
		})
	}
}
