package domain_test

import (
	"testing"

	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_ApplyClamps(t *testing.T) {
	tests := []struct {
		name    string
		current int
		max     int
		delta   int
		want    int
	}{
		{"Increment", 1, 4, 1, 2},
		{"Increment At Max", 4, 4, 1, 4},
		{"Decrement At Zero", 0, 4, -1, 0},
		{"Large Positive", 2, 6, 100, 6},
		{"Large Negative", 5, 5, -100, 0},
		{"Zero Delta", 3, 5, 0, 3},
		{"Zero Max", 0, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := domain.NewClock("c", "C", tt.current, tt.max)
			require.NoError(t, err)

			got := c.Apply(tt.delta)
			assert.Equal(t, tt.want, got.Current)
			assert.Equal(t, tt.max, got.Max)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestClock_ClampProperty(t *testing.T) {
	for max := 0; max <= 6; max++ {
		for current := 0; current <= max; current++ {
			for delta := -8; delta <= 8; delta++ {
				c := domain.Clock{ID: "x", Current: current, Max: max}.Apply(delta)
				want := current + delta
				if want < 0 {
					want = 0
				}
				if want > max {
					want = max
				}
				if c.Current != want {
					t.Fatalf("clamp(%d%+d, 0, %d) = %d, want %d", current, delta, max, c.Current, want)
				}
			}
		}
	}
}

func TestNewClock_RejectsInvalidBounds(t *testing.T) {
	_, err := domain.NewClock("a", "A", 5, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidClock)

	_, err = domain.NewClock("a", "A", -1, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidClock)

	_, err = domain.NewClock("", "A", 0, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidClock)
}

func TestDefaultClocks_AreValid(t *testing.T) {
	for _, c := range domain.DefaultClocks() {
		assert.NoError(t, c.Validate(), c.ID)
	}
}
