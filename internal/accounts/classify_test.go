package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMainGroup(t *testing.T) {
	tests := []struct {
		number int
		want   int
	}{
		{0, 1},
		{1000, 1},
		{3999, 1},
		{4000, 2},
		{4500, 2},
		{4999, 2},
		{5000, 1},
		{5999, 1},
		{6000, 5},
		{6340, 5},
		{7999, 5},
		{8000, 1},
		{-4000, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultMainGroup(tt.number), "DefaultMainGroup(%d)", tt.number)
	}
}

func TestEffectiveMainGroup(t *testing.T) {
	nine := 9
	one := 1

	assert.Equal(t, 2, EffectiveMainGroup(4000, nil))
	assert.Equal(t, 9, EffectiveMainGroup(4000, &nine))
	assert.Equal(t, 1, EffectiveMainGroup(6000, &one), "override wins even when it matches the fallback")
}
