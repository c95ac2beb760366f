package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeLastN(t *testing.T) {
	tests := []struct {
		name  string
		slice []int
		lastN int
		want  []int
	}{
		{name: "shorter than n", slice: []int{1, 2}, lastN: 5, want: []int{1, 2}},
		{name: "equal to n", slice: []int{1, 2, 3}, lastN: 3, want: []int{1, 2, 3}},
		{name: "longer than n", slice: []int{1, 2, 3, 4, 5}, lastN: 2, want: []int{4, 5}},
		{name: "empty", slice: []int{}, lastN: 3, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeLastN(tt.slice, tt.lastN))
		})
	}
}
