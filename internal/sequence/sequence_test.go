package sequence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sh44ni/telalalbedaya-sub000/internal/sequence"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		prefix   sequence.Prefix
		want     string
	}{
		{
			name:   "EmptyCollection",
			prefix: sequence.Transaction,
			want:   "TPL-0001",
		},
		{
			name:     "GapIsNeverReused",
			existing: []string{"TPL-0001", "TPL-0002", "TPL-0004"},
			prefix:   sequence.Transaction,
			want:     "TPL-0005",
		},
		{
			name:     "UnorderedInput",
			existing: []string{"RNT-0009", "RNT-0003", "RNT-0010"},
			prefix:   sequence.Rental,
			want:     "RNT-0011",
		},
		{
			name:     "MalformedIdentifiersCountAsZero",
			existing: []string{"", "TPL-", "TPL-abc", "garbage", "PRP-0042"},
			prefix:   sequence.Transaction,
			want:     "TPL-0001",
		},
		{
			name:     "OtherPrefixesIgnored",
			existing: []string{"CUS-0007", "PRJ-0100"},
			prefix:   sequence.Customer,
			want:     "CUS-0008",
		},
		{
			name:     "GrowsPastPadding",
			existing: []string{"PRP-9999"},
			prefix:   sequence.Property,
			want:     "PRP-10000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sequence.Next(tt.existing, tt.prefix, sequence.Width)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_NeverGoesBackward(t *testing.T) {
	existing := []string{}

	prev := 0
	for range 25 {
		id := sequence.Next(existing, sequence.Receipt, sequence.Width)

		n, ok := sequence.Parse(id, sequence.Receipt)
		assert.True(t, ok)
		assert.Greater(t, n, prev)

		prev = n
		existing = append(existing, id)
	}

	assert.Equal(t, "RCP-0025", existing[len(existing)-1])
}

func TestParse(t *testing.T) {
	n, ok := sequence.Parse("PRJ-0012", sequence.Project)
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = sequence.Parse("PRJ-0012", sequence.Property)
	assert.False(t, ok)

	_, ok = sequence.Parse("PRJ-12a", sequence.Project)
	assert.False(t, ok)
}
