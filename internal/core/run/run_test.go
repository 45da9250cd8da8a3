package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name string
		run  Run
		want Strategy
	}{
		{
			name: "standard run uses two-tree",
			run:  Run{ID: "r1"},
			want: TwoTree,
		},
		{
			name: "tuning run uses range",
			run:  Run{ID: "r2", Tuning: true},
			want: Range,
		},
		{
			name: "shared history uses range",
			run:  Run{ID: "r3", SharedHistory: true},
			want: Range,
		},
		{
			name: "tuning and shared history uses range",
			run:  Run{ID: "r4", Tuning: true, SharedHistory: true},
			want: Range,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategy(tt.run))
		})
	}
}

func TestRun_BaseShort(t *testing.T) {
	r := Run{BaseRevision: "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"}
	assert.Equal(t, r.BaseRevision, r.BaseShort())

	r.BaseRevisionShort = "a1b2c3d"
	assert.Equal(t, "a1b2c3d", r.BaseShort())
}
