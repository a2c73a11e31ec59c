package mirror

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	for n := 1; n <= 10; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			assert.Equal(t, n, AllOrFail(false).Required(n))
			assert.Equal(t, n, AllOrFail(true).Required(n))
			assert.Equal(t, 1, AtLeastOne(false).Required(n))
			assert.Equal(t, n/2+1, Quorum(false).Required(n))
			assert.Greater(t, 2*Quorum(true).Required(n), n, "quorum must be a strict majority")
		})
	}
}

func TestParseStrategyKind(t *testing.T) {
	tests := []struct {
		in      string
		want    StrategyKind
		wantErr bool
	}{
		{in: "all_or_fail", want: KindAllOrFail},
		{in: "All-Or-Fail", want: KindAllOrFail},
		{in: "at_least_one", want: KindAtLeastOne},
		{in: "quorum", want: KindQuorum},
		{in: " majority ", want: KindQuorum},
		{in: "most", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategyKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			roundTrip, err := ParseStrategyKind(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, roundTrip)
		})
	}
}

func TestParseReturnPolicy(t *testing.T) {
	for _, p := range []ReturnPolicy{WaitAll, Optimistic, FastFail} {
		got, err := ParseReturnPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParseReturnPolicy("")
	require.NoError(t, err)
	assert.Equal(t, WaitAll, got)

	_, err = ParseReturnPolicy("eventually")
	assert.Error(t, err)
}

func TestWriteStrategyString(t *testing.T) {
	assert.Equal(t, "quorum", Quorum(false).String())
	assert.Equal(t, "all_or_fail+rollback", AllOrFail(true).String())
}
