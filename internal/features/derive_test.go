package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bcErrors "github.com/ezoic/bikecast/pkg/errors"
)

func TestSeason(t *testing.T) {
	want := map[int]int{
		12: 0, 1: 0, 2: 0,
		3: 1, 4: 1, 5: 1,
		6: 2, 7: 2, 8: 2,
		9: 3, 10: 3, 11: 3,
	}
	for month, season := range want {
		got, err := Season(month)
		require.NoError(t, err)
		assert.Equalf(t, season, got, "month %d", month)
	}

	for _, month := range []int{0, 13, -1} {
		_, err := Season(month)
		assert.ErrorIsf(t, err, bcErrors.ErrInvalidArgument, "month %d", month)
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour, want int
	}{
		{0, Night}, {5, Night},
		{6, Morning}, {12, Morning},
		{13, Afternoon}, {16, Afternoon},
		{17, Evening}, {20, Evening},
		{21, Night}, {23, Night},
	}
	for _, tt := range tests {
		got, err := TimeOfDay(tt.hour)
		require.NoError(t, err)
		assert.Equalf(t, tt.want, got, "hour %d", tt.hour)
	}

	for _, hour := range []int{-1, 24} {
		_, err := TimeOfDay(hour)
		assert.ErrorIs(t, err, bcErrors.ErrInvalidArgument)
	}
}

func TestTimeOfDayTableIsComplete(t *testing.T) {
	counts := map[int]int{}
	for h := 0; h < 24; h++ {
		b, err := TimeOfDay(h)
		require.NoError(t, err)
		counts[b]++
	}
	assert.Equal(t, map[int]int{Night: 9, Morning: 7, Afternoon: 4, Evening: 4}, counts)
}

func TestComfortFlags(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) (int, error)
		v    float64
		want int
	}{
		{"temp lower bound", ComfortableTemp, 0.40, 1},
		{"temp upper bound", ComfortableTemp, 0.65, 1},
		{"temp below", ComfortableTemp, 0.39999, 0},
		{"temp above", ComfortableTemp, 0.65001, 0},
		{"humidity lower bound", ComfortableHumidity, 0.25, 1},
		{"humidity upper bound", ComfortableHumidity, 0.55, 1},
		{"humidity below", ComfortableHumidity, 0.24999, 0},
		{"humidity above", ComfortableHumidity, 0.55001, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComfortFlagsRejectNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ComfortableTemp(v)
		assert.ErrorIs(t, err, bcErrors.ErrInvalidArgument)
		_, err = ComfortableHumidity(v)
		assert.ErrorIs(t, err, bcErrors.ErrInvalidArgument)
	}
}
