package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyAddPeriods(t *testing.T) {
	t.Run("weekly steps seven days", func(t *testing.T) {
		got := FrequencyWeekly.AddPeriods(Date(2026, time.January, 1), 1)
		assert.Equal(t, Date(2026, time.January, 8), got)
	})

	t.Run("fortnightly steps fourteen days", func(t *testing.T) {
		got := FrequencyFortnightly.AddPeriods(Date(2026, time.February, 20), 52)
		assert.Equal(t, Date(2028, time.February, 18), got)
	})

	t.Run("monthly clamps to the end of short months", func(t *testing.T) {
		start := Date(2026, time.January, 31)
		assert.Equal(t, Date(2026, time.February, 28), FrequencyMonthly.AddPeriods(start, 1))
		assert.Equal(t, Date(2026, time.March, 31), FrequencyMonthly.AddPeriods(start, 2))
		assert.Equal(t, Date(2026, time.April, 30), FrequencyMonthly.AddPeriods(start, 3))
	})

	t.Run("monthly keeps the start day over year boundaries", func(t *testing.T) {
		got := FrequencyMonthly.AddPeriods(Date(2026, time.November, 15), 3)
		assert.Equal(t, Date(2027, time.February, 15), got)
	})

	t.Run("monthly hits leap day from the 29th", func(t *testing.T) {
		got := FrequencyMonthly.AddPeriods(Date(2028, time.January, 29), 1)
		assert.Equal(t, Date(2028, time.February, 29), got)
	})
}

func TestPeriodsPerYear(t *testing.T) {
	cases := map[Frequency]int{
		FrequencyWeekly:      52,
		FrequencyFortnightly: 26,
		FrequencyMonthly:     12,
	}
	for freq, want := range cases {
		got, err := freq.PeriodsPerYear()
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Frequency("daily").PeriodsPerYear()
	assert.Error(t, err)
}
