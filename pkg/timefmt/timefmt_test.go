package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeStringToSeconds(t *testing.T) {
	cases := map[string]int{
		"":         0,
		"08:00":    28800,
		"08:00:00": 28800,
		"7:45":     27900,
		"16:30:15": 59415,
	}
	for in, want := range cases {
		got, err := TimeStringToSeconds(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestTimeStringToSecondsRejectsGarbage(t *testing.T) {
	for _, in := range []string{"8", "aa:bb", "08:61", "1:2:3:4", "-1:00"} {
		_, err := TimeStringToSeconds(in)
		assert.Error(t, err, in)
	}
}

func TestSecondsToHuman(t *testing.T) {
	assert.Equal(t, "8h 00m", SecondsToHuman(8*3600))
	assert.Equal(t, "7h 30m", SecondsToHuman(7*3600+30*60+59))
	assert.Equal(t, "0h 00m", SecondsToHuman(-120))
	assert.Equal(t, "26h 05m", SecondsToHuman(26*3600+5*60))
}

func TestHumanRoundTripDropsSeconds(t *testing.T) {
	secs, err := TimeStringToSeconds("07:45:00")
	require.NoError(t, err)

	back, err := HumanToSeconds(SecondsToHuman(int64(secs)))
	require.NoError(t, err)
	assert.Equal(t, int64(27900), back)

	// The display has minute granularity.
	secs, err = TimeStringToSeconds("07:45:59")
	require.NoError(t, err)
	back, err = HumanToSeconds(SecondsToHuman(int64(secs)))
	require.NoError(t, err)
	assert.Equal(t, int64(27900), back)
}

func TestSignedHuman(t *testing.T) {
	assert.Equal(t, "+1h 00m", SignedHuman(3600))
	assert.Equal(t, "-0h 30m", SignedHuman(-1800))
}

func TestAtClock(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Prague")
	require.NoError(t, err)

	day := time.Date(2026, time.March, 29, 0, 0, 0, 0, time.UTC)
	got, err := AtClock(day, "08:15", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 29, 8, 15, 0, 0, loc), got)
	assert.Equal(t, "08:15:00", Clock(&got, loc))

	_, err = AtClock(day, "24:00", loc)
	assert.Error(t, err)
	assert.Equal(t, "", Clock(nil, loc))
}
