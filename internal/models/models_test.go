package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateSetNormalizes(t *testing.T) {
	set := NewDateSet("2026-07-10", "2026-07-08", "", "2026-07-10")

	assert.Equal(t, DateSet{"2026-07-08", "2026-07-10"}, set)
	assert.True(t, set.Contains("2026-07-10"))
	assert.False(t, set.Contains("2026-07-09"))
	assert.Equal(t, DateSet{"2026-07-10"}, set.Within("2026-07-09", "2026-07-31"))
}

func TestDateSetDatabaseEncoding(t *testing.T) {
	value, err := DateSet(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	var decoded DateSet
	require.NoError(t, decoded.Scan([]byte(`["2026-07-10","2026-07-08"]`)))
	assert.Equal(t, DateSet{"2026-07-08", "2026-07-10"}, decoded)

	require.NoError(t, decoded.Scan(nil))
	assert.Empty(t, decoded)

	assert.Error(t, decoded.Scan(42))
	assert.Error(t, decoded.Scan("not json"))
}

func TestAttendanceDayState(t *testing.T) {
	in := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)

	var missing *AttendanceDay
	assert.Equal(t, DayNotStarted, missing.State(nil))
	assert.Equal(t, DayNotStarted, (&AttendanceDay{}).State(nil))

	day := &AttendanceDay{UserID: 1, Day: "2026-10-14", CheckIn: &in}
	assert.Equal(t, DayCheckedIn, day.State(nil))
	assert.Equal(t, DayOnPause, day.State([]Pause{{StartedAt: in.Add(time.Hour)}}))

	day.CheckOut = &out
	assert.Equal(t, DayCheckedOut, day.State(nil))
}

func TestAttendanceDayIsValid(t *testing.T) {
	in := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	before := in.Add(-time.Minute)

	assert.True(t, (&AttendanceDay{UserID: 1, Day: "2026-10-14"}).IsValid())
	assert.False(t, (&AttendanceDay{UserID: 1, Day: "2026-10-14", CheckOut: &in}).IsValid())
	assert.False(t, (&AttendanceDay{UserID: 1, Day: "2026-10-14", CheckIn: &in, CheckOut: &before}).IsValid())
}

func TestOpenIllnessSentinel(t *testing.T) {
	a := &AbsenceRequest{Type: AbsenceIllness, DateFrom: "2026-03-02", DateTo: "2026-03-02"}
	assert.True(t, a.IsOpenIllness())

	a.DateTo = "2026-03-10"
	assert.False(t, a.IsOpenIllness())
	assert.True(t, a.Covers("2026-03-05"))

	a.Type = AbsenceSickday
	a.DateTo = a.DateFrom
	assert.False(t, a.IsOpenIllness())
}

func TestUserRoles(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleEmployee}).IsAdmin())
	assert.False(t, (&User{Role: RoleTempWorker}).HasWorkFund())
	assert.Equal(t, "JN", (&User{DisplayName: "jana nováková"}).Initials())
	assert.Equal(t, "ČŘ", (&User{DisplayName: "čeněk řehoř x"}).Initials())
	assert.False(t, Role("boss").Valid())
}
