package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduleKeyNormalisesOverflow(t *testing.T) {
	assert.Equal(t, ScheduleKey{Month: 11, Year: 2020}, NewScheduleKey(-1, 2021))
	assert.Equal(t, ScheduleKey{Month: 0, Year: 2022}, NewScheduleKey(12, 2021))
	assert.Equal(t, ScheduleKey{Month: 1, Year: 2023}, NewScheduleKey(25, 2021))
	assert.Equal(t, ScheduleKey{Month: 10, Year: 2019}, NewScheduleKey(-14, 2021))
}

func TestScheduleKeyNeighbours(t *testing.T) {
	dec := ScheduleKey{Month: 11, Year: 2021}
	assert.Equal(t, ScheduleKey{Month: 0, Year: 2022}, dec.NextMonthKey())
	assert.Equal(t, ScheduleKey{Month: 10, Year: 2021}, dec.PrevMonthKey())

	jan := ScheduleKey{Month: 0, Year: 2022}
	assert.Equal(t, ScheduleKey{Month: 11, Year: 2021}, jan.PrevMonthKey())
}

func TestScheduleKeyDaysInMonth(t *testing.T) {
	assert.Equal(t, 28, ScheduleKey{Month: 1, Year: 2021}.DaysInMonth())
	assert.Equal(t, 29, ScheduleKey{Month: 1, Year: 2020}.DaysInMonth())
	assert.Equal(t, 31, ScheduleKey{Month: 9, Year: 2021}.DaysInMonth())
	assert.Equal(t, 30, ScheduleKey{Month: 10, Year: 2021}.DaysInMonth())
}

func TestScheduleKeyWeekdayMondayFirst(t *testing.T) {
	// February 2021 starts on a Monday and ends on a Sunday.
	feb := ScheduleKey{Month: 1, Year: 2021}
	assert.Equal(t, 0, feb.Weekday(1))
	assert.Equal(t, 6, feb.Weekday(7))
	assert.Equal(t, 6, feb.Weekday(28))

	// October 1st 2021 is a Friday.
	oct := ScheduleKey{Month: 9, Year: 2021}
	assert.Equal(t, 4, oct.Weekday(1))
}

func TestRevisionKeyRoundTrip(t *testing.T) {
	key := ScheduleKey{Month: 3, Year: 2022}
	rk := key.RevisionKey(RevisionActual)
	assert.Equal(t, RevisionKey("3_2022_actual"), rk)

	parsed, kind, err := ParseRevisionKey(rk)
	require.NoError(t, err)
	assert.Equal(t, key, parsed)
	assert.Equal(t, RevisionActual, kind)
}

func TestParseRevisionKeyRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "3_2022", "x_2022_actual", "3_y_actual", "3_2022_draft"} {
		_, _, err := ParseRevisionKey(RevisionKey(raw))
		assert.Error(t, err, raw)
	}
}

func TestRevisionTypeOpposite(t *testing.T) {
	assert.Equal(t, RevisionActual, RevisionPrimary.Opposite())
	assert.Equal(t, RevisionPrimary, RevisionActual.Opposite())
	assert.True(t, RevisionPrimary.Valid())
	assert.False(t, RevisionType("draft").Valid())
}

func TestIsInFuture(t *testing.T) {
	now := time.Date(2021, time.October, 15, 12, 0, 0, 0, time.UTC)

	assert.False(t, ScheduleKey{Month: 9, Year: 2021}.IsInFuture(now), "current month")
	assert.False(t, ScheduleKey{Month: 8, Year: 2021}.IsInFuture(now), "previous month")
	assert.True(t, ScheduleKey{Month: 10, Year: 2021}.IsInFuture(now), "next month")
	assert.True(t, ScheduleKey{Month: 0, Year: 2022}.IsInFuture(now), "next year")
	assert.False(t, ScheduleKey{Month: 11, Year: 2020}.IsInFuture(now), "previous year")
}
