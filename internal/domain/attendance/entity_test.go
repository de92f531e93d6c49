package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayLog_Record_SecondWriteRejected(t *testing.T) {
	log := NewDayLog("emp-1", time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC))

	require.NoError(t, log.Record(PunchMorningIn, "07:45:00"))
	err := log.Record(PunchMorningIn, "07:59:00")

	assert.ErrorIs(t, err, ErrSlotAlreadyFilled)
	assert.Equal(t, "07:45:00", *log.MorningIn.Time)
}

func TestDayLog_Justify_TerminalForSlot(t *testing.T) {
	log := NewDayLog("emp-1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, log.Justify(PunchAfternoonOut, "https://files/a.pdf"))

	assert.ErrorIs(t, log.Record(PunchAfternoonOut, "18:01:00"), ErrSlotAlreadyFilled)
	assert.ErrorIs(t, log.Justify(PunchAfternoonOut, "https://files/b.pdf"), ErrSlotAlreadyFilled)
	assert.Nil(t, log.AfternoonOut.Time)
	assert.Equal(t, "https://files/a.pdf", *log.AfternoonOut.JustificationURL)
	assert.True(t, log.AfternoonOut.IsJustified())
}

func TestDayLog_Justify_RejectsRecordedSlot(t *testing.T) {
	log := NewDayLog("emp-1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, log.Record(PunchMorningOut, "12:03:00"))

	assert.ErrorIs(t, log.Justify(PunchMorningOut, "https://files/a.pdf"), ErrSlotAlreadyFilled)
	assert.Nil(t, log.MorningOut.JustificationURL)
}

func TestDayLog_Record_InvalidInput(t *testing.T) {
	log := NewDayLog("emp-1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	assert.ErrorIs(t, log.Record(PunchType("lunch"), "12:00:00"), ErrInvalidPunchType)
	assert.ErrorIs(t, log.Record(PunchMorningIn, "7h45"), ErrInvalidTimeOfDay)
	assert.False(t, log.IsFilled(PunchMorningIn))
}

func TestDayLog_IsComplete(t *testing.T) {
	var nilLog *DayLog
	assert.False(t, nilLog.IsComplete())
	assert.False(t, nilLog.IsFilled(PunchMorningIn))

	log := NewDayLog("emp-1", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	for _, p := range PunchTypes[:3] {
		require.NoError(t, log.Record(p, "10:00"))
	}
	assert.False(t, log.IsComplete())
	require.NoError(t, log.Justify(PunchAfternoonOut, "ref"))
	assert.True(t, log.IsComplete())
}

func TestNewDayLog_TruncatesToDate(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	log := NewDayLog("emp-1", time.Date(2024, 1, 2, 23, 30, 0, 0, loc))

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, loc), log.Date)
}

func TestKind_Candidates(t *testing.T) {
	assert.Equal(t, []PunchType{PunchMorningIn, PunchAfternoonIn}, KindClockIn.Candidates())
	assert.Equal(t, []PunchType{PunchMorningOut, PunchAfternoonOut}, KindClockOut.Candidates())
	assert.Equal(t, PunchTypes, KindAny.Candidates())
}
