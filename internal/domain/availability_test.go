package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2026-03-02 is a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestCheckAvailability_NoRestrictions(t *testing.T) {
	ok, explanation := CheckAvailability(monday(10, 0), Availability{})
	assert.True(t, ok)
	assert.Equal(t, "no availability restrictions declared", explanation)
}

func TestCheckAvailability_Slots(t *testing.T) {
	av := Availability{Slots: []AvailabilitySlot{
		{Day: "Monday", StartTime: "09:00", EndTime: "12:00"},
		{Day: "Monday", StartTime: "14:00", EndTime: "17:00"},
	}}

	tests := []struct {
		name    string
		meeting time.Time
		want    bool
	}{
		{"inside first slot", monday(10, 30), true},
		{"exactly at slot start", monday(9, 0), true},
		{"exactly at slot end", monday(12, 0), true},
		{"one minute before start", monday(8, 59), false},
		{"one minute after end", monday(12, 1), false},
		{"inside second slot", monday(15, 0), true},
		{"between slots", monday(13, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, explanation := CheckAvailability(tt.meeting, av)
			assert.Equal(t, tt.want, ok)
			assert.NotEmpty(t, explanation)
		})
	}
}

func TestCheckAvailability_DayNotDeclared(t *testing.T) {
	av := Availability{Slots: []AvailabilitySlot{
		{Day: "Tuesday", StartTime: "09:00", EndTime: "17:00"},
	}}

	ok, explanation := CheckAvailability(monday(10, 0), av)
	assert.False(t, ok)
	assert.Contains(t, explanation, "Monday is not among the declared available days")
}

func TestCheckAvailability_TimeOutsideHours(t *testing.T) {
	av := Availability{Slots: []AvailabilitySlot{
		{Day: "Monday", StartTime: "09:00", EndTime: "12:00"},
	}}

	ok, explanation := CheckAvailability(monday(18, 0), av)
	assert.False(t, ok)
	assert.Contains(t, explanation, "18:00 is outside the available hours on Monday")
}

func TestCheckAvailability_LegacyFormat(t *testing.T) {
	av := Availability{
		AvailableDays: []string{"Monday", "Wednesday"},
		StartTime:     "10:00",
		EndTime:       "16:00",
	}

	ok, _ := CheckAvailability(monday(12, 0), av)
	assert.True(t, ok)

	ok, _ = CheckAvailability(monday(9, 59), av)
	assert.False(t, ok)

	// 2026-03-03 is a Tuesday, not in the legacy day list.
	tuesday := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	ok, explanation := CheckAvailability(tuesday, av)
	assert.False(t, ok)
	assert.Contains(t, explanation, "Tuesday")
}

func TestCheckAvailability_AbbreviatedDayNames(t *testing.T) {
	av := Availability{Slots: []AvailabilitySlot{
		{Day: "mon", StartTime: "09:00", EndTime: "17:00"},
	}}

	ok, _ := CheckAvailability(monday(10, 0), av)
	assert.True(t, ok)
}

func TestCheckAvailability_MalformedSlotSkipped(t *testing.T) {
	av := Availability{Slots: []AvailabilitySlot{
		{Day: "Monday", StartTime: "not-a-time", EndTime: "12:00"},
	}}

	ok, _ := CheckAvailability(monday(10, 0), av)
	assert.False(t, ok)
}
