package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AvailabilitySlot is one weekly availability window: a day of the week and a
// local time range in "HH:MM" form.
type AvailabilitySlot struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Availability is a student's declared weekly availability. Either Slots or
// the legacy AvailableDays/StartTime/EndTime triple may be populated; an
// empty value means no restrictions.
type Availability struct {
	Slots         []AvailabilitySlot `json:"slots,omitempty"`
	AvailableDays []string           `json:"availableDays,omitempty"`
	StartTime     string             `json:"startTime,omitempty"`
	EndTime       string             `json:"endTime,omitempty"`
}

// Value implements driver.Valuer so Availability persists as jsonb.
func (a Availability) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for the jsonb column.
func (a *Availability) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Availability{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return fmt.Errorf("unsupported availability source type %T", src)
}

// normalized flattens the legacy triple into the slot form.
func (a Availability) normalized() []AvailabilitySlot {
	if len(a.Slots) > 0 {
		return a.Slots
	}
	slots := make([]AvailabilitySlot, 0, len(a.AvailableDays))
	for _, day := range a.AvailableDays {
		slots = append(slots, AvailabilitySlot{Day: day, StartTime: a.StartTime, EndTime: a.EndTime})
	}
	return slots
}

// CheckAvailability reports whether the proposed meeting time falls inside
// the student's declared weekly availability, with a human-readable
// explanation. Bounds are inclusive. A student with no declared windows is
// treated as always available. Advisory only; callers must not block a
// transition on the result.
func CheckAvailability(meeting time.Time, av Availability) (bool, string) {
	slots := av.normalized()
	if len(slots) == 0 {
		return true, "no availability restrictions declared"
	}

	day := meeting.Weekday().String()
	minutes := meeting.Hour()*60 + meeting.Minute()

	dayMatched := false
	for _, slot := range slots {
		if !sameDay(slot.Day, day) {
			continue
		}
		dayMatched = true
		start, err := parseClock(slot.StartTime)
		if err != nil {
			continue
		}
		end, err := parseClock(slot.EndTime)
		if err != nil {
			continue
		}
		if minutes >= start && minutes <= end {
			return true, fmt.Sprintf("%s %s is within the declared availability", day, clock(minutes))
		}
	}

	if !dayMatched {
		return false, fmt.Sprintf("%s is not among the declared available days", day)
	}
	return false, fmt.Sprintf("%s is outside the available hours on %s", clock(minutes), day)
}

func sameDay(declared, actual string) bool {
	declared = strings.ToLower(strings.TrimSpace(declared))
	actual = strings.ToLower(actual)
	if declared == actual {
		return true
	}
	// Tolerate abbreviated day names ("Mon", "Tue").
	return len(declared) >= 3 && strings.HasPrefix(actual, declared[:3])
}

// parseClock converts "HH:MM" (or "H:MM") to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
