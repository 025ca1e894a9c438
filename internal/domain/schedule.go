package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the 6-field form with a leading seconds field.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// JobSchedule is the recurrence policy: either a fixed interval in seconds
// or a cron expression. Exactly one of the two fields is set.
type JobSchedule struct {
	Interval uint32 `json:"interval,omitempty"`
	Cron     string `json:"cron,omitempty"`
}

func (s JobSchedule) IsCron() bool { return s.Cron != "" }

// ParseSchedule parses a numeric string as an interval in seconds, anything
// else as a cron expression split on '|' or space. A 5-field expression is
// prepended with "0" for seconds; 6 and 7 fields are taken as-is. The
// canonical form is the space-joined field list.
func ParseSchedule(s string) (JobSchedule, error) {
	if s == "" {
		return JobSchedule{}, &InvalidParamsError{Name: "schedule"}
	}
	if interval, err := strconv.ParseUint(s, 10, 32); err == nil {
		return JobSchedule{Interval: uint32(interval)}, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ' ' })
	switch len(fields) {
	case 5:
		fields = append([]string{"0"}, fields...)
	case 6, 7:
	default:
		return JobSchedule{}, &InvalidParamsError{Name: "schedule"}
	}
	// The optional 7th field is the year; robfig/cron has no year support,
	// so it is kept in the canonical string but not constrained.
	if _, err := cronParser.Parse(strings.Join(fields[:6], " ")); err != nil {
		return JobSchedule{}, &InvalidParamsError{Name: "schedule"}
	}
	return JobSchedule{Cron: strings.Join(fields, " ")}, nil
}

// Next returns the first fire time strictly after the given epoch second,
// or false when the schedule has run out (past until, or no cron match).
func (s JobSchedule) Next(after int64, until *int64) (int64, bool) {
	var next int64
	if s.IsCron() {
		fields := strings.Fields(s.Cron)
		sched, err := cronParser.Parse(strings.Join(fields[:6], " "))
		if err != nil {
			return 0, false
		}
		t := sched.Next(time.Unix(after, 0).UTC())
		if t.IsZero() {
			return 0, false
		}
		next = t.Unix()
	} else {
		if s.Interval == 0 {
			return 0, false
		}
		next = after - after%int64(s.Interval) + int64(s.Interval)
	}
	if until != nil && next > *until {
		return 0, false
	}
	return next, true
}

// String renders the canonical spec form.
func (s JobSchedule) String() string {
	if s.IsCron() {
		return s.Cron
	}
	return strconv.FormatUint(uint64(s.Interval), 10)
}

// NowSecs is the wall clock in epoch seconds, the unit the scheduled and
// schedules tables use.
func NowSecs() int64 {
	return time.Now().Unix()
}

// ScheduleRow mirrors the schedules table. next_id points at the pending
// occurrence of the recurring job; last_id at the previous one.
type ScheduleRow struct {
	ScheduleID string `json:"schedule_id"`
	Schedule   string `json:"schedule"`
	Until      *int64 `json:"until,omitempty"`
	LastID     *int64 `json:"last_id,omitempty"`
	LastAt     *int64 `json:"last_at,omitempty"`
	NextID     *int64 `json:"next_id,omitempty"`
	NextAt     *int64 `json:"next_at,omitempty"`
	Inactive   bool   `json:"inactive"`
}
