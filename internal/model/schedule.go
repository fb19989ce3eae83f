package model

import (
	"fmt"
	"strings"
	"time"
)

// Schedule identifies one monthly PBS publication. Month is the upper-cased
// English month name, matching how the PBS schedule pages label releases.
type Schedule struct {
	Code  string `json:"code"`
	Year  int    `json:"year"`
	Month string `json:"month"`
}

// ScheduleFor builds the schedule metadata for the month containing t.
func ScheduleFor(t time.Time) Schedule {
	year := t.UTC().Year()
	month := t.UTC().Month()
	return Schedule{
		Code:  fmt.Sprintf("%04d-%02d", year, int(month)),
		Year:  year,
		Month: strings.ToUpper(month.String()),
	}
}

// ScheduleEntry is a distinct ingested schedule as returned by the
// schedules listing, newest first.
type ScheduleEntry struct {
	ScheduleYear  int    `json:"schedule_year"`
	ScheduleMonth string `json:"schedule_month"`
	ScheduleCode  string `json:"schedule_code"`
	Latest        bool   `json:"latest"`
}
