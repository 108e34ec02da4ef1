// Package task holds the task record and the rules derived from its due
// date and time.
package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	timeLayoutSeconds = "15:04:05"
	displayLayout     = "Mon, Jan 2, 3:04 PM"
)

var (
	ErrMissingField = errors.New("please fill in all fields")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidTime  = errors.New("invalid time")
	ErrNotFound     = errors.New("task not found")
)

type Task struct {
	ID        int64
	Name      string
	Date      string
	Time      string
	Completed bool
	Notified  bool
	CreatedAt time.Time
}

// Draft is the raw input of the add form.
type Draft struct {
	Name string
	Date string
	Time string
}

// Normalize trims every field and checks that the date and time combine into
// a due instant. The returned draft is what gets stored.
func (d Draft) Normalize() (Draft, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Date = strings.TrimSpace(d.Date)
	d.Time = strings.TrimSpace(d.Time)
	if d.Name == "" || d.Date == "" || d.Time == "" {
		return d, ErrMissingField
	}
	if _, err := ParseDue(d.Date, d.Time); err != nil {
		return d, err
	}
	return d, nil
}

// ParseDue combines a calendar date and a time of day into one instant in
// the local timezone.
func ParseDue(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: want YYYY-MM-DD", ErrInvalidDate, date)
	}
	tod, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, time.Local), nil
}

func parseClock(clock string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, timeLayoutSeconds} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q: want HH:MM", ErrInvalidTime, clock)
}

// Due returns the due instant. Tasks only enter the store through
// Draft.Normalize, so a parse failure yields the zero time.
func (t Task) Due() time.Time {
	due, err := ParseDue(t.Date, t.Time)
	if err != nil {
		return time.Time{}
	}
	return due
}

func (t Task) Overdue(now time.Time) bool {
	return !t.Completed && t.Due().Before(now)
}

func (t Task) DisplayDue() string {
	due := t.Due()
	if due.IsZero() {
		return t.Date + " " + t.Time
	}
	return due.Format(displayLayout)
}

// Sorted returns a copy of tasks in display order: ascending due instant,
// ties kept in the order they were given.
func Sorted(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Due().Before(out[j].Due())
	})
	return out
}

// IndexOf returns the position of id in tasks, or -1.
func IndexOf(tasks []Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
