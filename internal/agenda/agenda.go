// Package agenda loads a read-only TOML list of tasks into the store at
// start-up. Nothing is written back.
//
//	[[task]]
//	name = "Pay bills"
//	date = "2025-01-01"
//	time = "10:00"
package agenda

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"chime/internal/task"
)

type entry struct {
	Name string `toml:"name"`
	Date string `toml:"date"`
	Time string `toml:"time"`
}

type file struct {
	Tasks []entry `toml:"task"`
}

type Adder interface {
	Add(d task.Draft) (task.Task, error)
}

func Load(path string) ([]task.Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	drafts, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return drafts, nil
}

// Parse decodes and validates every entry. One bad entry rejects the whole
// agenda.
func Parse(data []byte) ([]task.Draft, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	drafts := make([]task.Draft, 0, len(f.Tasks))
	for i, e := range f.Tasks {
		d, err := task.Draft{Name: e.Name, Date: e.Date, Time: e.Time}.Normalize()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// Import adds the drafts in order and returns how many were added.
func Import(a Adder, drafts []task.Draft) (int, error) {
	for i, d := range drafts {
		if _, err := a.Add(d); err != nil {
			return i, fmt.Errorf("import task %d: %w", i+1, err)
		}
	}
	return len(drafts), nil
}
