// Package csvio loads generation inputs from CSV files for offline runs.
package csvio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// File names expected inside an input directory.
const (
	ClassesFile      = "classes.csv"
	RoomsFile        = "rooms.csv"
	SlotsFile        = "time_slots.csv"
	AvailabilityFile = "availability.csv"
)

// Inputs is everything a generation run reads.
type Inputs struct {
	Classes      []models.Class
	Rooms        []models.Room
	Slots        []models.TimeSlot
	Availability []models.InstructorAvailability
}

// LoadDir reads the four input files from dir. The availability file is optional.
func LoadDir(dir string) (Inputs, error) {
	var in Inputs
	if err := loadFile(filepath.Join(dir, ClassesFile), &in.Classes); err != nil {
		return in, err
	}
	if err := loadFile(filepath.Join(dir, RoomsFile), &in.Rooms); err != nil {
		return in, err
	}
	if err := loadFile(filepath.Join(dir, SlotsFile), &in.Slots); err != nil {
		return in, err
	}
	path := filepath.Join(dir, AvailabilityFile)
	if _, err := os.Stat(path); err == nil {
		if err := loadFile(path, &in.Availability); err != nil {
			return in, err
		}
	}
	return in, nil
}

// decode reads CSV rows from r into out, which must point to a slice.
func decode(r io.Reader, out interface{}) error {
	return gocsv.Unmarshal(r, out)
}

func loadFile(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := decode(f, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// ForTerm keeps the classes of one academic year and term.
func (in Inputs) ForTerm(academicYear, term string) []models.Class {
	out := make([]models.Class, 0, len(in.Classes))
	for _, c := range in.Classes {
		if c.AcademicYear == academicYear && c.Term == term {
			out = append(out, c)
		}
	}
	return out
}
