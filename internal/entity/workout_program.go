package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProgramSignature is the content address of a workout program. Two profiles
// with the same signature resolve to the same document, so a program is never
// owned by a single sale.
type ProgramSignature struct {
	Gender         Gender         `json:"gender"`
	ActivityLevel  WeeklyActivity `json:"activity_level"`
	Purpose        Purpose        `json:"purpose"`
	Focus          Focus          `json:"focus"`
	Diseases       string         `json:"diseases"`
	IgnoreDiseases bool           `json:"ignore_diseases"`
}

// Matches reports whether a program with this signature serves the given
// profile: the structural fields must be equal, and the diseases text must
// match unless the program is flagged to ignore it.
func (s ProgramSignature) Matches(a *Agenda) bool {
	probe := a.Signature()
	if s.Gender != probe.Gender ||
		s.ActivityLevel != probe.ActivityLevel ||
		s.Purpose != probe.Purpose ||
		s.Focus != probe.Focus {
		return false
	}
	return s.IgnoreDiseases || s.Diseases == probe.Diseases
}

type WorkoutProgram struct {
	ID        string           `json:"id"`
	Path      string           `json:"path"`
	Signature ProgramSignature `json:"signature"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewWorkoutProgram(path string, sig ProgramSignature) *WorkoutProgram {
	return &WorkoutProgram{
		ID:        uuid.New().String(),
		Path:      path,
		Signature: sig,
		CreatedAt: time.Now().UTC(),
	}
}

type WorkoutProgramRepository interface {
	// Upsert replaces the document path when a program with an identical
	// signature already exists, otherwise inserts a new row.
	Upsert(ctx context.Context, wp *WorkoutProgram) error
	// FindBySignature returns (nil, nil) when no program matches.
	FindBySignature(ctx context.Context, sig ProgramSignature) (*WorkoutProgram, error)
}
