package entity

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Agenda is the fitness profile attached to program, nutrition and coaching
// sales. Every field is optional: absent answers stay nil so they can never
// masquerade as valid input. The row is owned by exactly one sale and is
// overwritten in place when a resumed submission supplies corrected values.
type Agenda struct {
	ID             string          `json:"id"`
	Gender         *Gender         `json:"gender,omitempty"`
	Age            *int            `json:"age,omitempty"`
	Height         *int            `json:"height,omitempty"`
	Weight         *int            `json:"weight,omitempty"`
	ActivityLevel  *WeeklyActivity `json:"activity_level,omitempty"`
	DailyActivity  *DailyActivity  `json:"daily_activity,omitempty"`
	Purpose        *Purpose        `json:"purpose,omitempty"`
	Focus          *Focus          `json:"focus,omitempty"`
	Diseases       string          `json:"diseases,omitempty"`
	Trainer        string          `json:"trainer,omitempty"`
}

func NewAgenda() *Agenda {
	return &Agenda{ID: uuid.New().String()}
}

// CopyFrom overwrites all profile fields with the other agenda's values,
// keeping the row identity. Used when a resumption submission arrives.
func (a *Agenda) CopyFrom(other *Agenda) {
	id := a.ID
	*a = *other
	a.ID = id
}

// Signature projects the agenda onto the workout-program matching key.
func (a *Agenda) Signature() ProgramSignature {
	sig := ProgramSignature{Diseases: normalizeDiseases(a.Diseases)}
	if a.Gender != nil {
		sig.Gender = *a.Gender
	}
	if a.ActivityLevel != nil {
		sig.ActivityLevel = *a.ActivityLevel
	}
	if a.Purpose != nil {
		sig.Purpose = *a.Purpose
	}
	if a.Focus != nil {
		sig.Focus = *a.Focus
	}
	return sig
}

// Summary renders the profile for staff notifications.
func (a *Agenda) Summary() string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	if a.Gender != nil {
		line("Gender", a.Gender.String())
	}
	if a.Age != nil {
		line("Age", strconv.Itoa(*a.Age))
	}
	if a.Height != nil {
		line("Height", strconv.Itoa(*a.Height)+" cm")
	}
	if a.Weight != nil {
		line("Weight", strconv.Itoa(*a.Weight)+" kg")
	}
	if a.ActivityLevel != nil {
		line("Workouts", a.ActivityLevel.String())
	}
	if a.DailyActivity != nil {
		line("Lifestyle", a.DailyActivity.String())
	}
	if a.Purpose != nil {
		line("Goal", a.Purpose.String())
	}
	if a.Focus != nil {
		line("Focus", a.Focus.String())
	}
	if a.Diseases != "" {
		line("Health notes", a.Diseases)
	}
	if a.Trainer != "" {
		line("Trainer", a.Trainer)
	}
	return b.String()
}

func normalizeDiseases(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
