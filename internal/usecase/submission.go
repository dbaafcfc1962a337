package usecase

import (
	"strconv"
	"strings"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

// Reserved submission fields shared by both webhook shapes.
const (
	FieldKey     = "key"
	FieldTest    = "test"
	FieldPayment = "payment"
	FieldFile    = "file"
)

// Submission is the normalized, case-folded field set of one webhook call.
// The untyped map stops at the HTTP adapter; inside the engine every read
// goes through accessors that report absence instead of defaulting.
type Submission struct {
	fields map[string]string
}

func NewSubmission(fields map[string]string) Submission {
	if fields == nil {
		fields = map[string]string{}
	}
	return Submission{fields: fields}
}

// Value returns the field or "" when absent.
func (s Submission) Value(key string) string {
	return s.fields[key]
}

// Int parses the field as an integer, nil when absent or not a number.
func (s Submission) Int(key string) *int {
	raw, ok := s.fields[key]
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// mapClient projects contact fields into a fresh Client.
func mapClient(sub Submission) *entity.Client {
	return entity.NewClient(sub.Value("email"), sub.Value("name"), sub.Value("phone"))
}

// mapAgenda projects questionnaire fields into an Agenda. Unknown answers map
// to absent. Returns nil for types that carry no profile.
func mapAgenda(saleType entity.SaleType, sub Submission) *entity.Agenda {
	if !saleType.NeedsAgenda() {
		return nil
	}

	a := entity.NewAgenda()
	if g, ok := entity.ParseGender(sub.Value("gender")); ok {
		a.Gender = &g
	}
	a.Age = sub.Int("age")
	a.Height = sub.Int("height")
	a.Weight = sub.Int("weight")
	if w, ok := entity.ParseWeeklyActivity(sub.Value("activity_level")); ok {
		a.ActivityLevel = &w
	}
	if d, ok := entity.ParseDailyActivity(sub.Value("daily_activity")); ok {
		a.DailyActivity = &d
	}
	if p, ok := entity.ParsePurpose(sub.Value("purpose")); ok {
		a.Purpose = &p
	}
	if f, ok := entity.ParseFocus(sub.Value("focus")); ok {
		a.Focus = &f
	}
	a.Diseases = sub.Value("diseases")
	a.Trainer = sub.Value("trainer")
	return a
}

// mapProgramSignature projects an upload form into the matching key.
func mapProgramSignature(sub Submission) entity.ProgramSignature {
	var sig entity.ProgramSignature
	if g, ok := entity.ParseGender(sub.Value("gender")); ok {
		sig.Gender = g
	}
	if w, ok := entity.ParseWeeklyActivity(sub.Value("activity_level")); ok {
		sig.ActivityLevel = w
	}
	if p, ok := entity.ParsePurpose(sub.Value("purpose")); ok {
		sig.Purpose = p
	}
	if f, ok := entity.ParseFocus(sub.Value("focus")); ok {
		sig.Focus = f
	}
	sig.Diseases = normalizedDiseases(sub.Value("diseases"))
	if v, ok := entity.ParseYesNo(sub.Value("ignore_diseases")); ok {
		sig.IgnoreDiseases = v
	}
	return sig
}

func normalizedDiseases(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
