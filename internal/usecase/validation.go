package usecase

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateSale runs the type-specific rule set against the mapped client and
// agenda. An empty result means the submission is confirmable.
func ValidateSale(saleType entity.SaleType, client *entity.Client, agenda *entity.Agenda) []ValidationError {
	errs := validateClient(client)

	if !saleType.NeedsAgenda() {
		return errs
	}
	if agenda == nil {
		return append(errs, ValidationError{"agenda", "profile answers are missing"})
	}

	needsBody := saleType == entity.SaleTypeCoaching || saleType.NeedsNutrition()
	needsWeekly := saleType == entity.SaleTypeCoaching || saleType.NeedsProgram()
	needsFocus := saleType == entity.SaleTypeCoaching || saleType == entity.SaleTypeAdvanced

	if agenda.Gender == nil {
		errs = append(errs, ValidationError{"gender", "please pick your gender"})
	}

	if needsBody {
		switch {
		case agenda.Age == nil:
			errs = append(errs, ValidationError{"age", "please enter your age"})
		case *agenda.Age < 10 || *agenda.Age > 99:
			errs = append(errs, ValidationError{"age", "please enter a realistic age"})
		}
		switch {
		case agenda.Height == nil:
			errs = append(errs, ValidationError{"height", "please enter your height"})
		case *agenda.Height < 100 || *agenda.Height > 250:
			errs = append(errs, ValidationError{"height", "please enter a realistic height in cm"})
		}
		switch {
		case agenda.Weight == nil:
			errs = append(errs, ValidationError{"weight", "please enter your weight"})
		case *agenda.Weight < 30 || *agenda.Weight > 300:
			errs = append(errs, ValidationError{"weight", "please enter a realistic weight in kg"})
		}
		if agenda.DailyActivity == nil {
			errs = append(errs, ValidationError{"daily_activity", "please pick your activity level"})
		}
	}

	if needsWeekly && agenda.ActivityLevel == nil {
		errs = append(errs, ValidationError{"activity_level", "please pick your weekly workout count"})
	}

	if agenda.Purpose == nil {
		errs = append(errs, ValidationError{"purpose", "please pick your training goal"})
	}

	if needsFocus && agenda.Focus == nil {
		errs = append(errs, ValidationError{"focus", "please pick a muscle group focus"})
	}

	if saleType == entity.SaleTypeCoaching && agenda.Trainer == "" {
		errs = append(errs, ValidationError{"trainer", "please choose a trainer"})
	}

	return errs
}

func validateClient(client *entity.Client) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(client.Email) == "" {
		errs = append(errs, ValidationError{"email", "email is required"})
	} else if _, err := mail.ParseAddress(client.Email); err != nil {
		errs = append(errs, ValidationError{"email", "email address is invalid"})
	}

	nameLen := utf8.RuneCountInString(strings.TrimSpace(client.Name))
	if nameLen == 0 {
		errs = append(errs, ValidationError{"name", "name is required"})
	} else if nameLen < 2 || nameLen > 20 {
		errs = append(errs, ValidationError{"name", "please enter a real name"})
	}

	if strings.TrimSpace(client.Phone) == "" {
		errs = append(errs, ValidationError{"phone", "phone number is required"})
	}

	return errs
}

func joinValidationErrors(errs []ValidationError) string {
	var b strings.Builder
	for _, e := range errs {
		b.WriteString("  - ")
		b.WriteString(e.Message)
		b.WriteString("\n")
	}
	return b.String()
}
