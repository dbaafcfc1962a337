package entity

import "strconv"

// Closed code tables for the questionnaire fields. Forms submit either the
// visible label or the numeric code; parsing accepts both and reports absence
// instead of defaulting, so a missing answer can never look like a valid one.

type Gender int

const (
	GenderMale Gender = iota + 1
	GenderFemale
)

func ParseGender(form string) (Gender, bool) {
	switch form {
	case "1", "male", "Male":
		return GenderMale, true
	case "2", "female", "Female":
		return GenderFemale, true
	default:
		return 0, false
	}
}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	default:
		return "—"
	}
}

type Purpose int

const (
	PurposeWeightLoss Purpose = iota + 1
	PurposeMaintenance
	PurposeMassGain
)

func ParsePurpose(form string) (Purpose, bool) {
	switch form {
	case "1", "Weight loss":
		return PurposeWeightLoss, true
	case "2", "Maintenance":
		return PurposeMaintenance, true
	case "3", "Mass gain":
		return PurposeMassGain, true
	default:
		return 0, false
	}
}

func (p Purpose) String() string {
	switch p {
	case PurposeWeightLoss:
		return "Weight loss"
	case PurposeMaintenance:
		return "Maintenance"
	case PurposeMassGain:
		return "Mass gain"
	default:
		return "—"
	}
}

// Factor is the calorie multiplier applied on top of the basal rate.
func (p Purpose) Factor() float64 {
	switch p {
	case PurposeWeightLoss:
		return 0.9
	case PurposeMaintenance:
		return 1.0
	case PurposeMassGain:
		return 1.2
	default:
		return 0
	}
}

type DailyActivity int

const (
	ActivitySedentary DailyActivity = iota + 1
	ActivityLow
	ActivityModerate
	ActivityHigh
	ActivityExtreme
)

func ParseDailyActivity(form string) (DailyActivity, bool) {
	switch form {
	case "1", "Sedentary":
		return ActivitySedentary, true
	case "2", "Low activity":
		return ActivityLow, true
	case "3", "Moderate activity":
		return ActivityModerate, true
	case "4", "High activity":
		return ActivityHigh, true
	case "5", "Extreme activity":
		return ActivityExtreme, true
	default:
		return 0, false
	}
}

func (a DailyActivity) String() string {
	switch a {
	case ActivitySedentary:
		return "Sedentary"
	case ActivityLow:
		return "Low activity"
	case ActivityModerate:
		return "Moderate activity"
	case ActivityHigh:
		return "High activity"
	case ActivityExtreme:
		return "Extreme activity"
	default:
		return "—"
	}
}

// Factor is the Mifflin-St Jeor style activity multiplier.
func (a DailyActivity) Factor() float64 {
	switch a {
	case ActivitySedentary:
		return 1.2
	case ActivityLow:
		return 1.375
	case ActivityModerate:
		return 1.55
	case ActivityHigh:
		return 1.725
	case ActivityExtreme:
		return 1.9
	default:
		return 0
	}
}

// WeeklyActivity is the number of workout sessions per week (2–5).
type WeeklyActivity int

func ParseWeeklyActivity(form string) (WeeklyActivity, bool) {
	n, err := strconv.Atoi(form)
	if err != nil || n < 2 || n > 5 {
		return 0, false
	}
	return WeeklyActivity(n), true
}

func (w WeeklyActivity) String() string {
	return strconv.Itoa(int(w)) + " per week"
}

type Focus int

const (
	FocusShoulders Focus = iota + 1
	FocusBack
	FocusGlutes
	FocusLegs
)

func ParseFocus(form string) (Focus, bool) {
	switch form {
	case "1", "Shoulders":
		return FocusShoulders, true
	case "2", "Back":
		return FocusBack, true
	case "3", "Glutes":
		return FocusGlutes, true
	case "4", "Legs":
		return FocusLegs, true
	default:
		return 0, false
	}
}

func (f Focus) String() string {
	switch f {
	case FocusShoulders:
		return "Shoulders"
	case FocusBack:
		return "Back"
	case FocusGlutes:
		return "Glutes"
	case FocusLegs:
		return "Legs"
	default:
		return "—"
	}
}

func ParseYesNo(form string) (bool, bool) {
	switch form {
	case "1", "yes", "Yes":
		return true, true
	case "0", "no", "No":
		return false, true
	default:
		return false, false
	}
}
