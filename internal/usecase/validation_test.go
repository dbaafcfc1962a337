package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

func fieldNames(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateSaleFieldMatrix(t *testing.T) {
	cases := []struct {
		name     string
		saleType entity.SaleType
		mutate   func(fields map[string]string)
		want     []string
	}{
		{
			name:     "valid coaching passes",
			saleType: entity.SaleTypeCoaching,
			mutate:   func(map[string]string) {},
			want:     nil,
		},
		{
			name:     "missing contact fields",
			saleType: entity.SaleTypeCoaching,
			mutate: func(f map[string]string) {
				delete(f, "email")
				delete(f, "phone")
			},
			want: []string{"email", "phone"},
		},
		{
			name:     "bad email shape",
			saleType: entity.SaleTypeCoaching,
			mutate:   func(f map[string]string) { f["email"] = "not-an-address" },
			want:     []string{"email"},
		},
		{
			name:     "single rune name",
			saleType: entity.SaleTypeCoaching,
			mutate:   func(f map[string]string) { f["name"] = "A" },
			want:     []string{"name"},
		},
		{
			name:     "implausible body values",
			saleType: entity.SaleTypeCoaching,
			mutate: func(f map[string]string) {
				f["age"] = "7"
				f["height"] = "400"
				f["weight"] = "20"
			},
			want: []string{"age", "height", "weight"},
		},
		{
			name:     "coaching needs a trainer",
			saleType: entity.SaleTypeCoaching,
			mutate:   func(f map[string]string) { delete(f, "trainer") },
			want:     []string{"trainer"},
		},
		{
			name:     "unparseable enum answers read as absent",
			saleType: entity.SaleTypeCoaching,
			mutate: func(f map[string]string) {
				f["gender"] = "banana"
				f["purpose"] = "9"
			},
			want: []string{"gender", "purpose"},
		},
		{
			name:     "beginner skips body and focus rules",
			saleType: entity.SaleTypeBeginner,
			mutate: func(f map[string]string) {
				delete(f, "age")
				delete(f, "height")
				delete(f, "weight")
				delete(f, "daily_activity")
				delete(f, "focus")
				delete(f, "trainer")
			},
			want: nil,
		},
		{
			name:     "beginner still needs weekly workouts",
			saleType: entity.SaleTypeBeginner,
			mutate:   func(f map[string]string) { f["activity_level"] = "9" },
			want:     []string{"activity_level"},
		},
		{
			name:     "nutrition needs the body block",
			saleType: entity.SaleTypeNutritionStandard,
			mutate: func(f map[string]string) {
				delete(f, "age")
				delete(f, "daily_activity")
			},
			want: []string{"age", "daily_activity"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := coachingFields()
			tc.mutate(fields)

			sub := NewSubmission(fields)
			client := mapClient(sub)
			agenda := mapAgenda(tc.saleType, sub)

			errs := ValidateSale(tc.saleType, client, agenda)
			assert.ElementsMatch(t, tc.want, fieldNames(errs))
		})
	}
}

func TestValidatePosingNeedsContactOnly(t *testing.T) {
	fields := map[string]string{
		"name":  "Vera",
		"email": "vera@example.com",
		"phone": "+7905",
	}
	sub := NewSubmission(fields)

	errs := ValidateSale(entity.SaleTypePosing, mapClient(sub), mapAgenda(entity.SaleTypePosing, sub))
	assert.Empty(t, errs)
}
