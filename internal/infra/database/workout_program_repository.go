package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

type WorkoutProgramRepository struct {
	DB *sql.DB
}

func NewWorkoutProgramRepository(db *sql.DB) *WorkoutProgramRepository {
	return &WorkoutProgramRepository{DB: db}
}

// Upsert stores the program document under its signature. Uploading a new
// document for an already covered profile replaces the previous file path.
func (r *WorkoutProgramRepository) Upsert(ctx context.Context, wp *entity.WorkoutProgram) error {
	query := `
		INSERT INTO workout_programs (
			id, path, gender, activity_level, purpose, focus,
			diseases, ignore_diseases, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (gender, activity_level, purpose, focus, diseases, ignore_diseases)
		DO UPDATE SET path = EXCLUDED.path, created_at = EXCLUDED.created_at
	`

	sig := wp.Signature
	_, err := r.DB.ExecContext(ctx, query,
		wp.ID, wp.Path,
		int(sig.Gender), int(sig.ActivityLevel), int(sig.Purpose), int(sig.Focus),
		sig.Diseases, sig.IgnoreDiseases, wp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store workout program: %w", err)
	}

	log.Printf("🏋️ [PROGRAMS] stored program %s for signature %+v", wp.ID, sig)
	return nil
}

// FindBySignature resolves a profile to its program document. A program
// flagged ignore_diseases matches any diseases text; an exact diseases match
// wins over an ignoring one. Returns (nil, nil) when nothing covers the profile.
func (r *WorkoutProgramRepository) FindBySignature(ctx context.Context, sig entity.ProgramSignature) (*entity.WorkoutProgram, error) {
	query := `
		SELECT id, path, gender, activity_level, purpose, focus, diseases, ignore_diseases, created_at
		FROM workout_programs
		WHERE gender = $1 AND activity_level = $2 AND purpose = $3 AND focus = $4
		  AND (diseases = $5 OR ignore_diseases)
		ORDER BY (diseases = $5) DESC, created_at DESC
		LIMIT 1
	`

	var (
		wp                             entity.WorkoutProgram
		gender, weekly, purpose, focus int
	)
	err := r.DB.QueryRowContext(ctx, query,
		int(sig.Gender), int(sig.ActivityLevel), int(sig.Purpose), int(sig.Focus), sig.Diseases,
	).Scan(
		&wp.ID, &wp.Path, &gender, &weekly, &purpose, &focus,
		&wp.Signature.Diseases, &wp.Signature.IgnoreDiseases, &wp.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match workout program: %w", err)
	}

	wp.Signature.Gender = entity.Gender(gender)
	wp.Signature.ActivityLevel = entity.WeeklyActivity(weekly)
	wp.Signature.Purpose = entity.Purpose(purpose)
	wp.Signature.Focus = entity.Focus(focus)
	return &wp, nil
}
