package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

type StaffRepository struct {
	DB *sql.DB
}

func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{DB: db}
}

// Add registers a staff member. Re-adding an existing name refreshes the
// contact details instead of failing, so the admin form is safely repeatable.
func (r *StaffRepository) Add(ctx context.Context, s *entity.Staff) error {
	query := `
		INSERT INTO staff (id, name, nickname, is_admin, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			is_admin = EXCLUDED.is_admin,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone
	`

	_, err := r.DB.ExecContext(ctx, query, s.ID, s.Name, s.Nickname, s.IsAdmin, s.Email, s.Phone)
	if err != nil {
		return fmt.Errorf("failed to add staff member %q: %w", s.Name, err)
	}
	return nil
}

func (r *StaffRepository) DeleteByName(ctx context.Context, name string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM staff WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete staff member %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrStaffNotFound
	}
	return nil
}

func (r *StaffRepository) FindByName(ctx context.Context, name string) (*entity.Staff, error) {
	query := `SELECT id, name, nickname, is_admin, email, phone FROM staff WHERE name = $1`

	var s entity.Staff
	err := r.DB.QueryRowContext(ctx, query, name).Scan(&s.ID, &s.Name, &s.Nickname, &s.IsAdmin, &s.Email, &s.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up staff member %q: %w", name, err)
	}
	return &s, nil
}

// Recipients returns every administrator plus the named trainers, deduplicated
// by the table's unique name.
func (r *StaffRepository) Recipients(ctx context.Context, trainerNames []string) ([]entity.Staff, error) {
	query := `
		SELECT id, name, nickname, is_admin, email, phone
		FROM staff
		WHERE is_admin OR name = ANY($1)
		ORDER BY name
	`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(trainerNames))
	if err != nil {
		return nil, fmt.Errorf("failed to list notification recipients: %w", err)
	}
	defer rows.Close()

	var out []entity.Staff
	for rows.Next() {
		var s entity.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Nickname, &s.IsAdmin, &s.Email, &s.Phone); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
