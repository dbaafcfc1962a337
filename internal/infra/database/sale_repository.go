package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

type SaleRepository struct {
	DB *sql.DB
}

func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{DB: db}
}

// saleColumns is the joined projection every sale read uses: the sale row,
// its client, the optional agenda and the optional matched program path.
const saleColumns = `
	s.id, s.type, s.time, s.order_id,
	s.workout_program_id, COALESCE(w.path, ''), s.nutrition_path,
	s.resume_key, s.is_success_email_sent, s.is_staff_notified,
	s.error_handled, s.scheduled_delivery, s.is_done,
	c.id, COALESCE(c.email, ''), c.name, c.phone, c.created_at, c.updated_at,
	a.id, a.gender, a.age, a.height, a.weight,
	a.activity_level, a.daily_activity, a.purpose, a.focus, a.diseases, a.trainer
`

const saleFrom = `
	FROM sales s
	JOIN clients c ON c.id = s.client_id
	LEFT JOIN agendas a ON a.sale_id = s.id
	LEFT JOIN workout_programs w ON w.id = s.workout_program_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*entity.Sale, error) {
	var (
		s         entity.Sale
		client    entity.Client
		typeName  string
		agendaID  sql.NullString
		gender    sql.NullInt64
		age       sql.NullInt64
		height    sql.NullInt64
		weight    sql.NullInt64
		weekly    sql.NullInt64
		daily     sql.NullInt64
		purpose   sql.NullInt64
		focus     sql.NullInt64
		diseases  sql.NullString
		trainer   sql.NullString
		resumeKey sql.NullString
		programID sql.NullString
		handled   sql.NullBool
		scheduled sql.NullTime
	)

	err := row.Scan(
		&s.ID, &typeName, &s.Time, &s.OrderID,
		&programID, &s.WorkoutProgramPath, &s.NutritionPath,
		&resumeKey, &s.IsSuccessEmailSent, &s.IsStaffNotified,
		&handled, &scheduled, &s.IsDone,
		&client.ID, &client.Email, &client.Name, &client.Phone, &client.CreatedAt, &client.UpdatedAt,
		&agendaID, &gender, &age, &height, &weight,
		&weekly, &daily, &purpose, &focus, &diseases, &trainer,
	)
	if err != nil {
		return nil, err
	}

	if t, ok := entity.ParseSaleType(typeName); ok {
		s.Type = t
	} else if typeName == entity.SaleTypeProgramRequest.String() {
		s.Type = entity.SaleTypeProgramRequest
	}
	s.Client = &client

	if resumeKey.Valid {
		s.ResumeKey = &resumeKey.String
	}
	if programID.Valid {
		s.WorkoutProgramID = &programID.String
	}
	if handled.Valid {
		s.ErrorHandled = &handled.Bool
	}
	if scheduled.Valid {
		t := scheduled.Time.UTC()
		s.ScheduledDelivery = &t
	}

	if agendaID.Valid {
		a := entity.Agenda{ID: agendaID.String, Diseases: diseases.String, Trainer: trainer.String}
		if gender.Valid {
			v := entity.Gender(gender.Int64)
			a.Gender = &v
		}
		if age.Valid {
			v := int(age.Int64)
			a.Age = &v
		}
		if height.Valid {
			v := int(height.Int64)
			a.Height = &v
		}
		if weight.Valid {
			v := int(weight.Int64)
			a.Weight = &v
		}
		if weekly.Valid {
			v := entity.WeeklyActivity(weekly.Int64)
			a.ActivityLevel = &v
		}
		if daily.Valid {
			v := entity.DailyActivity(daily.Int64)
			a.DailyActivity = &v
		}
		if purpose.Valid {
			v := entity.Purpose(purpose.Int64)
			a.Purpose = &v
		}
		if focus.Valid {
			v := entity.Focus(focus.Int64)
			a.Focus = &v
		}
		s.Agenda = &a
	}

	return &s, nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SaleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to open transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sales (
			id, type, time, order_id, client_id,
			workout_program_id, nutrition_path, resume_key,
			is_success_email_sent, is_staff_notified, error_handled,
			scheduled_delivery, is_done
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.ExecContext(ctx, query,
		sale.ID, sale.Type.String(), sale.Time, sale.OrderID, sale.Client.ID,
		sale.WorkoutProgramID, sale.NutritionPath, sale.ResumeKey,
		sale.IsSuccessEmailSent, sale.IsStaffNotified, sale.ErrorHandled,
		sale.ScheduledDelivery, sale.IsDone,
	)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	if sale.Agenda != nil {
		if err := upsertAgenda(ctx, tx, sale.ID, sale.Agenda); err != nil {
			return err
		}
	}

	for _, p := range sale.Products {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sale_products (id, sale_id, code, label, price_cents) VALUES ($1, $2, $3, $4, $5)`,
			p.ID, sale.ID, p.Code, p.Label, p.PriceCents,
		)
		if err != nil {
			return fmt.Errorf("failed to store sale product %s: %w", p.Code, err)
		}
	}

	return tx.Commit()
}

func upsertAgenda(ctx context.Context, q querier, saleID string, a *entity.Agenda) error {
	query := `
		INSERT INTO agendas (
			id, sale_id, gender, age, height, weight,
			activity_level, daily_activity, purpose, focus, diseases, trainer
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (sale_id) DO UPDATE SET
			gender = EXCLUDED.gender,
			age = EXCLUDED.age,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			activity_level = EXCLUDED.activity_level,
			daily_activity = EXCLUDED.daily_activity,
			purpose = EXCLUDED.purpose,
			focus = EXCLUDED.focus,
			diseases = EXCLUDED.diseases,
			trainer = EXCLUDED.trainer
	`
	_, err := q.ExecContext(ctx, query,
		a.ID, saleID,
		intPtrValue(a.Gender), a.Age, a.Height, a.Weight,
		intPtrValue(a.ActivityLevel), intPtrValue(a.DailyActivity),
		intPtrValue(a.Purpose), intPtrValue(a.Focus),
		a.Diseases, a.Trainer,
	)
	if err != nil {
		return fmt.Errorf("failed to store agenda: %w", err)
	}
	return nil
}

// intPtrValue flattens the typed enum pointers to a nullable int parameter.
func intPtrValue[T ~int](p *T) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.findOne(ctx, `WHERE s.id = $1`, id)
}

func (r *SaleRepository) FindByResumeKey(ctx context.Context, key string) (*entity.Sale, error) {
	return r.findOne(ctx, `WHERE s.resume_key = $1`, key)
}

func (r *SaleRepository) findOne(ctx context.Context, where string, arg any) (*entity.Sale, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+saleColumns+saleFrom+where, arg)
	sale, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sale not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sale: %w", err)
	}
	if err := r.loadProducts(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// FindPending returns every sale the reconciliation sweep still owns:
// not done, and not parked for manual intervention.
func (r *SaleRepository) FindPending(ctx context.Context) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + saleFrom + `
		WHERE NOT s.is_done AND s.error_handled IS NOT TRUE
		ORDER BY s.time
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending sales: %w", err)
	}
	defer rows.Close()

	var sales []*entity.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sale := range sales {
		if err := r.loadProducts(ctx, sale); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

func (r *SaleRepository) loadProducts(ctx context.Context, sale *entity.Sale) error {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, code, label, price_cents FROM sale_products WHERE sale_id = $1 ORDER BY code`,
		sale.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load sale products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Label, &p.PriceCents); err != nil {
			return err
		}
		sale.Products = append(sale.Products, p)
	}
	return rows.Err()
}

// Mutate reloads the sale under a row lock, applies fn and writes the result
// back in the same transaction. Concurrent mutations of one sale serialize on
// the lock, so milestone flags can only ever move forward.
func (r *SaleRepository) Mutate(ctx context.Context, saleID string, fn func(s *entity.Sale) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to open transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+saleColumns+saleFrom+`WHERE s.id = $1 FOR UPDATE OF s`, saleID)
	sale, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sale %s not found", saleID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock sale %s: %w", saleID, err)
	}

	if err := fn(sale); err != nil {
		return err
	}

	query := `
		UPDATE sales SET
			type = $2,
			order_id = $3,
			workout_program_id = $4,
			nutrition_path = $5,
			resume_key = $6,
			is_success_email_sent = $7,
			is_staff_notified = $8,
			error_handled = $9,
			scheduled_delivery = $10,
			is_done = $11
		WHERE id = $1
	`
	_, err = tx.ExecContext(ctx, query,
		sale.ID, sale.Type.String(), sale.OrderID,
		sale.WorkoutProgramID, sale.NutritionPath, sale.ResumeKey,
		sale.IsSuccessEmailSent, sale.IsStaffNotified, sale.ErrorHandled,
		sale.ScheduledDelivery, sale.IsDone,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale %s: %w", saleID, err)
	}

	if sale.Agenda != nil {
		if err := upsertAgenda(ctx, tx, sale.ID, sale.Agenda); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListCompleted flattens finished sales into accounting export rows.
func (r *SaleRepository) ListCompleted(ctx context.Context) ([]entity.CompletedSale, error) {
	query := `
		SELECT
			s.id, s.order_id, s.time,
			COALESCE(c.email, ''), c.phone, c.name,
			COALESCE(
				(SELECT string_agg(p.code, '; ' ORDER BY p.code) FROM sale_products p WHERE p.sale_id = s.id),
				''
			)
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		WHERE s.is_done
		ORDER BY s.time
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed sales: %w", err)
	}
	defer rows.Close()

	var out []entity.CompletedSale
	for rows.Next() {
		var cs entity.CompletedSale
		if err := rows.Scan(&cs.SaleID, &cs.OrderID, &cs.Time, &cs.Email, &cs.Phone, &cs.Name, &cs.Products); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
