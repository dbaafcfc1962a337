package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/xavierca1/fitness-sales/internal/config"
	"github.com/xavierca1/fitness-sales/internal/entity"
	"github.com/xavierca1/fitness-sales/internal/infra/mail"
)

// StaffOps covers the administrative webhook forms: roster maintenance,
// workout program uploads and the shared recipe book.
type StaffOps struct {
	cfg      *config.Config
	sales    entity.SaleRepository
	programs entity.WorkoutProgramRepository
	staff    entity.StaffRepository
	notifier Notifier
}

func NewStaffOps(
	cfg *config.Config,
	sales entity.SaleRepository,
	programs entity.WorkoutProgramRepository,
	staff entity.StaffRepository,
	notifier Notifier,
) *StaffOps {
	return &StaffOps{cfg: cfg, sales: sales, programs: programs, staff: staff, notifier: notifier}
}

func (uc *StaffOps) AddStaff(ctx context.Context, sub Submission) error {
	isAdmin, _ := entity.ParseYesNo(sub.Value("is_admin"))
	member := entity.NewStaff(sub.Value("name"), sub.Value("nickname"), isAdmin, sub.Value("email"), sub.Value("phone"))
	if member.Name == "" || member.Email == "" {
		return domainErr(CodeValidation, "staff member needs at least a name and an email")
	}
	if err := uc.staff.Add(ctx, member); err != nil {
		return err
	}
	log.Printf("👤 [STAFF] %s added (admin: %v)", member.Name, member.IsAdmin)
	return nil
}

func (uc *StaffOps) RemoveStaff(ctx context.Context, sub Submission) error {
	name := sub.Value("name")
	if name == "" {
		return domainErr(CodeValidation, "staff member name is required")
	}
	if err := uc.staff.DeleteByName(ctx, name); err != nil {
		return err
	}
	log.Printf("👤 [STAFF] %s removed", name)
	return nil
}

// AddWorkoutProgram stores an uploaded program under its profile signature.
// With an explicit (non-universal) resumption key the program is also
// attached to that one sale, delivered and the sale completed; without one,
// the sweep attaches it to every waiting sale by signature match.
func (uc *StaffOps) AddWorkoutProgram(ctx context.Context, sub Submission) error {
	path := filepath.Join(uc.cfg.ProducedDir, "programs", uuid.New().String()+".pdf")
	if err := decodeToFile(sub.Value(FieldFile), path); err != nil {
		return err
	}

	wp := entity.NewWorkoutProgram(path, mapProgramSignature(sub))
	if err := uc.programs.Upsert(ctx, wp); err != nil {
		return err
	}
	log.Printf("📚 [STAFF] workout program stored at %s", path)

	key := sub.Value(FieldKey)
	if key == "" || key == uc.cfg.UniversalKey {
		return nil
	}

	sale, err := uc.sales.FindByResumeKey(ctx, key)
	if err != nil {
		return domainErr(CodeStaleKey, "the upload link carries a key that matches no sale; use the request link from the notification mail")
	}

	kind, subject, body, attachments := DeliveryMessage(uc.cfg, sale.Type, path)
	to := []mail.Recipient{{Name: sale.Client.Name, Email: sale.Client.Email}}
	if err := uc.notifier.Send(kind, to, subject, body, attachments...); err != nil {
		return err
	}

	err = uc.sales.Mutate(ctx, sale.ID, func(s *entity.Sale) error {
		s.WorkoutProgramID = &wp.ID
		s.WorkoutProgramPath = wp.Path
		s.IsSuccessEmailSent = true
		s.ResumeKey = nil
		if s.IsStaffNotified {
			s.IsDone = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("✅ [STAFF] program delivered directly to %s, sale %s", sale.Client.Email, sale.ID)
	return nil
}

// LoadRecipes replaces the shared recipe book sent with PRO nutrition sales.
func (uc *StaffOps) LoadRecipes(_ context.Context, sub Submission) error {
	if err := decodeToFile(sub.Value(FieldFile), RecipesPath(uc.cfg)); err != nil {
		return err
	}
	log.Printf("📚 [STAFF] recipe book updated")
	return nil
}

func decodeToFile(encoded, path string) error {
	if encoded == "" {
		return domainErr(CodeValidation, "upload is missing the file payload")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("upload payload is not valid base64: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
