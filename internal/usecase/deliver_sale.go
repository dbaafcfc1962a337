package usecase

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/xavierca1/fitness-sales/internal/config"
	"github.com/xavierca1/fitness-sales/internal/entity"
	"github.com/xavierca1/fitness-sales/internal/infra/mail"
)

// SaleDeliverer executes the delayed final-document send. It always re-reads
// the sale first: the persisted row, not the queued task, decides whether
// delivery still applies.
type SaleDeliverer struct {
	cfg      *config.Config
	sales    entity.SaleRepository
	notifier Notifier
}

func NewSaleDeliverer(cfg *config.Config, sales entity.SaleRepository, notifier Notifier) *SaleDeliverer {
	return &SaleDeliverer{cfg: cfg, sales: sales, notifier: notifier}
}

// Deliver sends the final document for a sale and completes it as far as its
// remaining milestone flags allow. Skips silently when the sale is already
// done or went back to draft; errors leave the sale pending for the sweep.
func (uc *SaleDeliverer) Deliver(ctx context.Context, saleID string) error {
	sale, err := uc.sales.FindByID(ctx, saleID)
	if err != nil {
		return err
	}
	if sale.IsDone {
		log.Printf("⏭️ [DELIVERY] sale %s already done, skipping", saleID)
		return nil
	}
	if sale.ResumeKey != nil {
		log.Printf("⏭️ [DELIVERY] sale %s is awaiting corrected input, skipping", saleID)
		return nil
	}

	path := sale.ArtifactPath()
	if path == "" {
		return fmt.Errorf("delivery: sale %s has no artifact attached", saleID)
	}

	kind, subject, body, attachments := DeliveryMessage(uc.cfg, sale.Type, path)
	to := []mail.Recipient{{Name: sale.Client.Name, Email: sale.Client.Email}}
	if err := uc.notifier.Send(kind, to, subject, body, attachments...); err != nil {
		return err
	}

	err = uc.sales.Mutate(ctx, sale.ID, func(s *entity.Sale) error {
		s.IsSuccessEmailSent = true
		if s.IsStaffNotified {
			s.IsDone = true
			s.ResumeKey = nil
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("📦 [DELIVERY] final document for sale %s sent to %s", sale.ID, sale.Client.Email)
	return nil
}

// DeliveryMessage composes the final-document mail for an artifact sale.
// Shared by the scheduled delivery task and the direct staff-upload path.
func DeliveryMessage(cfg *config.Config, saleType entity.SaleType, artifactPath string) (mail.Kind, string, string, []mail.Attachment) {
	// Attachment names keep the artifact's real extension: programs and the
	// recipe book are uploaded PDFs, nutrition documents are rendered HTML.
	ext := filepath.Ext(artifactPath)

	switch saleType {
	case entity.SaleTypeBeginner, entity.SaleTypeAdvanced:
		subject := "«Beginner»: your program is ready"
		if saleType == entity.SaleTypeAdvanced {
			subject = "«Advanced»: your program is ready"
		}
		return mail.KindSuccess, subject,
			"Your personal workout program is ready! You will find it attached to this message.",
			[]mail.Attachment{{Name: "Personal workout program" + ext, Path: artifactPath}}

	case entity.SaleTypeNutritionStandard:
		return mail.KindSuccess, "Standard nutrition: macros + meal plan",
			"Attached to this message is a document with your macro budget and a sample meal plan.",
			[]mail.Attachment{{Name: "Macros and meal plan" + ext, Path: artifactPath}}

	case entity.SaleTypeNutritionPro:
		return mail.KindSuccess, "PRO nutrition + recipe book",
			"Attached to this message are two documents: your macro budget with a sample meal plan, and the recipe book.",
			[]mail.Attachment{
				{Name: "Macros and meal plan" + ext, Path: artifactPath},
				{Name: "Recipe book.pdf", Path: RecipesPath(cfg)},
			}

	default:
		return mail.KindSuccess, "Your purchase",
			"Your document is attached to this message.",
			[]mail.Attachment{{Name: "Document" + ext, Path: artifactPath}}
	}
}

// RecipesPath is where the shared recipe book lives once staff upload it.
func RecipesPath(cfg *config.Config) string {
	return filepath.Join(cfg.ProducedDir, "recipes.pdf")
}
