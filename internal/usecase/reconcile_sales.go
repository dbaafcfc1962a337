package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/xavierca1/fitness-sales/internal/entity"
	"github.com/xavierca1/fitness-sales/internal/infra/mail"
)

// SaleReconciler is the periodic repair pass over incomplete sales. It reuses
// the intake's step implementations, so a repaired sale converges on exactly
// the same target state a clean submission would have reached.
type SaleReconciler struct {
	intake *SaleIntake
}

func NewSaleReconciler(intake *SaleIntake) *SaleReconciler {
	return &SaleReconciler{intake: intake}
}

// Result counts what one sweep cycle did.
type Result struct {
	Inspected int
	Parked    int
}

// Run inspects every pending sale and finishes whatever steps are missing.
// One sale's failure never aborts the sweep: the sale is parked with a
// diagnostic to staff and the loop moves on.
func (uc *SaleReconciler) Run(ctx context.Context) (Result, error) {
	pending, err := uc.intake.sales.FindPending(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Inspected: len(pending)}
	for _, sale := range pending {
		if err := uc.reconcile(ctx, sale); err != nil {
			log.Printf("❌ [SWEEP] sale %s: %v, parking for manual intervention", sale.ID, err)
			uc.park(ctx, sale, err)
			res.Parked++
		}
	}
	if res.Inspected > 0 {
		log.Printf("🔄 [SWEEP] inspected %d pending sale(s), parked %d", res.Inspected, res.Parked)
	}
	return res, nil
}

func (uc *SaleReconciler) reconcile(ctx context.Context, sale *entity.Sale) error {
	// A draft waits on the client's corrected input, not on us.
	if sale.ResumeKey != nil {
		return nil
	}

	if sale.OrderID == "" || len(sale.Products) == 0 {
		return domainErr(CodeIntegrity,
			fmt.Sprintf("sale %s has no order reference or no products", sale.ID))
	}

	if !sale.IsSuccessEmailSent {
		if err := uc.intake.notifySuccess(ctx, sale); err != nil {
			return err
		}
	}

	if sale.Type.NeedsProgram() && sale.WorkoutProgramPath == "" && sale.ResumeKey == nil {
		if sale.Agenda == nil {
			return domainErr(CodeIntegrity,
				fmt.Sprintf("sale %s needs a program but has no profile to match on", sale.ID))
		}
		wp, err := uc.intake.programs.FindBySignature(ctx, sale.Agenda.Signature())
		if err != nil {
			return err
		}
		if wp != nil {
			if err := uc.intake.attachProgram(ctx, sale, wp); err != nil {
				return err
			}
		} else if sale.IsStaffNotified {
			// The original request may have been lost; drop the flag so a
			// fresh program request goes out below.
			err := uc.intake.sales.Mutate(ctx, sale.ID, func(s *entity.Sale) error {
				s.IsStaffNotified = false
				return nil
			})
			if err != nil {
				return err
			}
			sale.IsStaffNotified = false
		}
	}

	if sale.Type.NeedsNutrition() && sale.NutritionPath == "" {
		if err := uc.intake.generateNutrition(ctx, sale); err != nil {
			return err
		}
	}

	if uc.deliveryExpired(sale) {
		if err := uc.intake.scheduleDelivery(ctx, sale); err != nil {
			return err
		}
	}

	if !sale.IsStaffNotified {
		if err := uc.intake.notifyStaff(ctx, sale); err != nil {
			return err
		}
	}

	return nil
}

// deliveryExpired reports whether the sale is owed a fresh delivery task:
// artifact present, no draft key, and no schedule or one that passed its
// grace window without the sale completing.
func (uc *SaleReconciler) deliveryExpired(sale *entity.Sale) bool {
	if sale.IsDone || sale.ResumeKey != nil || sale.ArtifactPath() == "" {
		return false
	}
	if sale.ScheduledDelivery == nil {
		return true
	}
	deadline := sale.ScheduledDelivery.Add(uc.intake.cfg.ScheduleGrace)
	return uc.intake.now().After(deadline)
}

// park marks the sale as needing a human and tells staff what broke,
// including a reconstruction link so an admin can re-submit corrected data
// through the normal pipeline.
func (uc *SaleReconciler) park(ctx context.Context, sale *entity.Sale, cause error) {
	body := fmt.Sprintf(
		"Automatic processing of sale %s [%s] failed and was suspended.\n\nClient: %s (%s, %s)\nOrder: %s\nError: %v\n",
		sale.ID, sale.Type, sale.Client.Name, sale.Client.Email, sale.Client.Phone, orDash(sale.OrderID), cause)

	link, err := uc.intake.links.ResumeLink(ctx, sale.Type, SaleValues(sale, uc.intake.cfg.UniversalKey))
	if err != nil {
		log.Printf("⚠️ [SWEEP] no reconstruction link for sale %s: %v", sale.ID, err)
	} else {
		body += fmt.Sprintf("\nTo re-submit corrected data, use this link: %s", link)
	}

	recipients, err := uc.intake.staff.Recipients(ctx, nil)
	if err == nil {
		to := make([]mail.Recipient, 0, len(recipients))
		for _, s := range recipients {
			to = append(to, mail.Recipient{Name: s.Name, Email: s.Email})
		}
		if err := uc.intake.notifier.Send(mail.KindInternal, to, fmt.Sprintf("Manual intervention needed: sale %s", sale.ID), body); err != nil {
			log.Printf("⚠️ [SWEEP] diagnostic mail for sale %s not sent: %v", sale.ID, err)
		}
	} else {
		log.Printf("⚠️ [SWEEP] no staff recipients for diagnostic on sale %s: %v", sale.ID, err)
	}

	handled := true
	err = uc.intake.sales.Mutate(ctx, sale.ID, func(s *entity.Sale) error {
		s.ErrorHandled = &handled
		return nil
	})
	if err != nil {
		// Next sweep will hit the same error and retry the park.
		log.Printf("⚠️ [SWEEP] could not mark sale %s as handled: %v", sale.ID, err)
	}
}
