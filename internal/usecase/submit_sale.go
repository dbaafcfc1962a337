package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/fitness-sales/internal/config"
	"github.com/xavierca1/fitness-sales/internal/entity"
	"github.com/xavierca1/fitness-sales/internal/infra/mail"
)

// NewResumeKey returns a fresh opaque resumption token (uuid tail, short
// enough to survive being hand-typed from a mail client).
func NewResumeKey() string {
	id := uuid.New().String()
	return id[len(id)-12:]
}

// SaleIntake drives a normalized submission from "received" to as far along
// the pipeline as this process can take it. Whatever it cannot finish, the
// reconciliation sweep picks up from the first unset milestone flag.
type SaleIntake struct {
	cfg       *config.Config
	sales     entity.SaleRepository
	clients   entity.ClientRepository
	programs  entity.WorkoutProgramRepository
	staff     entity.StaffRepository
	notifier  Notifier
	docs      DocumentGenerator
	scheduler DeliveryScheduler
	links     *LinkBuilder

	now    func() time.Time
	newKey func() string
	jitter func() time.Duration
}

func NewSaleIntake(
	cfg *config.Config,
	sales entity.SaleRepository,
	clients entity.ClientRepository,
	programs entity.WorkoutProgramRepository,
	staff entity.StaffRepository,
	notifier Notifier,
	docs DocumentGenerator,
	scheduler DeliveryScheduler,
	links *LinkBuilder,
) *SaleIntake {
	return &SaleIntake{
		cfg:       cfg,
		sales:     sales,
		clients:   clients,
		programs:  programs,
		staff:     staff,
		notifier:  notifier,
		docs:      docs,
		scheduler: scheduler,
		links:     links,
		now:       func() time.Time { return time.Now().UTC() },
		newKey:    NewResumeKey,
		jitter: func() time.Duration {
			window := cfg.DeliveryMax - cfg.DeliveryMin
			if window <= 0 {
				return cfg.DeliveryMin
			}
			return cfg.DeliveryMin + time.Duration(rand.Int63n(int64(window)))
		},
	}
}

// Submit handles one normalized webhook submission, fresh or resumed.
// After the persist step the sale can no longer be lost: step failures leave
// their milestone flag unset, surface in the returned error for logging, and
// the sweep finishes the job.
func (uc *SaleIntake) Submit(ctx context.Context, saleType entity.SaleType, sub Submission) error {
	client := mapClient(sub)
	agenda := mapAgenda(saleType, sub)

	if errs := ValidateSale(saleType, client, agenda); len(errs) > 0 {
		return uc.handleValidationFailure(ctx, saleType, sub, client, agenda, errs)
	}

	sale, err := uc.persistOrResume(ctx, saleType, sub, client, agenda)
	if err != nil {
		return err
	}

	var stepErrs []error
	record := func(step string, err error) {
		if err != nil {
			log.Printf("⚠️ [INTAKE] sale %s: %s failed, sweep will retry: %v", sale.ID, step, err)
			stepErrs = append(stepErrs, fmt.Errorf("%s: %w", step, err))
		}
	}

	record("fulfill", uc.fulfill(ctx, sale))
	record("notify-success", uc.notifySuccess(ctx, sale))
	record("schedule-delivery", uc.scheduleDelivery(ctx, sale))
	record("notify-staff", uc.notifyStaff(ctx, sale))

	if len(stepErrs) == 0 {
		log.Printf("✅ [INTAKE] sale %s [%s] accepted for %s (%s)", sale.ID, sale.Type, sale.Client.Email, sale.Client.Phone)
	}
	return errors.Join(stepErrs...)
}

// persistOrResume commits the sale record: a keyed submission converts its
// draft in place, anything else creates a new row reusing the client by email.
func (uc *SaleIntake) persistOrResume(ctx context.Context, saleType entity.SaleType, sub Submission, client *entity.Client, agenda *entity.Agenda) (*entity.Sale, error) {
	key := sub.Value(FieldKey)
	if key == uc.cfg.UniversalKey {
		// Administrative replay: always treated as fresh.
		key = ""
	}

	if key != "" {
		draft, err := uc.sales.FindByResumeKey(ctx, key)
		if err != nil {
			return nil, domainErr(CodeStaleKey, fmt.Sprintf("no pending submission matches this link (key %q)", key))
		}

		if err := uc.overwriteDraft(ctx, draft, client, agenda); err != nil {
			return nil, err
		}
		err = uc.sales.Mutate(ctx, draft.ID, func(s *entity.Sale) error {
			s.ResumeKey = nil
			s.ErrorHandled = nil
			return nil
		})
		if err != nil {
			return nil, err
		}
		log.Printf("🔄 [INTAKE] draft %s converted to confirmed sale for %s", draft.ID, client.Email)
		return uc.sales.FindByID(ctx, draft.ID)
	}

	stored, err := uc.upsertClient(ctx, client)
	if err != nil {
		return nil, err
	}

	order, err := parseOrder(sub)
	if err != nil {
		log.Printf("⚠️ [INTAKE] %v", err)
	}

	sale := entity.NewSale(saleType, stored, agenda, uc.now())
	sale.OrderID = order.OrderID
	sale.Products = order.Products
	if err := uc.sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	log.Printf("🆕 [INTAKE] sale %s [%s] created for %s", sale.ID, saleType, stored.Email)
	return sale, nil
}

func (uc *SaleIntake) upsertClient(ctx context.Context, client *entity.Client) (*entity.Client, error) {
	existing, err := uc.clients.FindByEmail(ctx, client.Email)
	if err != nil {
		if !errors.Is(err, entity.ErrClientNotFound) {
			return nil, err
		}
		if err := uc.clients.Create(ctx, client); err != nil {
			return nil, err
		}
		return client, nil
	}

	existing.Name = client.Name
	existing.Phone = client.Phone
	if err := uc.clients.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// findOrCreateClient reuses an existing row by email without refreshing its
// fields; contact updates only happen on validated submissions.
func (uc *SaleIntake) findOrCreateClient(ctx context.Context, client *entity.Client) (*entity.Client, error) {
	existing, err := uc.clients.FindByEmail(ctx, client.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, entity.ErrClientNotFound) {
		return nil, err
	}
	if err := uc.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// overwriteDraft writes the freshly submitted client and agenda values over
// the draft's rows, keeping row identity.
func (uc *SaleIntake) overwriteDraft(ctx context.Context, draft *entity.Sale, client *entity.Client, agenda *entity.Agenda) error {
	if draft.Client != nil {
		draft.Client.Email = client.Email
		draft.Client.Name = client.Name
		draft.Client.Phone = client.Phone
		if err := uc.clients.Update(ctx, draft.Client); err != nil {
			return err
		}
	}
	if agenda == nil {
		return nil
	}
	return uc.sales.Mutate(ctx, draft.ID, func(s *entity.Sale) error {
		if s.Agenda == nil {
			s.Agenda = agenda
			return nil
		}
		s.Agenda.CopyFrom(agenda)
		return nil
	})
}

// fulfill attaches the artifact the sale type calls for: a matched workout
// program or a generated nutrition document. Immediate types need nothing.
func (uc *SaleIntake) fulfill(ctx context.Context, sale *entity.Sale) error {
	switch {
	case sale.Type.NeedsProgram():
		if sale.WorkoutProgramPath != "" {
			return nil
		}
		wp, err := uc.programs.FindBySignature(ctx, sale.Agenda.Signature())
		if err != nil {
			return err
		}
		if wp == nil {
			// No program yet; the staff notification carries a request link
			// and the sweep re-checks for a match on every cycle.
			return nil
		}
		return uc.attachProgram(ctx, sale, wp)

	case sale.Type.NeedsNutrition():
		if sale.NutritionPath != "" {
			return nil
		}
		return uc.generateNutrition(ctx, sale)

	default:
		return nil
	}
}

func (uc *SaleIntake) attachProgram(ctx context.Context, sale *entity.Sale, wp *entity.WorkoutProgram) error {
	err := uc.sales.Mutate(ctx, sale.ID, func(s *entity.Sale) error {
		s.WorkoutProgramID = &wp.ID
		s.WorkoutProgramPath = wp.Path
		return nil
	})
	if err != nil {
		return err
	}
	sale.WorkoutProgramID = &wp.ID
	sale.WorkoutProgramPath = wp.Path
	return nil
}

func (uc *SaleIntake) generateNutrition(ctx context.Context, sale *entity.Sale) error {
	cpfc, err := CalculateCPFC(sale.Agenda)
	if err != nil {
		return err
	}
	diet := CalculateDiet(cpfc, *sale.Agenda.Gender)
	profile := NutritionProfile{
		Age:     *sale.Agenda.Age,
		Height:  *sale.Agenda.Height,
		Weight:  *sale.Agenda.Weight,
		Purpose: sale.Agenda.Purpose.String(),
	}

	path, err := uc.docs.CreateNutrition(cpfc, diet, profile)
	if err != nil {
		return err
	}

	err = uc.sales.Mutate(ctx, sale.ID, func(s *entity.Sale) error {
		s.NutritionPath = path
		return nil
	})
	if err != nil {
		return err
	}
	sale.NutritionPath = path
	return nil
}

// notifySuccess sends the client the type-appropriate awaiting/success
// message exactly once and advances the milestone flag.
func (uc *SaleIntake) notifySuccess(ctx context.Context, sale *entity.Sale) error {
	if sale.IsSuccessEmailSent {
		return nil
	}

	kind, subject, body, err := uc.successMessage(ctx, sale)
	if err != nil {
		return err
	}
	to := []mail.Recipient{{Name: sale.Client.Name, Email: sale.Client.Email}}
	if err := uc.notifier.Send(kind, to, subject, body); err != nil {
		return err
	}

	err = uc.sales.Mutate(ctx, sale.ID, func(s *entity.Sale) error {
		s.IsSuccessEmailSent = true
		if s.MilestonesDone() {
			s.IsDone = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	sale.IsSuccessEmailSent = true
	return nil
}

func (uc *SaleIntake) successMessage(ctx context.Context, sale *entity.Sale) (mail.Kind, string, string, error) {
	switch sale.Type {
	case entity.SaleTypeBeginner:
		return mail.KindAwaiting, "Personal workout program «Beginner»",
			"Thank you for purchasing the «Beginner» workout program! Within the next day (weekends may take longer) our trainer will send you your personal program.", nil
	case entity.SaleTypeAdvanced:
		return mail.KindAwaiting, "Personal workout program «Advanced»",
			"Thank you for purchasing the «Advanced» workout program! Within the next day (weekends may take longer) our trainer will send you your personal program.", nil
	case entity.SaleTypeNutritionStandard:
		return mail.KindAwaiting, "Standard nutrition: macros + meal plan",
			"Thank you for your purchase! Your personal macro budget and meal plan are being prepared and will arrive in a follow-up email shortly.", nil
	case entity.SaleTypeNutritionPro:
		return mail.KindAwaiting, "PRO nutrition + recipe book",
			"Thank you for your purchase! Your personal macro budget, meal plan and the recipe book are being prepared and will arrive in a follow-up email shortly.", nil
	case entity.SaleTypeCoaching:
		contacts := ""
		if sale.Agenda != nil && sale.Agenda.Trainer != "" {
			trainer, err := uc.staff.FindByName(ctx, sale.Agenda.Trainer)
			if err != nil {
				return 0, "", "", fmt.Errorf("trainer contacts for %q: %w", sale.Agenda.Trainer, err)
			}
			contacts = fmt.Sprintf("\nTrainer contacts:\nEmail: %s\nPhone: %s", trainer.Email, trainer.Phone)
		}
		return mail.KindAwaiting, "Online coaching sessions",
			"Within the next day (weekends may take longer) your trainer will contact you to start the sessions."+contacts, nil
	case entity.SaleTypePosing:
		return mail.KindAwaiting, "Fitness bikini posing lessons",
			"Thank you for your purchase! Within the next day (weekends may take longer) our coach will contact you to arrange the lessons.", nil
	case entity.SaleTypeEndo:
		return mail.KindAwaiting, "Endocrinologist consultation",
			"Within the next day (weekends may take longer) our endocrinologist will contact you for the consultation.", nil
	default:
		return 0, "", "", fmt.Errorf("no success message defined for sale type %s", sale.Type)
	}
}

// scheduleDelivery persists the jittered delivery time and enqueues the
// durable task. No-op while no artifact is attached or a draft key is active.
func (uc *SaleIntake) scheduleDelivery(ctx context.Context, sale *entity.Sale) error {
	if sale.ArtifactPath() == "" || sale.ResumeKey != nil || sale.IsDone {
		return nil
	}

	at := uc.now().Add(uc.jitter())
	err := uc.sales.Mutate(ctx, sale.ID, func(s *entity.Sale) error {
		s.ScheduledDelivery = &at
		return nil
	})
	if err != nil {
		return err
	}
	sale.ScheduledDelivery = &at

	if err := uc.scheduler.ScheduleDelivery(ctx, sale.ID, at); err != nil {
		// The column is committed; the sweep reschedules after the grace
		// window even if the queue never saw this task.
		return err
	}
	log.Printf("⏱️ [INTAKE] sale %s delivery scheduled for %s", sale.ID, at.Format(time.RFC3339))
	return nil
}

// notifyStaff tells the responsible people about the new sale exactly once.
// For program sales without a matched artifact the message carries the
// program-request link so staff can upload one.
func (uc *SaleIntake) notifyStaff(ctx context.Context, sale *entity.Sale) error {
	if sale.IsStaffNotified {
		return nil
	}

	subject, body, err := uc.staffMessage(ctx, sale)
	if err != nil {
		return err
	}

	var trainers []string
	if sale.Type == entity.SaleTypeCoaching && sale.Agenda != nil && sale.Agenda.Trainer != "" {
		trainers = []string{sale.Agenda.Trainer}
	}
	recipients, err := uc.staff.Recipients(ctx, trainers)
	if err != nil {
		return err
	}
	to := make([]mail.Recipient, 0, len(recipients))
	for _, s := range recipients {
		to = append(to, mail.Recipient{Name: s.Name, Email: s.Email})
	}
	if err := uc.notifier.Send(mail.KindInternal, to, subject, body); err != nil {
		return err
	}

	err = uc.sales.Mutate(ctx, sale.ID, func(s *entity.Sale) error {
		s.IsStaffNotified = true
		if s.MilestonesDone() {
			s.IsDone = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	sale.IsStaffNotified = true
	return nil
}

func (uc *SaleIntake) staffMessage(ctx context.Context, sale *entity.Sale) (string, string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "New sale [%s], order %s.\n\n", sale.Type, orDash(sale.OrderID))
	fmt.Fprintf(&b, "Client:\nName: %s\nEmail: %s\nPhone: %s\n", sale.Client.Name, sale.Client.Email, sale.Client.Phone)
	if len(sale.Products) > 0 {
		fmt.Fprintf(&b, "Products: %s\n", entity.ProductCodes(sale.Products))
	}
	if sale.Agenda != nil {
		b.WriteString("\nProfile:\n")
		b.WriteString(sale.Agenda.Summary())
	}

	subject := fmt.Sprintf("New sale: %s", sale.Type)
	switch {
	case sale.Type == entity.SaleTypeCoaching:
		subject = "Online coaching: new client"
		b.WriteString("\nPlease get in touch with the client.")
	case sale.Type == entity.SaleTypeEndo:
		subject = "Endocrinologist consultation: new client"
		b.WriteString("\nPlease get in touch with the client.")
	case sale.Type.NeedsProgram() && sale.WorkoutProgramPath == "":
		subject = "Workout program request"
		link, err := uc.links.ProgramRequestLink(ctx, sale, uc.cfg.UniversalKey)
		if err != nil {
			return "", "", err
		}
		fmt.Fprintf(&b, "\nNo existing program matches this profile. Please create one and upload it here: %s", link)
	}
	return subject, b.String(), nil
}

// handleValidationFailure runs the resumption protocol: persist (or refresh)
// a draft, mail the client a pre-filled corrective link, and report the
// validation failure to the caller.
func (uc *SaleIntake) handleValidationFailure(ctx context.Context, saleType entity.SaleType, sub Submission, client *entity.Client, agenda *entity.Agenda, verrs []ValidationError) error {
	detail := joinValidationErrors(verrs)
	key := sub.Value(FieldKey)

	if key == uc.cfg.UniversalKey {
		// Administrative replay never leaves a draft or a link behind.
		uc.sendFailureMail(saleType, client, detail, "")
		return domainErr(CodeValidation, "invalid administrative replay:\n"+detail)
	}

	if key == "" {
		key = uc.newKey()
		// Reuse an existing client row but leave its confirmed contact
		// fields alone: this submission's values failed validation.
		stored, err := uc.findOrCreateClient(ctx, client)
		if err != nil {
			return err
		}
		order, _ := parseOrder(sub)
		draft := entity.NewSale(saleType, stored, agenda, uc.now())
		draft.OrderID = order.OrderID
		draft.Products = order.Products
		draft.ResumeKey = &key
		if err := uc.sales.Create(ctx, draft); err != nil {
			return err
		}
		log.Printf("📝 [INTAKE] draft %s [%s] stored for %s, waiting for corrected input", draft.ID, saleType, client.Email)
	} else {
		draft, err := uc.sales.FindByResumeKey(ctx, key)
		if err != nil {
			return domainErr(CodeStaleKey, fmt.Sprintf("no pending submission matches this link (key %q)", key))
		}
		// Overwrite first, so the re-sent link reflects what was actually
		// last submitted, not the stale draft.
		if err := uc.overwriteDraft(ctx, draft, client, agenda); err != nil {
			return err
		}
		log.Printf("📝 [INTAKE] draft %s refreshed with new (still invalid) input from %s", draft.ID, client.Email)
	}

	probe := entity.NewSale(saleType, client, agenda, uc.now())
	link, err := uc.links.ResumeLink(ctx, saleType, SaleValues(probe, key))
	if err != nil {
		return err
	}
	uc.sendFailureMail(saleType, client, detail, link)

	log.Printf("⚠️ [INTAKE] invalid data from %s (%s) for [%s]; corrective link sent", client.Email, client.Phone, saleType)
	return domainErr(CodeValidation, "validation failed:\n"+detail)
}

func (uc *SaleIntake) sendFailureMail(saleType entity.SaleType, client *entity.Client, detail, link string) {
	var b strings.Builder
	b.WriteString("There was a problem with the details you submitted:\n\n")
	b.WriteString(detail)
	if link != "" {
		fmt.Fprintf(&b, "\nPlease follow this link and re-enter your details (your previous answers are pre-filled):\n%s", link)
	}

	to := []mail.Recipient{{Name: client.Name, Email: client.Email}}
	if err := uc.notifier.Send(mail.KindFailure, to, errorSubject(saleType), b.String()); err != nil {
		// Best effort: the draft is persisted, an admin can rebuild the link.
		log.Printf("❌ [INTAKE] failure mail to %s not sent: %v", client.Email, err)
	}
}

func errorSubject(t entity.SaleType) string {
	switch t {
	case entity.SaleTypeBeginner:
		return "Error: personal workout program «Beginner»"
	case entity.SaleTypeAdvanced:
		return "Error: personal workout program «Advanced»"
	case entity.SaleTypeNutritionStandard:
		return "Error: standard nutrition plan"
	case entity.SaleTypeNutritionPro:
		return "Error: PRO nutrition + recipe book"
	case entity.SaleTypeCoaching:
		return "Error: online coaching signup"
	case entity.SaleTypePosing:
		return "Error: posing lessons signup"
	case entity.SaleTypeEndo:
		return "Error: endocrinologist consultation signup"
	default:
		return "Error: purchase processing"
	}
}

// parseOrder reads the order reference and product list from either webhook
// shape: a JSON payment block or flat orderid/products fields.
func parseOrder(sub Submission) (entity.Order, error) {
	if raw := sub.Value(FieldPayment); raw != "" {
		return entity.ParseOrder(raw)
	}

	order := entity.Order{OrderID: sub.Value("orderid")}
	for _, code := range strings.Split(sub.Value("products"), ";") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		order.Products = append(order.Products, *entity.NewProduct(code, "", 0))
	}
	return order, nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
