package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xavierca1/fitness-sales/internal/config"
	"github.com/xavierca1/fitness-sales/internal/entity"
	"github.com/xavierca1/fitness-sales/internal/infra/mail"
)

// In-memory doubles for the pipeline's ports. The sale repo keeps real
// pointers, so Mutate behaves like the row-locked read-modify-write the
// Postgres implementation does, just without the lock.

type fakeSaleRepo struct {
	mu    sync.Mutex
	sales map[string]*entity.Sale
	order []string
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: map[string]*entity.Sale{}}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[sale.ID] = sale
	r.order = append(r.order, sale.ID)
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id string) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sale, ok := r.sales[id]
	if !ok {
		return nil, fmt.Errorf("sale not found")
	}
	return sale, nil
}

func (r *fakeSaleRepo) FindByResumeKey(_ context.Context, key string) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sale := range r.sales {
		if sale.ResumeKey != nil && *sale.ResumeKey == key {
			return sale, nil
		}
	}
	return nil, fmt.Errorf("sale not found")
}

func (r *fakeSaleRepo) FindPending(_ context.Context) ([]*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Sale
	for _, id := range r.order {
		sale := r.sales[id]
		if sale.IsDone || (sale.ErrorHandled != nil && *sale.ErrorHandled) {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

func (r *fakeSaleRepo) Mutate(_ context.Context, saleID string, fn func(s *entity.Sale) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sale, ok := r.sales[saleID]
	if !ok {
		return fmt.Errorf("sale %s not found", saleID)
	}
	return fn(sale)
}

func (r *fakeSaleRepo) ListCompleted(_ context.Context) ([]entity.CompletedSale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.CompletedSale
	for _, id := range r.order {
		sale := r.sales[id]
		if !sale.IsDone {
			continue
		}
		out = append(out, entity.CompletedSale{
			SaleID:   sale.ID,
			OrderID:  sale.OrderID,
			Time:     sale.Time,
			Email:    sale.Client.Email,
			Phone:    sale.Client.Phone,
			Name:     sale.Client.Name,
			Products: entity.ProductCodes(sale.Products),
		})
	}
	return out, nil
}

func (r *fakeSaleRepo) all() []*entity.Sale {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Sale, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sales[id])
	}
	return out
}

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[string]*entity.Client // by id
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[string]*entity.Client{}}
}

func (r *fakeClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
	return nil
}

func (r *fakeClientRepo) FindByEmail(_ context.Context, email string) (*entity.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Email != "" && c.Email == email {
			return c, nil
		}
	}
	return nil, entity.ErrClientNotFound
}

func (r *fakeClientRepo) Update(_ context.Context, c *entity.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c.ID]; !ok {
		return entity.ErrClientNotFound
	}
	r.clients[c.ID] = c
	return nil
}

type fakeProgramRepo struct {
	mu       sync.Mutex
	programs []*entity.WorkoutProgram
}

func (r *fakeProgramRepo) Upsert(_ context.Context, wp *entity.WorkoutProgram) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.programs {
		if existing.Signature == wp.Signature {
			r.programs[i] = wp
			return nil
		}
	}
	r.programs = append(r.programs, wp)
	return nil
}

func (r *fakeProgramRepo) FindBySignature(_ context.Context, sig entity.ProgramSignature) (*entity.WorkoutProgram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wp := range r.programs {
		s := wp.Signature
		if s.Gender == sig.Gender && s.ActivityLevel == sig.ActivityLevel &&
			s.Purpose == sig.Purpose && s.Focus == sig.Focus &&
			(s.IgnoreDiseases || s.Diseases == sig.Diseases) {
			return wp, nil
		}
	}
	return nil, nil
}

type fakeStaffRepo struct {
	mu      sync.Mutex
	members []*entity.Staff
}

func (r *fakeStaffRepo) Add(_ context.Context, s *entity.Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.Name == s.Name {
			r.members[i] = s
			return nil
		}
	}
	r.members = append(r.members, s)
	return nil
}

func (r *fakeStaffRepo) DeleteByName(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.Name == name {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return nil
		}
	}
	return entity.ErrStaffNotFound
}

func (r *fakeStaffRepo) FindByName(_ context.Context, name string) (*entity.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, entity.ErrStaffNotFound
}

func (r *fakeStaffRepo) Recipients(_ context.Context, trainerNames []string) ([]entity.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []entity.Staff
	for _, m := range r.members {
		named := false
		for _, n := range trainerNames {
			if m.Name == n {
				named = true
			}
		}
		if (m.IsAdmin || named) && !seen[m.Name] {
			seen[m.Name] = true
			out = append(out, *m)
		}
	}
	return out, nil
}

type sentMail struct {
	Kind        mail.Kind
	To          []mail.Recipient
	Subject     string
	Body        string
	Attachments []mail.Attachment
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	// failKinds injects a transport failure for specific kinds.
	failKinds map[mail.Kind]error
}

func (n *recordingNotifier) Send(kind mail.Kind, to []mail.Recipient, subject, body string, attachments ...mail.Attachment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failKinds[kind]; ok {
		return err
	}
	n.sent = append(n.sent, sentMail{Kind: kind, To: to, Subject: subject, Body: body, Attachments: attachments})
	return nil
}

func (n *recordingNotifier) byKind(kind mail.Kind) []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentMail
	for _, m := range n.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

type scheduledTask struct {
	SaleID string
	At     time.Time
}

type recordingScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
	err   error
}

func (s *recordingScheduler) ScheduleDelivery(_ context.Context, saleID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, scheduledTask{SaleID: saleID, At: at})
	return nil
}

type fakeDocs struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (d *fakeDocs) CreateNutrition(CPFC, Diet, NutritionProfile) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return "", d.err
	}
	d.calls++
	return fmt.Sprintf("produced/nutrition/plan-%d.html", d.calls), nil
}

// testPipeline bundles one fully wired intake with all its doubles.
type testPipeline struct {
	cfg       *config.Config
	intake    *SaleIntake
	sales     *fakeSaleRepo
	clients   *fakeClientRepo
	programs  *fakeProgramRepo
	staff     *fakeStaffRepo
	notifier  *recordingNotifier
	docs      *fakeDocs
	scheduler *recordingScheduler
	now       time.Time
}

const (
	testUniversalKey = "master-key"
	testResumeKey    = "abc123def456"
)

func newTestPipeline() *testPipeline {
	cfg := &config.Config{
		UniversalKey:  testUniversalKey,
		DeliveryMin:   10 * time.Minute,
		DeliveryMax:   45 * time.Minute,
		ScheduleGrace: 5 * time.Minute,
		ProducedDir:   "produced",
		Forms: config.FormURLs{
			Beginner:          "https://forms.example.com/beginner",
			Advanced:          "https://forms.example.com/advanced",
			NutritionStandard: "https://forms.example.com/nutrition-standard",
			NutritionPro:      "https://forms.example.com/nutrition-pro",
			Coaching:          "https://forms.example.com/coaching",
			ProgramRequest:    "https://forms.example.com/program-request",
		},
	}

	p := &testPipeline{
		cfg:       cfg,
		sales:     newFakeSaleRepo(),
		clients:   newFakeClientRepo(),
		programs:  &fakeProgramRepo{},
		staff:     &fakeStaffRepo{},
		notifier:  &recordingNotifier{},
		docs:      &fakeDocs{},
		scheduler: &recordingScheduler{},
		now:       time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	links := NewLinkBuilder(cfg.Forms, nil, false)
	p.intake = NewSaleIntake(cfg, p.sales, p.clients, p.programs, p.staff, p.notifier, p.docs, p.scheduler, links)
	p.intake.now = func() time.Time { return p.now }
	p.intake.newKey = func() string { return testResumeKey }
	p.intake.jitter = func() time.Duration { return 15 * time.Minute }

	p.staff.Add(context.Background(), entity.NewStaff("Boss", "boss", true, "boss@example.com", "+100"))
	p.staff.Add(context.Background(), entity.NewStaff("Ivan", "ivan", false, "ivan@example.com", "+200"))
	return p
}

func (p *testPipeline) deliverer() *SaleDeliverer {
	return NewSaleDeliverer(p.cfg, p.sales, p.notifier)
}

func (p *testPipeline) reconciler() *SaleReconciler {
	return NewSaleReconciler(p.intake)
}

// coachingFields is a complete valid coaching submission.
func coachingFields() map[string]string {
	return map[string]string{
		"name":           "Anna",
		"email":          "anna@example.com",
		"phone":          "+7900123",
		"gender":         "2",
		"age":            "28",
		"height":         "168",
		"weight":         "57",
		"activity_level": "3",
		"daily_activity": "2",
		"purpose":        "1",
		"focus":          "3",
		"trainer":        "Ivan",
		"payment":        `{"orderid":"ord-77","products":[{"sku":"coaching","name":"Coaching","price":"120.00","quantity":"1"}]}`,
	}
}

// beginnerFields is a complete valid beginner program submission.
func beginnerFields() map[string]string {
	return map[string]string{
		"name":           "Oleg",
		"email":          "oleg@example.com",
		"phone":          "+7900456",
		"gender":         "1",
		"activity_level": "3",
		"purpose":        "3",
		"payment":        `{"orderid":"ord-88","products":[{"sku":"program-beginner","name":"Beginner","price":"35.00","quantity":"1"}]}`,
	}
}

// nutritionFields is a complete valid standard nutrition submission.
func nutritionFields() map[string]string {
	return map[string]string{
		"name":           "Maria",
		"email":          "maria@example.com",
		"phone":          "+7900789",
		"gender":         "2",
		"age":            "25",
		"height":         "165",
		"weight":         "60",
		"daily_activity": "1",
		"purpose":        "1",
		"payment":        `{"orderid":"ord-99","products":[{"sku":"nutrition-standard","name":"Nutrition","price":"25.00","quantity":"1"}]}`,
	}
}
