package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/fitness-sales/internal/entity"
	"github.com/xavierca1/fitness-sales/internal/infra/mail"
)

func TestSweepParksSaleWithoutOrderData(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	client := entity.NewClient("broken@example.com", "Broken", "+1")
	p.clients.Create(ctx, client)
	sale := entity.NewSale(entity.SaleTypeCoaching, client, nil, p.now)
	// No order id, no products: the webhook payload was lost.
	p.sales.Create(ctx, sale)

	res, err := p.reconciler().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inspected)
	assert.Equal(t, 1, res.Parked)

	require.NotNil(t, sale.ErrorHandled)
	assert.True(t, *sale.ErrorHandled)

	internal := p.notifier.byKind(mail.KindInternal)
	require.Len(t, internal, 1)
	assert.Contains(t, internal[0].Subject, "Manual intervention needed")
	assert.Contains(t, internal[0].Body, sale.ID)
	assert.Contains(t, internal[0].Body, "key="+testUniversalKey,
		"the reconstruction link lets an admin re-submit through the normal pipeline")

	// A parked sale leaves the sweep's working set.
	res, err = p.reconciler().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inspected)
}

func TestSweepParksProgramSaleWithoutProfile(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	client := entity.NewClient("lost@example.com", "Lost", "+1")
	p.clients.Create(ctx, client)
	// Order data survived but the profile row is gone: nothing to match a
	// program on. The sweep must park the sale, not crash the process.
	sale := entity.NewSale(entity.SaleTypeBeginner, client, nil, p.now)
	sale.OrderID = "ord-55"
	sale.Products = []entity.Product{*entity.NewProduct("program-beginner", "", 0)}
	sale.IsSuccessEmailSent = true
	p.sales.Create(ctx, sale)

	res, err := p.reconciler().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inspected)
	assert.Equal(t, 1, res.Parked)

	require.NotNil(t, sale.ErrorHandled)
	assert.True(t, *sale.ErrorHandled)

	internal := p.notifier.byKind(mail.KindInternal)
	require.Len(t, internal, 1)
	assert.Contains(t, internal[0].Body, "no profile to match on")
}

func TestSweepIsolatesFailures(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	client := entity.NewClient("broken@example.com", "Broken", "+1")
	p.clients.Create(ctx, client)
	broken := entity.NewSale(entity.SaleTypeCoaching, client, nil, p.now)
	p.sales.Create(ctx, broken)

	require.Error(t, func() error {
		p.notifier.failKinds = map[mail.Kind]error{mail.KindInternal: assert.AnError}
		defer func() { p.notifier.failKinds = nil }()
		return p.intake.Submit(ctx, entity.SaleTypeCoaching, NewSubmission(coachingFields()))
	}(), "set up a healthy sale with a missing staff notification")

	res, err := p.reconciler().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inspected)
	assert.Equal(t, 1, res.Parked)

	healthy := p.sales.all()[1]
	assert.True(t, healthy.IsStaffNotified, "one broken sale does not block the rest")
	assert.True(t, healthy.IsDone)
}

func TestSweepLeavesDraftsAlone(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	fields := coachingFields()
	delete(fields, "phone")
	require.Error(t, p.intake.Submit(ctx, entity.SaleTypeCoaching, NewSubmission(fields)))

	mailsBefore := len(p.notifier.sent)
	res, err := p.reconciler().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inspected)
	assert.Equal(t, 0, res.Parked)

	draft := p.sales.all()[0]
	assert.NotNil(t, draft.ResumeKey, "a draft waits for the client indefinitely")
	assert.Nil(t, draft.ErrorHandled)
	assert.Equal(t, mailsBefore, len(p.notifier.sent))
}

func TestSweepReschedulesExpiredDelivery(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	require.NoError(t, p.intake.Submit(ctx, entity.SaleTypeNutritionStandard, NewSubmission(nutritionFields())))
	sale := p.sales.all()[0]
	require.Len(t, p.scheduler.tasks, 1)

	// Simulate a restart: the schedule passed its grace window but the
	// delivery never happened.
	stale := p.now.Add(-time.Hour)
	sale.ScheduledDelivery = &stale

	res, err := p.reconciler().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Parked)

	require.Len(t, p.scheduler.tasks, 2, "the sweep re-enqueued the lost task")
	assert.Equal(t, p.now.Add(15*time.Minute), *sale.ScheduledDelivery)
}

func TestSweepHonorsGraceWindow(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	require.NoError(t, p.intake.Submit(ctx, entity.SaleTypeNutritionStandard, NewSubmission(nutritionFields())))
	require.Len(t, p.scheduler.tasks, 1)

	// Still inside schedule + grace: the queued task owns the delivery.
	_, err := p.reconciler().Run(ctx)
	require.NoError(t, err)
	assert.Len(t, p.scheduler.tasks, 1, "no duplicate task while the schedule is still live")
}

func TestSweepAttachesLateProgram(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	require.NoError(t, p.intake.Submit(ctx, entity.SaleTypeBeginner, NewSubmission(beginnerFields())))
	sale := p.sales.all()[0]
	require.Empty(t, sale.WorkoutProgramPath)
	require.True(t, sale.IsStaffNotified)

	// Staff upload the requested program between sweep cycles.
	sig := entity.ProgramSignature{
		Gender:        entity.GenderMale,
		ActivityLevel: 3,
		Purpose:       entity.PurposeMassGain,
	}
	p.programs.Upsert(ctx, entity.NewWorkoutProgram("produced/programs/late.pdf", sig))

	res, err := p.reconciler().Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Parked)

	assert.Equal(t, "produced/programs/late.pdf", sale.WorkoutProgramPath)
	require.Len(t, p.scheduler.tasks, 1, "delivery gets scheduled once the artifact exists")
	assert.Equal(t, sale.ID, p.scheduler.tasks[0].SaleID)
}

func TestSweepRenewsLostProgramRequest(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	require.NoError(t, p.intake.Submit(ctx, entity.SaleTypeBeginner, NewSubmission(beginnerFields())))
	sale := p.sales.all()[0]
	require.True(t, sale.IsStaffNotified)
	require.Len(t, p.notifier.byKind(mail.KindInternal), 1)

	// Next cycle: still no program. The request may have been lost, so the
	// sweep sends a fresh one.
	_, err := p.reconciler().Run(ctx)
	require.NoError(t, err)

	internal := p.notifier.byKind(mail.KindInternal)
	require.Len(t, internal, 2)
	assert.Equal(t, "Workout program request", internal[1].Subject)
	assert.True(t, sale.IsStaffNotified)
}
