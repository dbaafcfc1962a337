package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/fitness-sales/internal/entity"
	"github.com/xavierca1/fitness-sales/internal/infra/mail"
)

func TestDeliverSendsDocumentAndCompletes(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	require.NoError(t, p.intake.Submit(ctx, entity.SaleTypeNutritionStandard, NewSubmission(nutritionFields())))
	sale := p.sales.all()[0]
	require.False(t, sale.IsDone)

	require.NoError(t, p.deliverer().Deliver(ctx, sale.ID))

	assert.True(t, sale.IsDone)
	success := p.notifier.byKind(mail.KindSuccess)
	require.Len(t, success, 1)
	assert.Equal(t, "maria@example.com", success[0].To[0].Email)
	require.Len(t, success[0].Attachments, 1)
	assert.Equal(t, sale.NutritionPath, success[0].Attachments[0].Path)
}

func TestDeliverProAttachesRecipeBook(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	require.NoError(t, p.intake.Submit(ctx, entity.SaleTypeNutritionPro, NewSubmission(nutritionFields())))
	sale := p.sales.all()[0]

	require.NoError(t, p.deliverer().Deliver(ctx, sale.ID))

	success := p.notifier.byKind(mail.KindSuccess)
	require.Len(t, success, 1)
	require.Len(t, success[0].Attachments, 2)
	assert.Equal(t, RecipesPath(p.cfg), success[0].Attachments[1].Path)
}

func TestDeliverSkipsCompletedSale(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	require.NoError(t, p.intake.Submit(ctx, entity.SaleTypeNutritionStandard, NewSubmission(nutritionFields())))
	sale := p.sales.all()[0]
	require.NoError(t, p.deliverer().Deliver(ctx, sale.ID))
	require.Len(t, p.notifier.byKind(mail.KindSuccess), 1)

	// A duplicate task (restart, re-queue) must be a no-op.
	require.NoError(t, p.deliverer().Deliver(ctx, sale.ID))
	assert.Len(t, p.notifier.byKind(mail.KindSuccess), 1, "the document went out exactly once")
}

func TestDeliverSkipsSaleBackInDraft(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	require.NoError(t, p.intake.Submit(ctx, entity.SaleTypeNutritionStandard, NewSubmission(nutritionFields())))
	sale := p.sales.all()[0]

	// An admin reopened the sale for corrected input before the task fired.
	key := "manual123key"
	sale.ResumeKey = &key

	require.NoError(t, p.deliverer().Deliver(ctx, sale.ID))
	assert.Empty(t, p.notifier.byKind(mail.KindSuccess))
	assert.False(t, sale.IsDone)
}

func TestDeliverWithoutArtifactFails(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	require.NoError(t, p.intake.Submit(ctx, entity.SaleTypeBeginner, NewSubmission(beginnerFields())))
	sale := p.sales.all()[0]
	require.Empty(t, sale.ArtifactPath())

	err := p.deliverer().Deliver(ctx, sale.ID)
	require.Error(t, err)
	assert.False(t, sale.IsDone)
}

func TestDeliverWithoutStaffFlagLeavesSaleOpen(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()
	p.notifier.failKinds = map[mail.Kind]error{mail.KindInternal: assert.AnError}

	require.Error(t, p.intake.Submit(ctx, entity.SaleTypeNutritionStandard, NewSubmission(nutritionFields())))
	sale := p.sales.all()[0]
	require.False(t, sale.IsStaffNotified)

	p.notifier.failKinds = nil
	require.NoError(t, p.deliverer().Deliver(ctx, sale.ID))

	assert.True(t, sale.IsSuccessEmailSent)
	assert.False(t, sale.IsDone, "completion waits for the staff notification")
}
