package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/fixtrack/fixtrack/internal/utils"
	"github.com/fixtrack/fixtrack/pkg/item"
	"github.com/fixtrack/fixtrack/pkg/payment"
	"github.com/fixtrack/fixtrack/pkg/preferences"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service     *ServiceImpl
	itemRepo    *item.StubItemRepo
	paymentRepo *payment.StubPaymentRepo
	prefsRepo   *preferences.StubPreferencesRepo
	ctx         context.Context
}

func setupServiceTest(t *testing.T) fixture {
	itemRepo := item.NewStubItemRepo()
	paymentRepo := payment.NewStubPaymentRepo()
	prefsRepo := &preferences.StubPreferencesRepo{}
	t.Cleanup(itemRepo.Cleanup)
	t.Cleanup(paymentRepo.Cleanup)
	t.Cleanup(prefsRepo.Cleanup)

	clock := &utils.FixedClock{}
	clock.SetNow(time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC))
	service := NewService(itemRepo, paymentRepo, prefsRepo, clock)

	return fixture{service, itemRepo, paymentRepo, prefsRepo, context.Background()}
}

func storedItem(id string) item.Item {
	amount := 1000
	return item.Item{
		ID:        id,
		Name:      id,
		Amount:    &amount,
		Active:    true,
		CreatedAt: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func march(itemID string) payment.PaymentRecord {
	rec := payment.NewRecord(itemID, payment.YearMonth{Year: 2025, Month: time.March})
	rec.IsPaid = true
	return rec
}

func TestService_Export(t *testing.T) {
	// given
	f := setupServiceTest(t)
	require.NoError(t, f.itemRepo.Store(f.ctx, storedItem("rent")))
	inactive := storedItem("old-gym")
	inactive.Active = false
	require.NoError(t, f.itemRepo.Store(f.ctx, inactive))
	require.NoError(t, f.paymentRepo.Upsert(f.ctx, march("rent")))

	// when
	snapshot, err := f.service.Export(f.ctx)

	// then
	require.NoError(t, err)
	assert.Len(t, snapshot.Items, 2, "inactive items are included in the export")
	assert.Len(t, snapshot.Payments, 1)
	assert.Equal(t, time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC), snapshot.ExportedAt)
}

func TestService_ImportMerge(t *testing.T) {
	t.Run("appends only unknown keys", func(t *testing.T) {
		// given
		f := setupServiceTest(t)
		existing := storedItem("rent")
		existing.Name = "Rent (existing)"
		require.NoError(t, f.itemRepo.Store(f.ctx, existing))
		require.NoError(t, f.paymentRepo.Upsert(f.ctx, march("rent")))

		incomingItems := []item.Item{storedItem("rent"), storedItem("electricity")}
		incomingPayments := []payment.PaymentRecord{
			march("rent"),
			march("electricity"),
		}

		// when
		result, err := f.service.Import(f.ctx, incomingItems, incomingPayments, ModeMerge)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, result.ItemsImported)
		assert.Equal(t, 1, result.ItemsSkipped)
		assert.Equal(t, 1, result.PaymentsImported)
		assert.Equal(t, 1, result.PaymentsSkipped)

		// the existing item was not overwritten
		kept, err := f.itemRepo.Get(f.ctx, "rent")
		require.NoError(t, err)
		assert.Equal(t, "Rent (existing)", kept.Name)

		items, err := f.itemRepo.GetAll(f.ctx, true)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("merge into an empty store imports everything", func(t *testing.T) {
		// given
		f := setupServiceTest(t)

		// when
		result, err := f.service.Import(f.ctx,
			[]item.Item{storedItem("rent")},
			[]payment.PaymentRecord{march("rent")},
			ModeMerge)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, result.ItemsImported)
		assert.Equal(t, 1, result.PaymentsImported)
	})
}

func TestService_ImportOverwrite(t *testing.T) {
	// given
	f := setupServiceTest(t)
	require.NoError(t, f.itemRepo.Store(f.ctx, storedItem("old-item")))
	require.NoError(t, f.paymentRepo.Upsert(f.ctx, march("old-item")))

	// when
	result, err := f.service.Import(f.ctx,
		[]item.Item{storedItem("rent")},
		[]payment.PaymentRecord{march("rent")},
		ModeOverwrite)

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, result.ItemsImported)
	assert.Equal(t, 0, result.ItemsSkipped)

	items, err := f.itemRepo.GetAll(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "rent", items[0].ID)

	records, err := f.paymentRepo.GetAll(f.ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rent", records[0].ItemID)
}

func TestService_ImportInvalidMode(t *testing.T) {
	f := setupServiceTest(t)

	_, err := f.service.Import(f.ctx, nil, nil, "replace")

	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestService_Reset(t *testing.T) {
	// given
	f := setupServiceTest(t)
	require.NoError(t, f.itemRepo.Store(f.ctx, storedItem("rent")))
	require.NoError(t, f.paymentRepo.Upsert(f.ctx, march("rent")))
	require.NoError(t, f.prefsRepo.Put(f.ctx, preferences.Preferences{CurrentYear: 2025}))

	// when
	require.NoError(t, f.service.Reset(f.ctx))

	// then
	items, err := f.itemRepo.GetAll(f.ctx, true)
	require.NoError(t, err)
	assert.Empty(t, items)

	records, err := f.paymentRepo.GetAll(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	prefs, err := f.prefsRepo.Get(f.ctx)
	require.NoError(t, err)
	assert.Nil(t, prefs)
}
