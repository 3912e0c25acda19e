package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fixtrack/fixtrack/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) *RepositoryImpl {
	db := test_utils.SetupTestDB(t)
	return NewRepository(db)
}

func TestRepository_UpsertAndFind(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	ctx := context.Background()
	ym := YearMonth{Year: 2025, Month: time.March}
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	from := YearMonth{Year: 2025, Month: time.February}
	rec := PaymentRecord{
		ItemID:      "item-1",
		YearMonth:   ym,
		IsPaid:      true,
		PaidDate:    &date,
		Method:      MethodBankTransfer,
		Memo:        "with note",
		MonthsPaid:  1,
		GroupID:     "group-1",
		PrepaidFrom: &from,
	}

	// when
	require.NoError(t, repo.Upsert(ctx, rec))
	found, err := repo.Find(ctx, "item-1", ym)

	// then
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, rec, *found)
}

func TestRepository_FindAbsent(t *testing.T) {
	repo := setupTestRepository(t)

	found, err := repo.Find(context.Background(), "item-1", YearMonth{Year: 2025, Month: time.March})

	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepository_UpsertOverwrites(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	ctx := context.Background()
	ym := YearMonth{Year: 2025, Month: time.March}
	require.NoError(t, repo.Upsert(ctx, NewRecord("item-1", ym)))

	// when
	updated := NewRecord("item-1", ym)
	updated.IsPaid = true
	updated.Method = MethodCash
	require.NoError(t, repo.Upsert(ctx, updated))

	// then
	found, err := repo.Find(ctx, "item-1", ym)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsPaid)
	assert.Equal(t, MethodCash, found.Method)
}

func TestRepository_Delete(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	ctx := context.Background()
	ym := YearMonth{Year: 2025, Month: time.March}
	require.NoError(t, repo.Upsert(ctx, NewRecord("item-1", ym)))

	// when
	deleted, err := repo.Delete(ctx, "item-1", ym)

	// then
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err := repo.Find(ctx, "item-1", ym)
	require.NoError(t, err)
	assert.Nil(t, found)

	deleted, err = repo.Delete(ctx, "item-1", ym)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepository_FindByGroup(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	ctx := context.Background()
	base := YearMonth{Year: 2025, Month: time.March}
	for k := 0; k < 3; k++ {
		rec := NewRecord("item-1", base.AddMonths(k))
		rec.IsPaid = true
		rec.GroupID = "group-1"
		require.NoError(t, repo.Upsert(ctx, rec))
	}
	other := NewRecord("item-2", base)
	other.GroupID = "group-2"
	require.NoError(t, repo.Upsert(ctx, other))

	// when
	members, err := repo.FindByGroup(ctx, "group-1")

	// then
	require.NoError(t, err)
	require.Len(t, members, 3)
	for k, member := range members {
		assert.Equal(t, base.AddMonths(k), member.YearMonth)
		assert.Equal(t, "group-1", member.GroupID)
	}
}

func TestRepository_GetPaid(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	ctx := context.Background()
	paid := NewRecord("item-1", YearMonth{Year: 2025, Month: time.March})
	paid.IsPaid = true
	require.NoError(t, repo.Upsert(ctx, paid))
	require.NoError(t, repo.Upsert(ctx, NewRecord("item-1", YearMonth{Year: 2025, Month: time.April})))

	// when
	records, err := repo.GetPaid(ctx)

	// then
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, YearMonth{Year: 2025, Month: time.March}, records[0].YearMonth)
}

func TestRepository_WithTransactionRollsBack(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	ctx := context.Background()
	ym := YearMonth{Year: 2025, Month: time.March}

	// when
	err := repo.WithTransaction(ctx, func(txRepo Repository) error {
		if err := txRepo.Upsert(ctx, NewRecord("item-1", ym)); err != nil {
			return err
		}
		return errors.New("abort")
	})

	// then
	require.Error(t, err)
	found, err := repo.Find(ctx, "item-1", ym)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepository_StoreAllAndDeleteAll(t *testing.T) {
	// given
	repo := setupTestRepository(t)
	ctx := context.Background()
	records := []PaymentRecord{
		NewRecord("item-1", YearMonth{Year: 2025, Month: time.January}),
		NewRecord("item-1", YearMonth{Year: 2025, Month: time.February}),
		NewRecord("item-2", YearMonth{Year: 2025, Month: time.January}),
	}

	// when
	require.NoError(t, repo.StoreAll(ctx, records))

	// then
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
