package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/fixtrack/fixtrack/internal/utils"
	"github.com/fixtrack/fixtrack/pkg/item"
	"github.com/fixtrack/fixtrack/pkg/payment"
	"github.com/fixtrack/fixtrack/pkg/preferences"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidFormat = errors.New("invalid transfer document")
	ErrInvalidMode   = errors.New("invalid import mode")
)

type Service interface {
	Export(ctx context.Context) (Snapshot, error)
	Import(ctx context.Context, items []item.Item, payments []payment.PaymentRecord, mode ImportMode) (ImportResult, error)
	Reset(ctx context.Context) error
}

type ServiceImpl struct {
	itemRepo    item.Repository
	paymentRepo payment.Repository
	prefsRepo   preferences.Repository
	clock       utils.Clock
}

func NewService(itemRepo item.Repository, paymentRepo payment.Repository, prefsRepo preferences.Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		itemRepo:    itemRepo,
		paymentRepo: paymentRepo,
		prefsRepo:   prefsRepo,
		clock:       clock,
	}
}

func (s *ServiceImpl) Export(ctx context.Context) (Snapshot, error) {
	items, err := s.itemRepo.GetAll(ctx, true)
	if err != nil {
		return Snapshot{}, err
	}
	payments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Items:      items,
		Payments:   payments,
		ExportedAt: s.clock.Now(),
	}, nil
}

func (s *ServiceImpl) Import(ctx context.Context, items []item.Item, payments []payment.PaymentRecord, mode ImportMode) (ImportResult, error) {
	if !mode.Valid() {
		return ImportResult{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	switch mode {
	case ModeOverwrite:
		return s.importOverwrite(ctx, items, payments)
	default:
		return s.importMerge(ctx, items, payments)
	}
}

func (s *ServiceImpl) importOverwrite(ctx context.Context, items []item.Item, payments []payment.PaymentRecord) (ImportResult, error) {
	if err := s.itemRepo.DeleteAll(ctx); err != nil {
		return ImportResult{}, err
	}
	if err := s.paymentRepo.DeleteAll(ctx); err != nil {
		return ImportResult{}, err
	}
	if err := s.itemRepo.StoreAll(ctx, items); err != nil {
		return ImportResult{}, err
	}
	if err := s.paymentRepo.StoreAll(ctx, payments); err != nil {
		return ImportResult{}, err
	}
	log.Infof("imported %d items and %d payment records (overwrite)", len(items), len(payments))
	return ImportResult{ItemsImported: len(items), PaymentsImported: len(payments)}, nil
}

func (s *ServiceImpl) importMerge(ctx context.Context, items []item.Item, payments []payment.PaymentRecord) (ImportResult, error) {
	existingItems, err := s.itemRepo.GetAll(ctx, true)
	if err != nil {
		return ImportResult{}, err
	}
	existingPayments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	knownIds := make(map[string]bool, len(existingItems))
	for _, it := range existingItems {
		knownIds[it.ID] = true
	}
	knownCells := make(map[string]bool, len(existingPayments))
	for _, record := range existingPayments {
		knownCells[cellKey(record)] = true
	}

	var result ImportResult
	newItems := make([]item.Item, 0, len(items))
	for _, it := range items {
		if knownIds[it.ID] {
			result.ItemsSkipped++
			continue
		}
		newItems = append(newItems, it)
	}
	newPayments := make([]payment.PaymentRecord, 0, len(payments))
	for _, record := range payments {
		if knownCells[cellKey(record)] {
			result.PaymentsSkipped++
			continue
		}
		newPayments = append(newPayments, record)
	}

	if err := s.itemRepo.StoreAll(ctx, newItems); err != nil {
		return ImportResult{}, err
	}
	if err := s.paymentRepo.StoreAll(ctx, newPayments); err != nil {
		return ImportResult{}, err
	}

	result.ItemsImported = len(newItems)
	result.PaymentsImported = len(newPayments)
	log.Infof("imported %d items and %d payment records, skipped %d/%d (merge)",
		result.ItemsImported, result.PaymentsImported, result.ItemsSkipped, result.PaymentsSkipped)
	return result, nil
}

// Reset wipes all three stores.
func (s *ServiceImpl) Reset(ctx context.Context) error {
	if err := s.paymentRepo.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.itemRepo.DeleteAll(ctx); err != nil {
		return err
	}
	return s.prefsRepo.Delete(ctx)
}

func cellKey(record payment.PaymentRecord) string {
	return record.ItemID + "|" + record.YearMonth.String()
}
