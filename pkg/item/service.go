package item

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fixtrack/fixtrack/internal/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyName      = errors.New("item name must not be empty")
	ErrDuplicateName  = errors.New("an item with the same name already exists")
	ErrNegativeAmount = errors.New("item amount must not be negative")
)

type Service interface {
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, item Item) (Item, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	List(ctx context.Context, includeInactive bool) ([]Item, error)
	Get(ctx context.Context, id string) (Item, error)
	SeedDefaults(ctx context.Context) error
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, item Item) (Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Note = strings.TrimSpace(item.Note)
	if err := s.validate(ctx, item, ""); err != nil {
		return Item{}, err
	}

	item.ID = uuid.NewString()
	item.Active = true
	item.CreatedAt = s.clock.Now()

	if err := s.repo.Store(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *ServiceImpl) Update(ctx context.Context, item Item) (Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Note = strings.TrimSpace(item.Note)
	if err := s.validate(ctx, item, item.ID); err != nil {
		return Item{}, err
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return Item{}, err
	}
	if !updated {
		log.Warnf("item not updated, probably because it does not exist (%s)", item.ID)
		return Item{}, ErrItemNotFound
	}
	return s.repo.Get(ctx, item.ID)
}

// SetActive flips the soft-delete flag. Payment records are never touched:
// deactivation preserves the full ledger history of the item.
func (s *ServiceImpl) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	changed, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return false, err
	}
	if !changed {
		log.Warnf("item not found for activation change (%s)", id)
		return false, ErrItemNotFound
	}
	return true, nil
}

func (s *ServiceImpl) List(ctx context.Context, includeInactive bool) ([]Item, error) {
	return s.repo.GetAll(ctx, includeInactive)
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Item, error) {
	return s.repo.Get(ctx, id)
}

// SeedDefaults populates an empty store with the starter items shown on first
// use. It is a no-op when any item already exists.
func (s *ServiceImpl) SeedDefaults(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []string{"Rent", "Maintenance fee", "Electricity", "Phone & internet"}
	now := s.clock.Now()
	items := make([]Item, 0, len(defaults))
	for _, name := range defaults {
		items = append(items, Item{
			ID:        uuid.NewString(),
			Name:      name,
			Active:    true,
			CreatedAt: now,
		})
	}
	if err := s.repo.StoreAll(ctx, items); err != nil {
		return fmt.Errorf("failed to seed default items: %w", err)
	}
	log.Infof("Seeded %d default expense items", len(items))
	return nil
}

func (s *ServiceImpl) validate(ctx context.Context, item Item, excludeId string) error {
	if item.Name == "" {
		return ErrEmptyName
	}
	if item.Amount != nil && *item.Amount < 0 {
		return ErrNegativeAmount
	}
	duplicate, err := s.isDuplicateName(ctx, item.Name, excludeId)
	if err != nil {
		return err
	}
	if duplicate {
		return ErrDuplicateName
	}
	return nil
}

// isDuplicateName checks the trimmed, case-folded name against active items only:
// a deactivated item does not block reuse of its name.
func (s *ServiceImpl) isDuplicateName(ctx context.Context, name string, excludeId string) (bool, error) {
	active, err := s.repo.GetAll(ctx, false)
	if err != nil {
		return false, err
	}
	normalized := NormalizeName(name)
	for _, existing := range active {
		if existing.ID != excludeId && NormalizeName(existing.Name) == normalized {
			return true, nil
		}
	}
	return false, nil
}
