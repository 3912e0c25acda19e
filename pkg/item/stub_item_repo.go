package item

import (
	"context"
)

type StubItemRepo struct {
	items []Item
}

func NewStubItemRepo() *StubItemRepo {
	return &StubItemRepo{}
}

func (s *StubItemRepo) Store(ctx context.Context, item Item) error {
	s.items = append(s.items, item)
	return nil
}

func (s *StubItemRepo) StoreAll(ctx context.Context, items []Item) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *StubItemRepo) Get(ctx context.Context, id string) (Item, error) {
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return Item{}, ErrItemNotFound
}

func (s *StubItemRepo) GetAll(ctx context.Context, includeInactive bool) ([]Item, error) {
	items := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if item.Active || includeInactive {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *StubItemRepo) Update(ctx context.Context, item Item) (bool, error) {
	for i := range s.items {
		if s.items[i].ID == item.ID {
			item.Active = s.items[i].Active
			item.CreatedAt = s.items[i].CreatedAt
			s.items[i] = item
			return true, nil
		}
	}
	return false, nil
}

func (s *StubItemRepo) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Active = active
			return true, nil
		}
	}
	return false, nil
}

func (s *StubItemRepo) Count(ctx context.Context) (int, error) {
	return len(s.items), nil
}

func (s *StubItemRepo) DeleteAll(ctx context.Context) error {
	s.items = nil
	return nil
}

func (s *StubItemRepo) Cleanup() {
	s.items = nil
}
