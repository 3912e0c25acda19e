package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/fixtrack/fixtrack/internal/utils"
)

var ErrInvalidPreference = errors.New("invalid preference value")

type Service interface {
	Get(ctx context.Context) (Preferences, error)
	Put(ctx context.Context, prefs Preferences) (Preferences, error)
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

// Get returns stored preferences, or session defaults pointing at the current
// year. Defaults are not persisted until the first Put.
func (s *ServiceImpl) Get(ctx context.Context) (Preferences, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return Preferences{}, err
	}
	if stored != nil {
		return *stored, nil
	}
	return Preferences{
		CurrentYear: s.clock.Now().Year(),
		Filter:      FilterAll,
		Sort:        SortByName,
	}, nil
}

func (s *ServiceImpl) Put(ctx context.Context, prefs Preferences) (Preferences, error) {
	if !prefs.Filter.Valid() {
		return Preferences{}, fmt.Errorf("%w: filter %q", ErrInvalidPreference, prefs.Filter)
	}
	if !prefs.Sort.Valid() {
		return Preferences{}, fmt.Errorf("%w: sort %q", ErrInvalidPreference, prefs.Sort)
	}
	if prefs.CurrentYear < 1 || prefs.CurrentYear > 9999 {
		return Preferences{}, fmt.Errorf("%w: year %d", ErrInvalidPreference, prefs.CurrentYear)
	}
	if err := s.repo.Put(ctx, prefs); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}
