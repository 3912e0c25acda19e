package preferences

import "context"

type StubPreferencesRepo struct {
	stored *Preferences
}

func (s *StubPreferencesRepo) Get(_ context.Context) (*Preferences, error) {
	if s.stored == nil {
		return nil, nil
	}
	copied := *s.stored
	return &copied, nil
}

func (s *StubPreferencesRepo) Put(_ context.Context, prefs Preferences) error {
	s.stored = &prefs
	return nil
}

func (s *StubPreferencesRepo) Delete(_ context.Context) error {
	s.stored = nil
	return nil
}

func (s *StubPreferencesRepo) Cleanup() {
	s.stored = nil
}
