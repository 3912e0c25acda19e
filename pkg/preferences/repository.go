package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Get(ctx context.Context) (*Preferences, error)
	Put(ctx context.Context, prefs Preferences) error
	Delete(ctx context.Context) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// Get returns nil when nothing was stored yet; the service fills in defaults.
func (r *RepositoryImpl) Get(ctx context.Context) (*Preferences, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT current_year, filter, sort, search FROM ui_preferences WHERE id = 1",
	)
	var prefs Preferences
	err := row.Scan(&prefs.CurrentYear, &prefs.Filter, &prefs.Sort, &prefs.Search)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Errorf("could not read preferences: %v", err)
		return nil, fmt.Errorf("could not read preferences: %w", err)
	}
	return &prefs, nil
}

func (r *RepositoryImpl) Put(ctx context.Context, prefs Preferences) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ui_preferences (id, current_year, filter, sort, search)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   current_year = excluded.current_year,
		   filter = excluded.filter,
		   sort = excluded.sort,
		   search = excluded.search`,
		prefs.CurrentYear, string(prefs.Filter), string(prefs.Sort), prefs.Search,
	)
	if err != nil {
		log.Errorf("could not store preferences: %v", err)
		return fmt.Errorf("could not store preferences: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM ui_preferences WHERE id = 1")
	if err != nil {
		log.Errorf("could not delete preferences: %v", err)
		return fmt.Errorf("could not delete preferences: %w", err)
	}
	return nil
}
