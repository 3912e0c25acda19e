package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrItemNotFound = errors.New("item not found")

type Repository interface {
	Store(ctx context.Context, item Item) error
	StoreAll(ctx context.Context, items []Item) error
	Get(ctx context.Context, id string) (Item, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Item, error)
	Update(ctx context.Context, item Item) (bool, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, item Item) error {
	query := `INSERT INTO expense_item (id, name, amount, note, active, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		item.ID,
		item.Name,
		amountParam(item.Amount),
		item.Note,
		item.Active,
		item.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) StoreAll(ctx context.Context, items []Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	query := `INSERT INTO expense_item (id, name, amount, note, active, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("could not prepare query: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(ctx,
			item.ID,
			item.Name,
			amountParam(item.Amount),
			item.Note,
			item.Active,
			item.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("could not store item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id string) (Item, error) {
	query := `SELECT id, name, amount, note, active, created_at FROM expense_item WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan item: %w", err)
		log.Error(err)
		return Item{}, err
	}
	return item, nil
}

func (r *RepositoryImpl) GetAll(ctx context.Context, includeInactive bool) ([]Item, error) {
	activeWhereQuery := "WHERE active = 1"
	if includeInactive {
		activeWhereQuery = ""
	}
	query := fmt.Sprintf(
		`SELECT id, name, amount, note, active, created_at FROM expense_item %s ORDER BY created_at, id`,
		activeWhereQuery,
	)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan item: %w", err)
			log.Error(err)
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return items, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, item Item) (bool, error) {
	query := `UPDATE expense_item SET name = ?, amount = ?, note = ? WHERE id = ?`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, item.Name, amountParam(item.Amount), item.Note, item.ID)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepositoryImpl) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	query := `UPDATE expense_item SET active = ? WHERE id = ?`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, active, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepositoryImpl) Count(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expense_item`)
	var count int
	if err := row.Scan(&count); err != nil {
		err := fmt.Errorf("could not count items: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r *RepositoryImpl) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expense_item`); err != nil {
		err := fmt.Errorf("could not delete items: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func amountParam(amount *int) interface{} {
	if amount == nil {
		return nil
	}
	return *amount
}

func scanItem(scan func(dest ...any) error) (Item, error) {
	var item Item
	var amount sql.NullInt64
	var createdAt string
	if err := scan(&item.ID, &item.Name, &amount, &item.Note, &item.Active, &createdAt); err != nil {
		return Item{}, err
	}
	if amount.Valid {
		a := int(amount.Int64)
		item.Amount = &a
	}
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Item{}, fmt.Errorf("could not parse created_at: %w", err)
	}
	item.CreatedAt = parsed
	return item, nil
}
