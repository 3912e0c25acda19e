package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const paidDateLayout = "2006-01-02"

type Repository interface {
	// WithTransaction runs fn against a transaction-backed repository. The
	// prepayment engine uses it so that group creation and the removal of a
	// previously attached group persist atomically.
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	Find(ctx context.Context, itemID string, ym YearMonth) (*PaymentRecord, error)
	Upsert(ctx context.Context, rec PaymentRecord) error
	Delete(ctx context.Context, itemID string, ym YearMonth) (bool, error)
	FindByGroup(ctx context.Context, groupID string) ([]PaymentRecord, error)
	GetAll(ctx context.Context) ([]PaymentRecord, error)
	GetPaid(ctx context.Context) ([]PaymentRecord, error)
	StoreAll(ctx context.Context, recs []PaymentRecord) error
	DeleteAll(ctx context.Context) error
}

type RepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		// Already inside a transaction; nesting reuses it.
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback is a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const recordColumns = `item_id, year_month, is_paid, paid_date, method, memo, months_paid, payment_group_id, prepaid_from`

func (r *RepositoryImpl) Find(ctx context.Context, itemID string, ym YearMonth) (*PaymentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_record WHERE item_id = ? AND year_month = ?`, recordColumns)
	row := r.getQueryer().QueryRowContext(ctx, query, itemID, ym.String())

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("could not scan payment record: %w", err)
		log.Error(err)
		return nil, err
	}
	return &rec, nil
}

func (r *RepositoryImpl) Upsert(ctx context.Context, rec PaymentRecord) error {
	query := `INSERT INTO payment_record (item_id, year_month, is_paid, paid_date, method, memo, months_paid, payment_group_id, prepaid_from)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (item_id, year_month) DO UPDATE SET
					is_paid = excluded.is_paid,
					paid_date = excluded.paid_date,
					method = excluded.method,
					memo = excluded.memo,
					months_paid = excluded.months_paid,
					payment_group_id = excluded.payment_group_id,
					prepaid_from = excluded.prepaid_from`

	stmt, err := r.getQueryer().PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		rec.ItemID,
		rec.YearMonth.String(),
		rec.IsPaid,
		paidDateParam(rec.PaidDate),
		string(rec.Method),
		rec.Memo,
		rec.MonthsPaid,
		rec.GroupID,
		prepaidFromParam(rec.PrepaidFrom),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, itemID string, ym YearMonth) (bool, error) {
	query := `DELETE FROM payment_record WHERE item_id = ? AND year_month = ?`
	result, err := r.getQueryer().ExecContext(ctx, query, itemID, ym.String())
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

func (r *RepositoryImpl) FindByGroup(ctx context.Context, groupID string) ([]PaymentRecord, error) {
	if groupID == "" {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM payment_record WHERE payment_group_id = ? ORDER BY year_month`, recordColumns)
	return r.queryRecords(ctx, query, groupID)
}

func (r *RepositoryImpl) GetAll(ctx context.Context) ([]PaymentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_record ORDER BY item_id, year_month`, recordColumns)
	return r.queryRecords(ctx, query)
}

func (r *RepositoryImpl) GetPaid(ctx context.Context) ([]PaymentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_record WHERE is_paid = 1 ORDER BY item_id, year_month`, recordColumns)
	return r.queryRecords(ctx, query)
}

func (r *RepositoryImpl) StoreAll(ctx context.Context, recs []PaymentRecord) error {
	return r.WithTransaction(ctx, func(repo Repository) error {
		for _, rec := range recs {
			if err := repo.Upsert(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RepositoryImpl) DeleteAll(ctx context.Context) error {
	if _, err := r.getQueryer().ExecContext(ctx, `DELETE FROM payment_record`); err != nil {
		err := fmt.Errorf("could not delete payment records: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) queryRecords(ctx context.Context, query string, args ...interface{}) ([]PaymentRecord, error) {
	rows, err := r.getQueryer().QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query payment records: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var recs []PaymentRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan payment record: %w", err)
			log.Error(err)
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	return recs, nil
}

func paidDateParam(d *time.Time) interface{} {
	if d == nil {
		return nil
	}
	return d.Format(paidDateLayout)
}

func prepaidFromParam(ym *YearMonth) interface{} {
	if ym == nil {
		return nil
	}
	return ym.String()
}

func scanRecord(scan func(dest ...any) error) (PaymentRecord, error) {
	var rec PaymentRecord
	var ymString, method string
	var paidDate, prepaidFrom sql.NullString
	if err := scan(
		&rec.ItemID,
		&ymString,
		&rec.IsPaid,
		&paidDate,
		&method,
		&rec.Memo,
		&rec.MonthsPaid,
		&rec.GroupID,
		&prepaidFrom,
	); err != nil {
		return PaymentRecord{}, err
	}

	ym, err := ParseYearMonth(ymString)
	if err != nil {
		return PaymentRecord{}, err
	}
	rec.YearMonth = ym
	rec.Method = Method(method)

	if paidDate.Valid {
		d, err := time.Parse(paidDateLayout, paidDate.String)
		if err != nil {
			return PaymentRecord{}, fmt.Errorf("could not parse paid_date: %w", err)
		}
		rec.PaidDate = &d
	}
	if prepaidFrom.Valid {
		origin, err := ParseYearMonth(prepaidFrom.String)
		if err != nil {
			return PaymentRecord{}, fmt.Errorf("could not parse prepaid_from: %w", err)
		}
		rec.PrepaidFrom = &origin
	}

	return rec, nil
}
