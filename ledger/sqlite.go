package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kstocklab/kstock/market"
)

// SQLiteStore keeps the log in a single-table SQLite database. Rows carry a
// ULID primary key so reads within the same timestamp stay in append order.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if absent) the log database at path. The parent
// directory must already exist; a missing parent yields ErrStoreNotFound.
func NewSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: directory %s", ErrStoreNotFound, dir)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreNotFound, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ReadAll() ([]Row, error) {
	rows, err := s.db.Query(`
		SELECT date, code, name, price, quantity, amount, net, balance
		FROM history
		ORDER BY date ASC, row_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			date     time.Time
			code     sql.NullString
			name     sql.NullString
			price    sql.NullInt64
			quantity sql.NullInt64
			amount   sql.NullInt64
			net      sql.NullInt64
			balance  int64
		)
		if err := rows.Scan(&date, &code, &name, &price, &quantity, &amount, &net, &balance); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		if !code.Valid {
			out = append(out, DepositRow{Time: date, Balance: balance})
			continue
		}
		c, err := market.ParseCode(code.String)
		if err != nil {
			return nil, err
		}
		out = append(out, TradeRow{
			Time:     date,
			Code:     c,
			Name:     name.String,
			Price:    price.Int64,
			Quantity: quantity.Int64,
			Amount:   amount.Int64,
			Net:      net.Int64,
			Balance:  balance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: sqlite history", ErrEmptyLog)
	}
	return out, nil
}

func (s *SQLiteStore) Append(row Row) error {
	switch r := row.(type) {
	case TradeRow:
		_, err := s.db.Exec(`
			INSERT INTO history
			(row_id, date, code, name, price, quantity, amount, net, balance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			newRowID(), r.Time, r.Code.String(), r.Name,
			r.Price, r.Quantity, r.Amount, r.Net, r.Balance,
		)
		return err
	case DepositRow:
		_, err := s.db.Exec(`
			INSERT INTO history (row_id, date, balance)
			VALUES (?, ?, ?)`,
			newRowID(), r.Time, r.Balance,
		)
		return err
	default:
		panic(fmt.Sprintf("unknown row type %T", row))
	}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
