package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kstocklab/kstock/market"
)

// CSVStore keeps the log as a headerless CSV file with columns
// date,code,name,price,quantity,amount,net,balance. Deposit rows leave
// code through net empty. The file is opened, touched and closed per
// operation so no descriptor is held between ledger calls.
type CSVStore struct {
	path string
}

// NewCSV opens (creating if absent) the log file at path. The parent
// directory must already exist; a missing parent yields ErrStoreNotFound.
func NewCSV(path string) (*CSVStore, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: directory %s", ErrStoreNotFound, dir)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreNotFound, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &CSVStore{path: path}, nil
}

// Path returns the log file's location.
func (s *CSVStore) Path() string { return s.path }

func (s *CSVStore) ReadAll() ([]Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreNotFound, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 8
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyLog, s.path)
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, err := decodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("history %s line %d: %w", s.path, i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSVStore) Append(row Row) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreNotFound, err)
	}

	w := csv.NewWriter(f)
	werr := w.Write(encodeRecord(row))
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("append history: %w", werr)
	}
	return cerr
}

// Close is a no-op; CSVStore holds no descriptor between operations.
func (s *CSVStore) Close() error { return nil }

func encodeRecord(row Row) []string {
	switch r := row.(type) {
	case TradeRow:
		return []string{
			r.Time.Format(time.RFC3339Nano),
			r.Code.String(),
			r.Name,
			strconv.FormatInt(r.Price, 10),
			strconv.FormatInt(r.Quantity, 10),
			strconv.FormatInt(r.Amount, 10),
			strconv.FormatInt(r.Net, 10),
			strconv.FormatInt(r.Balance, 10),
		}
	case DepositRow:
		return []string{
			r.Time.Format(time.RFC3339Nano),
			"", "", "", "", "", "",
			strconv.FormatInt(r.Balance, 10),
		}
	default:
		// Row is sealed; no third shape exists.
		panic(fmt.Sprintf("unknown row type %T", row))
	}
}

func decodeRecord(rec []string) (Row, error) {
	t, err := time.Parse(time.RFC3339Nano, rec[0])
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", rec[0], err)
	}
	balance, err := strconv.ParseInt(rec[7], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad balance %q: %w", rec[7], err)
	}

	if isDeposit(rec) {
		return DepositRow{Time: t, Balance: balance}, nil
	}

	code, err := market.ParseCode(rec[1])
	if err != nil {
		return nil, err
	}
	nums := make([]int64, 4)
	for i, s := range rec[3:7] {
		if nums[i], err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, fmt.Errorf("bad numeric field %q: %w", s, err)
		}
	}
	return TradeRow{
		Time:     t,
		Code:     code,
		Name:     rec[2],
		Price:    nums[0],
		Quantity: nums[1],
		Amount:   nums[2],
		Net:      nums[3],
		Balance:  balance,
	}, nil
}

// isDeposit reports whether columns code through net are all empty.
func isDeposit(rec []string) bool {
	for _, s := range rec[1:7] {
		if s != "" {
			return false
		}
	}
	return true
}
