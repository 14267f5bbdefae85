package backup

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/eslsoft/depictor/internal/infrastructure/database"
)

const (
	defaultBatchSize = 500
	formatVersion    = 1
	metaType         = "meta"
	maxLineBytes     = 4 << 20
)

var (
	errNoTablesSelected = errors.New("backup: no tables selected")
	errMissingMeta      = errors.New("backup: dump does not start with a meta record")
)

// ProgressReporter receives per-table callbacks while a dump is written or restored.
type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type silentProgress struct{}

func (silentProgress) StartTable(string, int) {}
func (silentProgress) Increment(string, int)  {}
func (silentProgress) FinishTable(string)     {}

// meta is the first line of every dump.
type meta struct {
	Type        string         `json:"type"`
	Version     int            `json:"version"`
	ExportedAt  time.Time      `json:"exported_at"`
	Fingerprint string         `json:"schema_hash"`
	Tables      []string       `json:"tables"`
	RowCounts   map[string]int `json:"row_counts"`
}

type rowLine struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Service streams the annotation store to and from newline delimited JSON.
type Service struct {
	db          *database.DB
	batchSize   int
	byName      map[string]*Table
	fingerprint string
}

type Option func(*Service)

// WithBatchSize sets how many rows one export query fetches.
func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

func NewService(db *database.DB, opts ...Option) (*Service, error) {
	if db == nil {
		return nil, errors.New("backup: database is required")
	}
	s := &Service{
		db:          db,
		batchSize:   defaultBatchSize,
		byName:      lo.KeyBy(Tables, func(t *Table) string { return t.Name }),
		fingerprint: Fingerprint(Tables),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RunOption tunes a single Export or Import call.
type RunOption func(*runConfig)

type runConfig struct {
	tables   []string
	progress ProgressReporter
}

// WithTables restricts the run to the named tables. Names are case-insensitive.
func WithTables(names ...string) RunOption {
	return func(c *runConfig) { c.tables = append(c.tables, names...) }
}

func WithProgress(p ProgressReporter) RunOption {
	return func(c *runConfig) {
		if p != nil {
			c.progress = p
		}
	}
}

func (s *Service) prepare(opts []RunOption) ([]*Table, ProgressReporter, error) {
	cfg := runConfig{progress: silentProgress{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := s.selectTables(cfg.tables)
	return tables, cfg.progress, err
}

// selectTables keeps dependency order regardless of the order names were given in.
func (s *Service) selectTables(names []string) ([]*Table, error) {
	if len(names) == 0 {
		return lo.Filter(Tables, func(*Table, int) bool { return true }), nil
	}
	wanted := lo.Uniq(lo.FilterMap(names, func(n string, _ int) (string, bool) {
		n = strings.ToLower(strings.TrimSpace(n))
		return n, n != ""
	}))
	if len(wanted) == 0 {
		return nil, errNoTablesSelected
	}
	if unknown, found := lo.Find(wanted, func(n string) bool { return s.byName[n] == nil }); found {
		return nil, fmt.Errorf("backup: unsupported table %q", unknown)
	}
	return lo.Filter(Tables, func(t *Table, _ int) bool { return lo.Contains(wanted, t.Name) }), nil
}

// Export writes a meta line followed by one line per row. All reads happen
// inside one transaction so the dump is a consistent snapshot.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...RunOption) error {
	tables, progress, err := s.prepare(opts)
	if err != nil {
		return err
	}

	var txOpts *sql.TxOptions
	if s.db.Dialect == database.DialectPostgres {
		txOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	tx, err := s.db.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	head := meta{
		Type:        metaType,
		Version:     formatVersion,
		ExportedAt:  time.Now().UTC(),
		Fingerprint: s.fingerprint,
		Tables:      lo.Map(tables, tableName),
		RowCounts:   make(map[string]int, len(tables)),
	}
	for _, t := range tables {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.Name).Scan(&n); err != nil {
			return fmt.Errorf("count %s: %w", t.Name, err)
		}
		head.RowCounts[t.Name] = n
	}

	out := bufio.NewWriter(w)
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(head); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	for _, t := range tables {
		progress.StartTable(t.Name, head.RowCounts[t.Name])
		if err := s.dumpTable(ctx, tx, t, enc, progress); err != nil {
			return err
		}
		progress.FinishTable(t.Name)
	}
	return out.Flush()
}

// dumpTable pages through a table by key rather than by offset.
func (s *Service) dumpTable(ctx context.Context, tx *sql.Tx, t *Table, enc *json.Encoder, progress ProgressReporter) error {
	selectList := strings.Join(t.columnNames(), ", ")
	var after any
	for {
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT %d", selectList, t.Name, t.Key, s.batchSize)
		var args []any
		if after != nil {
			query = fmt.Sprintf("SELECT %s FROM %s WHERE %s > ? ORDER BY %s LIMIT %d", selectList, t.Name, t.Key, t.Key, s.batchSize)
			args = append(args, after)
		}
		rows, err := tx.QueryContext(ctx, s.db.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("query %s: %w", t.Name, err)
		}
		n, last, err := writeRows(rows, t, enc, progress)
		if err != nil {
			return err
		}
		if n < s.batchSize {
			return nil
		}
		after = last
	}
}

func writeRows(rows *sql.Rows, t *Table, enc *json.Encoder, progress ProgressReporter) (int, any, error) {
	defer rows.Close()

	raw := make([]any, len(t.Columns))
	dest := lo.Map(raw, func(_ any, i int) any { return &raw[i] })
	var (
		n    int
		last any
	)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return n, nil, fmt.Errorf("scan %s: %w", t.Name, err)
		}
		payload, err := t.encodeRow(raw)
		if err != nil {
			return n, nil, err
		}
		if err := enc.Encode(rowLine{Type: t.Name, Payload: payload}); err != nil {
			return n, nil, fmt.Errorf("write %s row: %w", t.Name, err)
		}
		progress.Increment(t.Name, 1)
		last = payload[t.Key]
		n++
	}
	if err := rows.Err(); err != nil {
		return n, nil, fmt.Errorf("iterate %s: %w", t.Name, err)
	}
	return n, last, nil
}

// Import upserts every selected row of a dump inside a single transaction.
// Rows of tables that were not selected are skipped.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...RunOption) (err error) {
	tables, progress, err := s.prepare(opts)
	if err != nil {
		return err
	}
	selected := lo.KeyBy(tables, func(t *Table) string { return t.Name })

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		head    *meta
		current string
		serials = make(map[*Table]int64)
	)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		if !gjson.ValidBytes(text) {
			return fmt.Errorf("backup: line %d is not valid JSON", lineNo)
		}
		line := gjson.ParseBytes(text)
		kind := line.Get("type").String()

		if head == nil {
			if kind != metaType {
				return errMissingMeta
			}
			if head, err = s.readMeta(text); err != nil {
				return err
			}
			continue
		}

		t, ok := selected[kind]
		if !ok {
			continue
		}
		payload := line.Get("payload")
		if !payload.IsObject() {
			return fmt.Errorf("backup: line %d: %s record has no payload", lineNo, kind)
		}
		if kind != current {
			if current != "" {
				progress.FinishTable(current)
			}
			progress.StartTable(kind, head.RowCounts[kind])
			current = kind
		}

		cols, args, err := t.decodeRow(payload)
		if err != nil {
			return fmt.Errorf("backup: line %d: %w", lineNo, err)
		}
		if err := s.upsert(ctx, tx, t, cols, args); err != nil {
			return fmt.Errorf("backup: line %d: %w", lineNo, err)
		}
		trackSerials(serials, t, cols, args)
		progress.Increment(kind, 1)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if current != "" {
		progress.FinishTable(current)
	}
	if head == nil {
		return errMissingMeta
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return s.syncSequences(ctx, serials)
}

func (s *Service) readMeta(text []byte) (*meta, error) {
	var head meta
	if err := json.Unmarshal(text, &head); err != nil {
		return nil, fmt.Errorf("backup: decode meta: %w", err)
	}
	if head.Version != formatVersion {
		return nil, fmt.Errorf("backup: unsupported format version %d", head.Version)
	}
	if head.Fingerprint != "" && head.Fingerprint != s.fingerprint {
		return nil, fmt.Errorf("backup: schema hash %s does not match this build", head.Fingerprint)
	}
	return &head, nil
}

func (s *Service) upsert(ctx context.Context, tx *sql.Tx, t *Table, cols []string, args []any) error {
	if len(cols) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		t.Name, strings.Join(cols, ", "), placeholders, conflictClause(t, cols))
	if _, err := tx.ExecContext(ctx, s.db.Rebind(stmt), args...); err != nil {
		return fmt.Errorf("insert into %s: %w", t.Name, err)
	}
	return nil
}

// conflictClause uses the ON CONFLICT form both sqlite and postgres understand.
func conflictClause(t *Table, cols []string) string {
	sets := lo.FilterMap(cols, func(c string, _ int) (string, bool) {
		return c + " = excluded." + c, c != t.Key
	})
	if len(sets) == 0 {
		return "ON CONFLICT (" + t.Key + ") DO NOTHING"
	}
	return "ON CONFLICT (" + t.Key + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

func trackSerials(serials map[*Table]int64, t *Table, cols []string, args []any) {
	for i, name := range cols {
		col, _ := t.column(name)
		if !col.Serial {
			continue
		}
		if n, ok := args[i].(int64); ok && n > serials[t] {
			serials[t] = n
		}
	}
}

// syncSequences moves postgres serial sequences past the imported ids.
// sqlite derives the next rowid from the table itself.
func (s *Service) syncSequences(ctx context.Context, serials map[*Table]int64) error {
	if s.db.Dialect != database.DialectPostgres {
		return nil
	}
	for t, highest := range serials {
		if highest <= 0 {
			continue
		}
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', '%[2]s'), GREATEST(%[3]d, (SELECT COALESCE(MAX(%[2]s), 0) FROM %[1]s)))",
			t.Name, t.Key, highest,
		)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sync sequence for %s.%s: %w", t.Name, t.Key, err)
		}
	}
	return nil
}
