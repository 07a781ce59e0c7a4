// Package outcomes keeps a ClickHouse ledger of every finished lifecycle job
package outcomes

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"hellomama/internal/platform/config"
	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/logger"
	"hellomama/internal/platform/store"

	lifedom "hellomama/internal/services/lifecycle/domain"
)

// DefaultTable is where outcome rows land unless OUTCOMES_TABLE says otherwise
const DefaultTable = "engine_outcomes"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Options configures the ledger
type Options struct {
	Table string
}

// FromConfig reads OUTCOMES_ keys
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("OUTCOMES_")
	return Options{Table: c.MayString("TABLE", DefaultTable)}
}

// Ledger implements lifedom.OutcomeSink over ClickHouse. A nil Ledger or one
// without a client drops records
type Ledger struct {
	ch    store.Clickhouse
	table string
	log   logger.Logger
}

var _ lifedom.OutcomeSink = (*Ledger)(nil)

// New returns a ledger writing to o.Table
func New(ch store.Clickhouse, o Options) (*Ledger, error) {
	if o.Table == "" {
		o.Table = DefaultTable
	}
	if !tableName.MatchString(o.Table) {
		return nil, perr.InvalidArgf("bad outcomes table name %q", o.Table)
	}
	return &Ledger{ch: ch, table: o.Table, log: *logger.Named("outcomes")}, nil
}

func (l *Ledger) enabled() bool { return l != nil && l.ch != nil }

// EnsureTable creates the ledger table when missing
func (l *Ledger) EnsureTable(ctx context.Context) error {
	if !l.enabled() {
		return nil
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			job_id           String,
			kind             LowCardinality(String),
			record_id        String,
			mother_id        String,
			outcome          LowCardinality(String),
			detail           String,
			requests_created UInt32,
			attempts         UInt32,
			processed_at     DateTime64(3, 'UTC')
		)
		ENGINE = MergeTree
		PARTITION BY toYYYYMM(processed_at)
		ORDER BY (kind, outcome, processed_at)`, l.table)
	if err := l.ch.Exec(ctx, ddl); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "create outcomes table")
	}
	return nil
}

// Record appends one row
func (l *Ledger) Record(ctx context.Context, rec lifedom.OutcomeRecord) error {
	if !l.enabled() {
		return nil
	}
	at := rec.ProcessedAt
	if at.IsZero() {
		at = time.Now()
	}
	row := []any{
		rec.JobID,
		string(rec.Kind),
		rec.RecordID,
		rec.MotherID,
		rec.Outcome,
		rec.Detail,
		uint32(max(rec.RequestsCreated, 0)),
		uint32(max(rec.Attempts, 0)),
		at.UTC(),
	}
	if err := l.ch.Insert(ctx, l.table, [][]any{row}); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "record outcome")
	}
	return nil
}

// Count is one kind and outcome tally
type Count struct {
	Kind     string `json:"kind"`
	Outcome  string `json:"outcome"`
	Jobs     uint64 `json:"jobs"`
	Requests uint64 `json:"requests_created"`
}

// Summary tallies outcomes recorded since the given time
func (l *Ledger) Summary(ctx context.Context, since time.Time) ([]Count, error) {
	if !l.enabled() {
		return nil, perr.Unavailablef("outcome ledger is not configured")
	}
	q := fmt.Sprintf(`
		SELECT kind, outcome, count() AS jobs, sum(requests_created) AS requests
		  FROM %s
		 WHERE processed_at >= ?
		 GROUP BY kind, outcome
		 ORDER BY kind, outcome`, l.table)
	rows, err := l.ch.Query(ctx, q, since.UTC())
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "outcome summary")
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Kind, &c.Outcome, &c.Jobs, &c.Requests); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "scan outcome summary")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "outcome summary")
	}
	return out, nil
}
