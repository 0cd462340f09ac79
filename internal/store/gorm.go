package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/cinedata/moviedash/internal/dataset"
	"github.com/cinedata/moviedash/internal/logger"
)

// DB is the gorm-backed Store. One handle is constructed at startup and
// reused for the life of the process; gorm pools the underlying connections.
type DB struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the store named by the connection string. postgres:// and
// postgresql:// DSNs use the Postgres driver; sqlite:// DSNs (and bare file
// paths ending in .db) use the SQLite driver, which keeps a file-backed dev
// mode without a server.
func Open(dsn string, baseLog *logger.Logger) (*DB, error) {
	dialector, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, &StoreError{Op: "connect", Err: err}
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	return &DB{db: db, log: baseLog.With("component", "store")}, nil
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	s := strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(s, "postgres://"), strings.HasPrefix(s, "postgresql://"):
		return postgres.Open(s), nil
	case strings.HasPrefix(s, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(s, "sqlite://")), nil
	case strings.HasSuffix(s, ".db"), strings.HasPrefix(s, "file:"):
		return sqlite.Open(s), nil
	case s == "":
		return nil, fmt.Errorf("empty connection string")
	default:
		return nil, fmt.Errorf("unsupported connection string scheme")
	}
}

func (d *DB) ListTables(ctx context.Context) ([]string, error) {
	tables, err := d.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, &StoreError{Op: "list tables", Err: err}
	}
	return tables, nil
}

func (d *DB) Query(ctx context.Context, table string, limit int) (dataset.RowSet, error) {
	if !validIdent(table) {
		return dataset.RowSet{}, &StoreError{Op: "query", Table: table, Err: fmt.Errorf("not a plain identifier")}
	}
	if limit <= 0 {
		return dataset.RowSet{}, &StoreError{Op: "query", Table: table, Err: fmt.Errorf("limit must be positive")}
	}

	rows, err := d.db.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT * FROM %q LIMIT ?", table), limit).
		Rows()
	if err != nil {
		return dataset.RowSet{}, &StoreError{Op: "query", Table: table, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	cols, err := rows.Columns()
	if err != nil {
		return dataset.RowSet{}, &StoreError{Op: "query", Table: table, Err: err}
	}

	rs := dataset.RowSet{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return dataset.RowSet{}, &StoreError{Op: "query", Table: table, Err: err}
		}
		rec := make(dataset.Record, len(cols))
		for i, c := range cols {
			rec[c] = scalarValue(vals[i])
		}
		rs.Records = append(rs.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return dataset.RowSet{}, &StoreError{Op: "query", Table: table, Err: err}
	}

	d.log.Debug("queried snapshot", "table", table, "limit", limit, "rows", rs.Len())
	return rs, nil
}

func (d *DB) Append(ctx context.Context, table string, rs dataset.RowSet) error {
	if !validIdent(table) {
		return &LoadError{Table: table, Err: fmt.Errorf("not a plain identifier")}
	}
	for _, c := range rs.Columns {
		if !validIdent(c) {
			return &LoadError{Table: table, Err: fmt.Errorf("column %q is not a plain identifier", c)}
		}
	}
	if rs.Len() == 0 {
		return nil
	}

	records := make([]map[string]any, rs.Len())
	for i, rec := range rs.Records {
		records[i] = map[string]any(rec)
	}

	// One transaction: either the whole batch lands or none of it does.
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(table).Create(&records).Error
	})
	if err != nil {
		return &LoadError{Table: table, Err: err}
	}

	d.log.Info("appended rows", "table", table, "rows", rs.Len())
	return nil
}
