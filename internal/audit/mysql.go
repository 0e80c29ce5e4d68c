package audit

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/seat-inventory/internal/model"
)

// MySQLLog appends audit records to the audit_log table.  The auto-increment
// sequence preserves append order across restarts.
type MySQLLog struct {
	db *sql.DB
}

// NewMySQLLog returns a MySQLLog bound to the provided DB handle.
func NewMySQLLog(db *sql.DB) *MySQLLog { return &MySQLLog{db: db} }

// Append inserts one record.  The record's uuid is generated here when the
// caller did not set one.
func (l *MySQLLog) Append(ctx context.Context, rec model.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_log (record_id, ts, service, seat, action, details) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		string(rec.Service), string(rec.Seat), string(rec.Action), rec.Details,
	)
	return err
}

// Recent returns the last n records in append order.
func (l *MySQLLog) Recent(ctx context.Context, n int) ([]model.AuditRecord, error) {
	if n <= 0 {
		n = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT record_id, ts, service, seat, action, details FROM (
			SELECT id, record_id, ts, service, seat, action, details
			FROM audit_log ORDER BY id DESC LIMIT ?
		) tail ORDER BY id ASC`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []model.AuditRecord
	for rows.Next() {
		var (
			rec              model.AuditRecord
			ts               sql.NullTime
			service, seat, a string
		)
		if err := rows.Scan(&rec.ID, &ts, &service, &seat, &a, &rec.Details); err != nil {
			return nil, err
		}
		rec.Timestamp = ts.Time
		rec.Service = model.Service(service)
		rec.Seat = model.SeatID(seat)
		rec.Action = model.AuditAction(a)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Schema is the DDL for the audit_log table.
const Schema = `CREATE TABLE IF NOT EXISTS audit_log (
	id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	record_id CHAR(36) NOT NULL,
	ts DATETIME NOT NULL,
	service CHAR(1) NOT NULL,
	seat VARCHAR(4) NOT NULL,
	action VARCHAR(24) NOT NULL,
	details VARCHAR(255) NOT NULL
)`
