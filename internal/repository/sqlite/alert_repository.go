package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"noveltycam/internal/model"
)

// labelSeparator joins labels in the alerts.labels column, matching the CSV log.
const labelSeparator = ", "

// AlertRepository implements repository.AlertRepository for SQLite.
type AlertRepository struct {
	db *DB
}

// NewAlertRepository creates a new SQLite alert repository.
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Append stores an alert and its labels in a single transaction.
func (r *AlertRepository) Append(ctx context.Context, alert *model.Alert) error {
	if len(alert.Labels) == 0 {
		return fmt.Errorf("alert %s has no labels", alert.ID)
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO alerts (id, timestamp, labels, image_path, frame_seq)
		VALUES (?, ?, ?, ?, ?)
	`, alert.ID, alert.Timestamp.UTC(), strings.Join(alert.Labels, labelSeparator), alert.ImagePath, alert.FrameSeq); err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO alert_labels (alert_id, label) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, label := range alert.Labels {
		if _, err := stmt.ExecContext(ctx, alert.ID, label); err != nil {
			return fmt.Errorf("failed to insert alert label: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves an alert by its ID. It returns nil, nil when absent.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*model.Alert, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRowContext(ctx, `
		SELECT id, timestamp, labels, image_path, frame_seq
		FROM alerts WHERE id = ?
	`, id)

	alert, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

// GetAll retrieves alerts matching the filter, newest first.
func (r *AlertRepository) GetAll(ctx context.Context, filter *model.AlertFilter) ([]model.Alert, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)
	query := `SELECT a.id, a.timestamp, a.labels, a.image_path, a.frame_seq FROM alerts a` + where +
		` ORDER BY a.timestamp DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

// GetTotalCount returns the number of alerts matching the filter.
func (r *AlertRepository) GetTotalCount(ctx context.Context, filter *model.AlertFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)

	var count int
	if err := r.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts a`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// GetLabels returns every label that ever triggered an alert.
func (r *AlertRepository) GetLabels(ctx context.Context) ([]string, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `SELECT DISTINCT label FROM alert_labels ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// GetStats returns statistics about logged alerts.
func (r *AlertRepository) GetStats(ctx context.Context) (*model.AlertStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &model.AlertStats{LabelCounts: make(map[string]int)}

	if err := r.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&stats.TotalAlerts); err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}

	var last time.Time
	err := r.db.Conn().QueryRowContext(ctx, `SELECT timestamp FROM alerts ORDER BY timestamp DESC LIMIT 1`).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to get last alert: %w", err)
	default:
		stats.LastAlertAt = &last
	}

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT label, COUNT(*) AS cnt
		FROM alert_labels
		GROUP BY label
		ORDER BY cnt DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count labels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		stats.LabelCounts[label] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*model.Alert, error) {
	var alert model.Alert
	var labels string
	if err := row.Scan(&alert.ID, &alert.Timestamp, &labels, &alert.ImagePath, &alert.FrameSeq); err != nil {
		return nil, err
	}
	if labels != "" {
		alert.Labels = strings.Split(labels, labelSeparator)
	}
	return &alert, nil
}

func buildWhere(filter *model.AlertFilter) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}
	if filter == nil {
		return where, args
	}

	if filter.Label != "" {
		where += " AND EXISTS (SELECT 1 FROM alert_labels l WHERE l.alert_id = a.id AND l.label = ?)"
		args = append(args, filter.Label)
	}
	if !filter.Since.IsZero() {
		where += " AND a.timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		where += " AND a.timestamp <= ?"
		args = append(args, filter.Until.UTC())
	}
	return where, args
}
