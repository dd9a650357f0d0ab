// Package csvfile keeps a human readable CSV copy of the alert log.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"noveltycam/internal/model"
)

// TimestampLayout is the format of the Timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the first row of every alert CSV file.
var Header = []string{"Timestamp", "Objects Detected", "Image Path"}

// AlertLog appends alerts to a CSV file, writing the header when the file is new.
type AlertLog struct {
	path string
	mu   sync.Mutex
}

// NewAlertLog creates the file (with its header) if it does not exist yet.
func NewAlertLog(path string) (*AlertLog, error) {
	l := &AlertLog{path: path}
	if err := l.ensureHeader(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *AlertLog) ensureHeader() error {
	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create csv directory: %w", err)
		}
	}

	info, err := os.Stat(l.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", l.path, err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", l.path, err)
	}
	defer f.Close()

	return WriteRows(f, [][]string{Header})
}

// Append writes one alert row.
func (l *AlertLog) Append(ctx context.Context, alert *model.Alert) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", l.path, err)
	}

	if err := WriteRows(f, [][]string{Row(alert)}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Row renders an alert as a CSV record.
func Row(alert *model.Alert) []string {
	return []string{
		alert.Timestamp.Format(TimestampLayout),
		strings.Join(alert.Labels, ", "),
		alert.ImagePath,
	}
}

// WriteRows writes and flushes CSV records to w.
func WriteRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
