package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"noveltycam/internal/model"
	"noveltycam/internal/repository/csvfile"
	"noveltycam/internal/repository/sqlite"
)

const batchSize = 500

func main() {
	dbPath := flag.String("db", "data/alerts.db", "Database path")
	outPath := flag.String("out", "-", "Output CSV file, - for stdout")
	label := flag.String("label", "", "Only export alerts containing this label")
	since := flag.String("since", "", "Only export alerts at or after this date (2006-01-02)")
	flag.Parse()

	filter := &model.AlertFilter{Label: *label}
	if *since != "" {
		t, err := time.ParseInLocation(time.DateOnly, *since, time.Local)
		if err != nil {
			log.Fatalf("Invalid -since date: %v", err)
		}
		filter.Since = t
	}

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Database %s not found: %v", *dbPath, err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var out io.Writer = os.Stdout
	if *outPath != "-" {
		file, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *outPath, err)
		}
		defer file.Close()
		out = file
	}

	count, err := export(context.Background(), sqlite.NewAlertRepository(db), filter, out)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fmt.Fprintf(os.Stderr, "✅ Exported %d alerts from %s\n", count, *dbPath)
}

// export writes the header and every matching alert, oldest first, in batches.
func export(ctx context.Context, repo *sqlite.AlertRepository, filter *model.AlertFilter, out io.Writer) (int, error) {
	total, err := repo.GetTotalCount(ctx, filter)
	if err != nil {
		return 0, err
	}

	rows := [][]string{csvfile.Header}
	// GetAll is newest first, so walk pages from the end.
	for offset := total; offset > 0; offset -= batchSize {
		page := *filter
		page.Offset = offset - batchSize
		page.Limit = batchSize
		if page.Offset < 0 {
			page.Limit += page.Offset
			page.Offset = 0
		}

		alerts, err := repo.GetAll(ctx, &page)
		if err != nil {
			return 0, err
		}
		for i := len(alerts) - 1; i >= 0; i-- {
			alerts[i].Timestamp = alerts[i].Timestamp.Local()
			rows = append(rows, csvfile.Row(&alerts[i]))
		}
	}

	if err := csvfile.WriteRows(out, rows); err != nil {
		return 0, err
	}
	return len(rows) - 1, nil
}
