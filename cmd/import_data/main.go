package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"foodgram/internal/cache"
	"foodgram/internal/catalog"
	"foodgram/internal/config"
	"foodgram/internal/db"
	applog "foodgram/internal/log"
)

const usage = "usage: import_data <ingredients|tags> <file.json|file.csv>"

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagRecord struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type summary struct {
	Created   int
	Unchanged int
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(context.Background(), os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, kind, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("data path must not be empty")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("locate data file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	refCache, closeCache, err := cache.Open(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer closeCache()

	result, err := importFile(ctx, database, kind, path)
	if err != nil {
		return err
	}
	if err := refCache.Invalidate(ctx, ""); err != nil {
		applog.Warn(ctx, "cache invalidation failed", "error", err)
	}

	fmt.Fprintf(os.Stdout, "Imported %s from %s: %d created, %d already present\n",
		kind, filepath.Base(path), result.Created, result.Unchanged)
	return nil
}

// importFile upserts every record in path, one transaction per record.
func importFile(ctx context.Context, database *gorm.DB, kind, path string) (summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return summary{}, err
	}
	defer file.Close()

	asJSON := strings.EqualFold(filepath.Ext(path), ".json")

	switch kind {
	case "ingredients":
		records, err := readIngredients(file, asJSON)
		if err != nil {
			return summary{}, fmt.Errorf("read ingredients: %w", err)
		}
		return upsertEach(ctx, database, records, func(svc *catalog.Service, r ingredientRecord) (bool, error) {
			return svc.UpsertIngredient(ctx, r.Name, r.MeasurementUnit)
		}, func(r ingredientRecord) string { return r.Name })
	case "tags":
		records, err := readTags(file, asJSON)
		if err != nil {
			return summary{}, fmt.Errorf("read tags: %w", err)
		}
		return upsertEach(ctx, database, records, func(svc *catalog.Service, r tagRecord) (bool, error) {
			return svc.UpsertTag(ctx, r.Name, r.Color, r.Slug)
		}, func(r tagRecord) string { return r.Name })
	default:
		return summary{}, fmt.Errorf("unknown data kind %q: %s", kind, usage)
	}
}

func upsertEach[T any](ctx context.Context, database *gorm.DB, records []T, upsert func(*catalog.Service, T) (bool, error), label func(T) string) (summary, error) {
	var result summary
	for idx, record := range records {
		var created bool
		err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			created, err = upsert(catalog.NewService(tx, nil), record)
			return err
		})
		if err != nil {
			return result, fmt.Errorf("record %d (%s): %w", idx+1, label(record), err)
		}
		if created {
			result.Created++
		} else {
			result.Unchanged++
		}
	}
	return result, nil
}

func readIngredients(r io.Reader, asJSON bool) ([]ingredientRecord, error) {
	if asJSON {
		var records []ingredientRecord
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}

	rows, err := readCSV(r, "name")
	if err != nil {
		return nil, err
	}
	records := make([]ingredientRecord, 0, len(rows))
	for idx, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected name and measurement unit", idx+1)
		}
		records = append(records, ingredientRecord{Name: row[0], MeasurementUnit: row[1]})
	}
	return records, nil
}

func readTags(r io.Reader, asJSON bool) ([]tagRecord, error) {
	if asJSON {
		var records []tagRecord
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}

	rows, err := readCSV(r, "name")
	if err != nil {
		return nil, err
	}
	records := make([]tagRecord, 0, len(rows))
	for idx, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("row %d: expected name and color", idx+1)
		}
		record := tagRecord{Name: row[0], Color: row[1]}
		if len(row) > 2 {
			record.Slug = row[2]
		}
		records = append(records, record)
	}
	return records, nil
}

// readCSV returns the trimmed, non-empty rows. A first row starting with
// header is skipped.
func readCSV(r io.Reader, header string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}
	if strings.EqualFold(strings.TrimSpace(rows[0][0]), header) {
		rows = rows[1:]
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		clean := make([]string, 0, len(row))
		for _, value := range row {
			clean = append(clean, strings.TrimSpace(value))
		}
		if len(clean) == 0 || clean[0] == "" {
			continue
		}
		out = append(out, clean)
	}
	return out, nil
}
