// Command catalog-ingest loads supplier price lists into the ingredient
// catalog. Each input is a gzipped CSV of name,unit,price lines; only names
// confirmed by two or more supplier files are ingested, so a single bad list
// cannot pollute the catalog. Files are large enough that membership is
// tracked with bloom filters rather than in-memory sets.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/provision-api/internal/domain/ingredient"
	"github.com/xenking/provision-api/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

// row is one parsed price-list line.
type row struct {
	name  string
	unit  string
	price decimal.Decimal
}

// fileResult holds the candidate rows found in a single file during pass 2,
// keyed by lowercased name, with a bitmask of the files that carried the name.
type fileResult struct {
	rows  map[string]row
	masks map[string]uint
}

func main() {
	var (
		dataDir     string
		pattern     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing supplier price lists")
	flag.StringVar(&pattern, "pattern", "pricelist*.csv.gz", "glob matching price list files inside data-dir")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, pattern, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, pattern, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, pattern))
	if err != nil {
		return errors.Wrap(err, "glob price lists")
	}
	if len(files) < 2 {
		return errors.Errorf("need at least 2 price lists for cross-confirmation, found %d", len(files))
	}

	// Pass 1: build one bloom filter of names per file, concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: collect rows whose name appears in 2+ files.
	slog.Info("pass 2: collecting confirmed rows")

	confirmed, err := findConfirmedRows(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find confirmed rows")
	}

	slog.Info("confirmed ingredients", slog.Int("count", len(confirmed)))

	if len(confirmed) == 0 {
		slog.Info("nothing to ingest")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := writeIngredients(ctx, postgres.NewIngredientRepository(pool), confirmed); err != nil {
		return errors.Wrap(err, "write ingredients")
	}

	return nil
}

// buildBloomFilters creates one bloom filter of names per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzCSV(ctx, path, func(r row) {
			filter.AddString(strings.ToLower(r.name))
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_rows", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findConfirmedRows re-streams each file and checks names against the OTHER
// files' bloom filters. A name is confirmed when it appears in 2 or more
// files; the last row read for a name wins its unit and price.
func findConfirmedRows(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]row, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]row)
	masks := make(map[string]uint)
	for _, r := range results {
		for name, mask := range r.masks {
			masks[name] |= mask
			merged[name] = r.rows[name]
		}
	}

	var confirmed []row
	for name, mask := range masks {
		if bits.OnesCount(mask) >= 2 {
			confirmed = append(confirmed, merged[name])
		}
	}

	return confirmed, nil
}

func findCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		rows := make(map[string]row)
		masks := make(map[string]uint)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzCSV(ctx, path, func(r row) {
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}

			name := strings.ToLower(r.name)
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(name) {
					rows[name] = r
					masks[name] |= fileBit
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_rows", count),
			slog.Int("candidates", len(rows)),
		)

		results[idx] = fileResult{rows: rows, masks: masks}
		return nil
	}
}

// streamGzCSV opens a gzip-compressed CSV of name,unit,price lines and calls
// fn for each parseable row. Rows with a blank name, an unknown unit or an
// unparseable price are skipped.
func streamGzCSV(ctx context.Context, path string, fn func(row)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	reader := csv.NewReader(gz)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		if len(record) < 3 {
			continue
		}

		name := strings.TrimSpace(record[0])
		unit := strings.ToLower(strings.TrimSpace(record[1]))
		if name == "" || !ingredient.ValidUnit(unit) {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil || price.IsNegative() {
			continue
		}

		fn(row{name: name, unit: unit, price: price})
	}
}

// writeIngredients upserts all confirmed rows into the catalog.
func writeIngredients(ctx context.Context, repo *postgres.IngredientRepository, rows []row) error {
	slog.Info("writing ingredients to database", slog.Int("count", len(rows)))

	for i, r := range rows {
		ing := ingredient.Ingredient{Name: r.name, Unit: r.unit, Price: r.price}
		if err := repo.Upsert(ctx, &ing); err != nil {
			return errors.Wrapf(err, "upsert ingredient %q", r.name)
		}

		if (i+1)%100 == 0 || i+1 == len(rows) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(rows)))
		}
	}

	return nil
}
