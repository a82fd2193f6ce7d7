// climate-import loads monthly sky clearness normals from a CSV file into the
// climate_normals table read by the pvestimate server.
//
// The CSV has a header row and one row per latitude band:
//
//	lat_center,half_width,jan,feb,mar,apr,may,jun,jul,aug,sep,oct,nov,dec
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/pvestimate/internal/database"
	"github.com/chrissnell/pvestimate/internal/log"
	"github.com/chrissnell/pvestimate/internal/storage/climatedb"
	"github.com/chrissnell/pvestimate/pkg/solar"
	"github.com/lib/pq"
	"gonum.org/v1/gonum/stat"
)

type options struct {
	csvFile string
	connStr string
	source  string
	replace bool
	migrate bool
	dryRun  bool
}

func parseArgs(args []string) (options, error) {
	fs := flag.NewFlagSet("climate-import", flag.ContinueOnError)

	var opts options
	fs.StringVar(&opts.csvFile, "csv", "", "Path to the clearness normals CSV (required)")
	fs.StringVar(&opts.connStr, "db", "", "PostgreSQL connection string (required unless -dry-run)")
	fs.StringVar(&opts.source, "source", "", "Free-form name of the data source, stored with every band")
	fs.BoolVar(&opts.replace, "replace", false, "Delete existing bands and bulk-load with COPY (default: update bands in place)")
	fs.BoolVar(&opts.migrate, "migrate", true, "Create the climate_normals table if it does not exist")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Validate and summarize the CSV without touching the database")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.csvFile == "" {
		return options{}, errors.New("-csv is required")
	}
	if opts.connStr == "" && !opts.dryRun {
		return options{}, errors.New("-db is required unless -dry-run is set")
	}
	return opts, nil
}

func run(ctx context.Context, opts options, out io.Writer) error {
	f, err := os.Open(opts.csvFile)
	if err != nil {
		return fmt.Errorf("error opening CSV: %w", err)
	}
	bands, err := readBands(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("error reading %s: %w", opts.csvFile, err)
	}

	printSummary(out, bands)

	if opts.dryRun {
		fmt.Fprintln(out, "DRY RUN complete - nothing written")
		return nil
	}

	// COPY needs lib/pq, so GORM is layered over the same pool
	db, err := sql.Open("postgres", opts.connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("unable to connect to climate database: %w", err)
	}

	gdb, err := database.FromSQL(db)
	if err != nil {
		return err
	}
	store := climatedb.NewStore(gdb, log.GetSugaredLogger())

	if opts.migrate {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("error migrating climate_normals: %w", err)
		}
	}

	if !opts.replace {
		return store.Upsert(ctx, opts.source, bands)
	}

	n, err := replaceBands(ctx, db, bands, opts.source)
	if err != nil {
		return fmt.Errorf("error importing bands: %w", err)
	}
	log.Infof("replaced climate normals with %d bands", n)
	return nil
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Usage: %s -csv <normals.csv> -db <connection string>\n", os.Args[0])
		os.Exit(2)
	}

	if err := log.Init(false); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	err = run(ctx, opts, os.Stdout)
	cancel()
	if err != nil {
		log.Errorf("%v", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// readBands parses and validates the CSV. Every band must pass the same
// checks the server applies when it loads the table.
func readBands(r io.Reader) ([]solar.ClimateBand, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2 + solar.Months
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var bands []solar.ClimateBand
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		// header
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "lat_center") {
			continue
		}

		values := make([]float64, len(rec))
		for i, s := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %q is not a number", line, i+1, s)
			}
			values[i] = v
		}

		b := solar.ClimateBand{LatitudeCenter: values[0], HalfWidth: values[1]}
		copy(b.Clearness[:], values[2:])
		bands = append(bands, b)
	}

	if len(bands) == 0 {
		return nil, errors.New("no bands found")
	}
	if _, err := solar.NewClimateTable(bands); err != nil {
		return nil, err
	}
	return bands, nil
}

func printSummary(w io.Writer, bands []solar.ClimateBand) {
	fmt.Fprintf(w, "%-10s %-8s %-8s %-8s %-8s %-8s\n", "center", "width", "mean", "stddev", "min", "max")
	for _, b := range bands {
		k := b.Clearness[:]
		mean, std := stat.MeanStdDev(k, nil)
		lo, hi := k[0], k[0]
		for _, v := range k[1:] {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		fmt.Fprintf(w, "%-10.2f %-8.2f %-8.3f %-8.3f %-8.3f %-8.3f\n", b.LatitudeCenter, b.HalfWidth, mean, std, lo, hi)
	}
}

// replaceBands empties climate_normals and bulk-loads bands with COPY inside
// a single transaction
func replaceBands(ctx context.Context, db *sql.DB, bands []solar.ClimateBand, source string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM climate_normals"); err != nil {
		return 0, fmt.Errorf("error clearing climate_normals: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("climate_normals",
		"latitude_center", "half_width", "source", "clearness", "created_at", "updated_at"))
	if err != nil {
		return 0, fmt.Errorf("error preparing COPY: %w", err)
	}

	now := time.Now().UTC()
	for _, b := range bands {
		clearness, err := json.Marshal(b.Clearness)
		if err != nil {
			stmt.Close()
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, b.LatitudeCenter, b.HalfWidth, source, string(clearness), now, now); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("error copying band %v: %w", b.LatitudeCenter, err)
		}
	}

	// flush
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("error flushing COPY: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(bands), nil
}
