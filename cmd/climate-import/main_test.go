package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrissnell/pvestimate/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const normalsCSV = `lat_center,half_width,jan,feb,mar,apr,may,jun,jul,aug,sep,oct,nov,dec
# Nordic band
60, 5, 0.30,0.35,0.42,0.48,0.55,0.58,0.56,0.50,0.44,0.36,0.30,0.28
-30,10, 0.70,0.68,0.66,0.64,0.62,0.60,0.60,0.62,0.64,0.66,0.68,0.70
`

func TestReadBands(t *testing.T) {
	bands, err := readBands(strings.NewReader(normalsCSV))
	require.NoError(t, err)
	require.Len(t, bands, 2)

	assert.Equal(t, 60.0, bands[0].LatitudeCenter)
	assert.Equal(t, 5.0, bands[0].HalfWidth)
	assert.Equal(t, 0.58, bands[0].Clearness[5])
	assert.Equal(t, 0.70, bands[1].Clearness[11])
}

func TestReadBandsWithoutHeader(t *testing.T) {
	bands, err := readBands(strings.NewReader("10,5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5\n"))
	require.NoError(t, err)
	assert.Len(t, bands, 1)
}

func TestReadBandsRejects(t *testing.T) {
	tests := map[string]string{
		"empty":         "lat_center,half_width,jan,feb,mar,apr,may,jun,jul,aug,sep,oct,nov,dec\n",
		"short row":     "10,5,0.5,0.5\n",
		"not a number":  "10,5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,cloudy\n",
		"clearness > 1": "10,5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,1.2\n",
		"zero width":    "10,0,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5,0.5\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := readBands(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestPrintSummary(t *testing.T) {
	bands, err := readBands(strings.NewReader(normalsCSV))
	require.NoError(t, err)

	var out bytes.Buffer
	printSummary(&out, bands)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "stddev")
	assert.Contains(t, lines[1], "60.00")
	assert.Contains(t, lines[1], "0.580")
}

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-csv", "normals.csv", "-db", "host=db", "-source", "fmi"})
	require.NoError(t, err)
	assert.Equal(t, "normals.csv", opts.csvFile)
	assert.Equal(t, "fmi", opts.source)
	assert.True(t, opts.migrate)
	assert.False(t, opts.replace)

	_, err = parseArgs([]string{"-csv", "normals.csv", "-dry-run"})
	assert.NoError(t, err)

	_, err = parseArgs([]string{"-db", "host=db"})
	assert.ErrorContains(t, err, "-csv")

	_, err = parseArgs([]string{"-csv", "normals.csv"})
	assert.ErrorContains(t, err, "-db")
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "normals.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunDryRun(t *testing.T) {
	log.InitNop()
	var out bytes.Buffer
	err := run(context.Background(), options{csvFile: writeCSV(t, normalsCSV), dryRun: true}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "60.00")
	assert.Contains(t, out.String(), "DRY RUN")
}

func TestRunReturnsErrors(t *testing.T) {
	log.InitNop()
	ctx := context.Background()

	err := run(ctx, options{csvFile: filepath.Join(t.TempDir(), "missing.csv"), dryRun: true}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "error opening CSV")

	err = run(ctx, options{csvFile: writeCSV(t, "10,5,0.5\n"), dryRun: true}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "error reading")

	// nothing listens on port 1, so the ping fails before any write
	opts := options{
		csvFile: writeCSV(t, normalsCSV),
		connStr: "host=127.0.0.1 port=1 sslmode=disable connect_timeout=2",
		migrate: true,
	}
	err = run(ctx, opts, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unable to connect")
}
