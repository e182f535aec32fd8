package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"keksindex/internal/exporter"
	"keksindex/internal/services"
)

const testCSV = "date,geo_label,coicop,value\n" +
	"2021m01,Deutschland,CP01112,100\n" +
	"2021m01,Deutschland,CP01163,120\n" +
	"2021m02,Deutschland,CP01112,102\n" +
	"2021m01,Frankreich,CP01112,90\n"

func writeSource(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hicp.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	// keep config.Load away from any config.yaml of the developer
	if _, set := os.LookupEnv("KEKS_CONFIG_FILE"); !set {
		empty := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(empty, nil, 0o644))
		t.Setenv("KEKS_CONFIG_FILE", empty)
	}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestListRegions(t *testing.T) {
	stdout, _, err := runCLI(t, "-source", writeSource(t), "-list-regions")
	require.NoError(t, err)
	assert.Equal(t, "Deutschland\nFrankreich\n", stdout)
}

func TestListRecipes(t *testing.T) {
	stdout, _, err := runCLI(t, "-list-recipes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Lebkuchen\n")
	assert.Contains(t, stdout, "Zimtsterne\n")
}

func TestSingleRecipeToStdout(t *testing.T) {
	stdout, _, err := runCLI(t, "-source", writeSource(t), "-recipe", "Zimtsterne", "-region", "Deutschland")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(stdout, "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, exporter.CSVHeaders, records[0])

	// only almonds match; one ingredient row and one recipe index row
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Zimtsterne", "Deutschland", "2021-01", "ingredient", "Mandeln", "120.0000"}, records[1])
	assert.Equal(t, exporter.KindRecipeIndex, records[2][3])
}

func TestAllRecipesToXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "alle.xlsx")
	_, _, err := runCLI(t, "-source", writeSource(t), "-region", "Frankreich", "-format", "xlsx", "-out", out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Rezeptindex")
}

func TestUnknownRegionPrintsNotice(t *testing.T) {
	_, stderr, err := runCLI(t, "-source", writeSource(t), "-region", "Atlantis")
	require.NoError(t, err)
	assert.Contains(t, stderr, services.EmptyNotice)
}

func TestErrors(t *testing.T) {
	source := writeSource(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing region", []string{"-source", source}, "-region is required"},
		{"xlsx needs out", []string{"-source", source, "-region", "Deutschland", "-format", "xlsx"}, "-out is required"},
		{"bad format", []string{"-source", source, "-region", "Deutschland", "-format", "pdf"}, "unsupported export format"},
		{"unknown recipe", []string{"-source", source, "-region", "Deutschland", "-recipe", "Spekulatius"}, "recipe not found"},
		{"missing source", []string{"-source", filepath.Join(t.TempDir(), "x.csv"), "-list-regions"}, "does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestConfigErrors(t *testing.T) {
	t.Run("explicit file must load", func(t *testing.T) {
		t.Setenv("KEKS_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
		_, _, err := runCLI(t, "-list-recipes")
		assert.ErrorContains(t, err, "failed to load config from file")
	})

	t.Run("other errors fall back to defaults with a warning", func(t *testing.T) {
		t.Setenv("KEKS_CONFIG_FILE", "")
		t.Setenv("KEKS_SERVER_PORT", "not-a-port")
		stdout, stderr, err := runCLI(t, "-source", writeSource(t), "-list-regions")
		require.NoError(t, err)
		assert.Equal(t, "Deutschland\nFrankreich\n", stdout)
		assert.Contains(t, stderr, "Configuration not loaded, using defaults")
	})
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := runCLI(t, "-version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Keksindex v")
}
