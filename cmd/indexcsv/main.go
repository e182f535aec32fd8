// Command indexcsv computes recipe price indices from an HICP extract and writes
// them as CSV or XLSX without starting the web service.
//
//	indexcsv -region Deutschland -recipe Lebkuchen -out lebkuchen.csv
//	indexcsv -region Österreich -format xlsx -out alle.xlsx
//	indexcsv -list-regions
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"keksindex/internal/config"
	"keksindex/internal/dataprocessing"
	"keksindex/internal/exporter"
	"keksindex/internal/infrastructure"
	"keksindex/internal/recipes"
	"keksindex/internal/services"
	"keksindex/internal/validation"
	"keksindex/pkg/contracts"
)

// options are the parsed command line flags
type options struct {
	source      string
	sheet       string
	recipesFile string
	recipe      string
	region      string
	format      string
	out         string
	listRegions bool
	listRecipes bool
	logLevel    string
	version     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "indexcsv:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("indexcsv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.source, "source", cfg.Data.SourcePath, "HICP extract (csv or xlsx)")
	fs.StringVar(&opts.sheet, "sheet", cfg.Data.Sheet, "worksheet of an xlsx source (default first sheet)")
	fs.StringVar(&opts.recipesFile, "recipes", cfg.Data.RecipesFile, "recipe catalog YAML (default built-in catalog)")
	fs.StringVar(&opts.recipe, "recipe", "", "recipe name (default all recipes)")
	fs.StringVar(&opts.region, "region", "", "region label, e.g. Deutschland")
	fs.StringVar(&opts.format, "format", "csv", "output format: csv | xlsx")
	fs.StringVar(&opts.out, "out", "", "output file (default stdout)")
	fs.BoolVar(&opts.listRegions, "list-regions", false, "print the regions of the source and exit")
	fs.BoolVar(&opts.listRecipes, "list-recipes", false, "print the recipe names and exit")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "debug | info | warn | error")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// An explicitly named config file must load; otherwise defaults are good enough.
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		if os.Getenv(config.EnvPrefix+"_CONFIG_FILE") != "" {
			return cfgErr
		}
		cfg = config.Default()
	}

	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetVersionInfo())
		return nil
	}

	logger, err := infrastructure.NewLogger(config.LoggingConfig{Level: opts.logLevel, Output: "console"}, stderr)
	if err != nil {
		return err
	}
	logger = infrastructure.WithComponent(logger, "indexcsv")
	ctx = infrastructure.EnsureTraceID(ctx)
	if cfgErr != nil {
		logger.WarnContext(ctx, "Configuration not loaded, using defaults", slog.String("error", cfgErr.Error()))
	}

	catalog := recipes.Default()
	if opts.recipesFile != "" {
		if catalog, err = recipes.LoadFile(opts.recipesFile); err != nil {
			return err
		}
	}
	if opts.listRecipes {
		for _, name := range catalog.Names() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	cfg.Data.SourcePath = opts.source
	cfg.Data.Sheet = opts.sheet
	files := validation.NewFileValidator(logger)
	format, err := cfg.Data.Format()
	if err != nil {
		return err
	}
	if err := files.ValidateSourceFile(cfg.Data.SourcePath, format); err != nil {
		return err
	}
	source, err := newSource(cfg.Data)
	if err != nil {
		return err
	}
	loader := dataprocessing.NewLoader(source, nil, logger)
	dashboard := services.NewDashboardService(catalog, loader, nil, logger)

	if opts.listRegions {
		regions, err := dashboard.Regions(ctx)
		if err != nil {
			return err
		}
		for _, region := range regions {
			fmt.Fprintln(stdout, region)
		}
		return nil
	}

	if opts.region == "" {
		return errors.New("-region is required")
	}
	outFormat, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if outFormat == exporter.FormatXLSX && opts.out == "" {
		return errors.New("-out is required for xlsx output")
	}
	if opts.out != "" {
		if err := files.ValidateOutputFile(opts.out); err != nil {
			return err
		}
	}

	export := services.NewExportService(dashboard, nil, logger)
	series, err := export.Collect(ctx, opts.recipe, opts.region)
	if err != nil {
		return err
	}

	empty := 0
	for _, s := range series {
		if len(s.Composite) == 0 {
			empty++
			logger.Warn("No matching series", slog.String("recipe", s.Recipe.Name), slog.String("region", opts.region))
		}
	}
	if empty == len(series) {
		fmt.Fprintln(stderr, services.EmptyNotice)
	}

	if opts.out == "" {
		return exporter.Write(stdout, outFormat, series)
	}
	if err := exporter.WriteFile(opts.out, outFormat, series); err != nil {
		return err
	}
	logger.Info("Export written",
		slog.String("path", opts.out),
		slog.String("format", string(outFormat)),
		slog.Int("recipes", len(series)))
	return nil
}

func newSource(data config.DataConfig) (dataprocessing.Source, error) {
	format, err := data.Format()
	if err != nil {
		return nil, err
	}
	comma, err := data.Comma()
	if err != nil {
		return nil, err
	}
	return dataprocessing.NewSource(data.SourcePath, format, data.Sheet, comma)
}
