// Package dataprocessing turns the Eurostat HICP extract into an in-memory series store
// and computes recipe price indices from it.
//
// # Architecture
//
// The package is organized into four parts:
//
// 1. Parsing: ParsePeriod and NormalizeCode clean the period and COICOP columns
// 2. Sources: CSVSource and XLSXSource read the raw table
// 3. Store: BuildStore resolves the schema once and produces an immutable SeriesStore;
// a Loader memoizes the store and can be invalidated
// 4. Aggregation: Aggregator joins a recipe against one region of the store
//
// # Usage
//
//	loader := dataprocessing.NewLoader(dataprocessing.NewCSVSource("prc_hicp_midx_clean.csv"), sink, logger)
//	store, err := loader.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	agg := dataprocessing.NewAggregator(store)
//	composite := agg.CompositeIndex(recipe, "Österreich")
//
// # Data Flow
//
//	Source → ResolveSchema → ParsePeriod + NormalizeCode → SeriesStore → Aggregator → series
//
// # Error Handling
//
// Schema problems (a missing required column or no recognised value column) fail the
// build with ErrMissingColumn or ErrNoValueColumn. Row-level problems never fail: rows with
// an unparseable period are dropped and non-numeric values are skipped at query time.
// Both are counted and reported through StoreDiagnostics and QueryStats.
//
// # Thread Safety
//
// A SeriesStore is never mutated after BuildStore returns and may be shared by any number
// of goroutines without locking. Loader is safe for concurrent use.
package dataprocessing
