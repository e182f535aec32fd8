// Package services implements the business layer between the HTTP handlers and the
// series store.
//
// # Services
//
//	- DashboardService: recipe lookups and index computations for one recipe and region
//	- ExportService: CSV and XLSX downloads of one or all recipes
//	- ChartService: PNG rendering of the dashboard charts
//	- StoreService: store diagnostics and reloads, announced over WebSocket
//	- HealthService: liveness, readiness and version information
//
// Services load the store lazily through a StoreProvider. A store that cannot be built
// surfaces as ErrStoreUnavailable wrapped around the load error, so handlers can map
// both the sentinel and the underlying schema error.
//
// Empty results are not errors. An unknown region or a recipe without matching codes
// yields empty series and a logged reason.
package services
