// Package http implements the HTTP handlers of the keksindex web service.
// Handlers stay thin: they bind and validate query parameters, call a service and
// render the result. Every failure goes through the shared ErrorHandler so clients
// always receive RFC 7807 problem documents.
//
// # Routes
//
//	GET  /api/v1/recipes                 catalog listing
//	GET  /api/v1/recipes/{name}          one recipe with proportions
//	GET  /api/v1/regions                 regions present in the store
//	GET  /api/v1/index/ingredients       ingredient series (recipe, region)
//	GET  /api/v1/index/composite         weighted recipe index (recipe, region)
//	GET  /api/v1/dashboard               both series, proportions and empty notice
//	GET  /api/v1/export                  CSV or XLSX download
//	GET  /api/v1/charts/{kind}.png       PNG chart
//	GET  /api/v1/store                   store diagnostics
//	POST /api/v1/store/reload            rebuild the store from its source
//
// An unknown region is not an error: the series come back empty with a notice.
// An unknown recipe is a 404.
//
// # Testing
//
// Handlers depend on the small interfaces in interfaces.go and are tested with
// testify mocks and httptest.
package http
