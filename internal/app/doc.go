// Package app wires the keksindex web service together: configuration, logging,
// telemetry, the recipe catalog, the series store loader, services, handlers and
// the HTTP server.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, an optional YAML file and KEKS_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Load the recipe catalog and create the series store loader
//	4. Create the websocket hub and the services
//	5. Build the chi router and the HTTP server
//
// Start optionally preloads the series store. A missing or malformed source file does
// not stop the server: /health/ready stays at 503 and data endpoints answer with a
// problem document until a reload succeeds.
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM and then shuts down gracefully.
package app
