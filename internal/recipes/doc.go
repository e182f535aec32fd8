// Package recipes holds the recipe catalog: the ordered set of cookie recipes whose
// ingredients are priced against HICP series.
//
// The default catalog is embedded from catalog.yaml. A different catalog can be loaded
// from a YAML file with LoadFile; either way Validate must pass before the catalog is
// used, since a recipe whose quantities sum to zero has no defined weights.
package recipes
