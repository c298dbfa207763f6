// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/tvm-solver/internal/calculation"
)

// FindResult finds a result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []calculation.Result, name string) *calculation.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}
