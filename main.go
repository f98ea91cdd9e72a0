// =============================================================================
// Resolved Trades Consolidator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Resolved Trades Consolidator CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   trades merge       - Merge every *_Resolved file into one workbook
//   trades summarize   - Add summary blocks and the aggregate sheet
//   trades run         - Merge, then summarize
//   trades version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : table model, loaders, sheet naming, merge and summary
//   - pkg/           : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/resolved-trades/cmd"
)

func main() {
	cmd.Execute()
}
