// Package output renders supsim-cli results.
//
// Formatters write tables (text/tabwriter, driven by struct tags), JSON
// or YAML. The table formatter reads two tag options:
//
//	table:"-"      never shown
//	table:"wide"   only shown with --wide
//	table:"bytes"  rendered as a human-readable size
//
// Spinner and ProgressBar decorate the slow operations (waiting on
// snapshot creation, archive transfers) on stderr.
package output
