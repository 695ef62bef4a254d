// Package ui renders human-facing output for check-haproxy: the pools table,
// the perf data listing and colored warnings.
//
// Plugin output (the single status line a monitoring system parses) never
// goes through this package. Only the interactive subcommands use it.
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess (green)  - Healthy pools
//	ColorError   (red)    - Pools with nodes down
//	ColorWarning (yellow) - Warnings
//	ColorMuted   (gray)   - Incomplete pools, secondary text
//
// ConfigureColor picks a lipgloss color profile from the "auto", "always" or
// "never" mode. DisableColors forces monochrome output (for --no-color).
package ui
