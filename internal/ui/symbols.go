package ui

// Unicode symbols for pool and node state.
const (
	SymbolSuccess = "✓" // Pool healthy
	SymbolFail    = "✗" // Pool has nodes down
	SymbolWarning = "⚠" // Non-fatal problem
	SymbolPending = "○" // Pool incomplete, not reported
)
