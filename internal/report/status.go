package report

// Status is a monitoring-plugin state. Its numeric value is the exit code.
type Status int

const (
	OK       Status = 0
	Critical Status = 2
	Unknown  Status = 3
)

// String returns the severity token printed at the start of the status line.
func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit status for s.
func (s Status) ExitCode() int {
	switch s {
	case OK, Critical, Unknown:
		return int(s)
	default:
		return int(Unknown)
	}
}
