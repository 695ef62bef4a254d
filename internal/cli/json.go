package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/check-haproxy/internal/errors"
	"github.com/rileyhilliard/check-haproxy/internal/report"
	"github.com/rileyhilliard/check-haproxy/internal/stats"
)

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeSocketNotFound = "SOCKET_NOT_FOUND"
	ErrCodeConnectFailed  = "CONNECT_FAILED"
	ErrCodePollFailed     = "POLL_FAILED"
	ErrCodeParseFailed    = "PARSE_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// checkResult is the data of a successful --json check.
type checkResult struct {
	Status   string     `json:"status"`
	ExitCode int        `json:"exit_code"`
	Summary  string     `json:"summary"`
	PerfData string     `json:"perfdata"`
	Pools    []poolJSON `json:"pools"`
}

type poolJSON struct {
	Name      string   `json:"name"`
	Healthy   bool     `json:"healthy"`
	Complete  bool     `json:"complete"`
	DownNodes []string `json:"down_nodes"`
	PerfData  []string `json:"perfdata,omitempty"`
}

func newCheckResult(rep report.Report, opts report.Options) checkResult {
	res := checkResult{
		Status:   rep.Status.String(),
		ExitCode: rep.ExitCode(),
		Summary:  rep.Summary,
		PerfData: rep.PerfData,
		Pools:    make([]poolJSON, 0, len(rep.Pools)),
	}
	for _, p := range rep.Pools {
		res.Pools = append(res.Pools, newPoolJSON(p, opts))
	}
	return res
}

func newPoolJSON(p *stats.Pool, opts report.Options) poolJSON {
	pj := poolJSON{
		Name:      p.Name,
		Healthy:   p.Healthy(),
		Complete:  p.Complete(),
		DownNodes: p.DownNodes,
	}
	if p.Complete() {
		pj.PerfData = report.PerfTokens(p, opts)
	}
	return pj
}

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var chkErr *errors.Error
	if stderrors.As(err, &chkErr) {
		return &JSONError{
			Code:       mapErrorCode(chkErr.Code, chkErr.Message),
			Message:    chkErr.Message,
			Suggestion: chkErr.Suggestion,
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		msg := strings.ToLower(message)
		if strings.Contains(msg, "no socket found") {
			return ErrCodeSocketNotFound
		}
		if strings.Contains(msg, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrConnect:
		return ErrCodeConnectFailed
	case errors.ErrTransport:
		return ErrCodePollFailed
	case errors.ErrParse:
		return ErrCodeParseFailed
	}

	return ErrCodeUnknown
}
