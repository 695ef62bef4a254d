// Package report renders a PoolSet as a monitoring-plugin status line.
package report

import (
	"strconv"
	"strings"

	"github.com/rileyhilliard/check-haproxy/internal/stats"
)

// Options tweaks how pools are rendered.
type Options struct {
	// LegacyRedispatch emits econ under the wredis label, restoring the
	// wredis value earlier releases reported. Nothing else changes.
	LegacyRedispatch bool
}

// Report is the rendered result of one check run.
type Report struct {
	Status   Status
	Summary  string
	PerfData string
	Pools    []*stats.Pool
}

// Build renders every complete pool of set. Incomplete pools appear in
// neither the summary nor the perf data.
func Build(set *stats.PoolSet, opts Options) Report {
	var (
		perf     []string
		healthy  []string
		degraded []string
	)

	pools := set.Complete()
	for _, p := range pools {
		perf = append(perf, PerfTokens(p, opts)...)

		if p.Healthy() {
			healthy = append(healthy, p.Name+"-pool OK,")
			continue
		}
		entry := p.Name + "-pool NODES DOWN :"
		for _, node := range p.DownNodes {
			entry += " " + node + ","
		}
		degraded = append(degraded, entry)
	}

	r := Report{
		Status:   OK,
		Summary:  strings.Join(healthy, " "),
		PerfData: strings.Join(perf, " "),
		Pools:    pools,
	}
	if len(degraded) > 0 {
		r.Status = Critical
		r.Summary = strings.Join(degraded, " ")
	}
	return r
}

// String returns the plugin line: "<SEVERITY>: <summary>|<perf data>".
func (r Report) String() string {
	return r.Status.String() + ": " + r.Summary + "|" + r.PerfData
}

// ExitCode returns the process exit status for the report.
func (r Report) ExitCode() int {
	return r.Status.ExitCode()
}

// PerfTokens returns the perf data of one pool in fixed order.
func PerfTokens(p *stats.Pool, opts Options) []string {
	name := p.Name
	var tokens []string
	add := func(metric, value, unit string) {
		tokens = append(tokens, name+"_"+metric+"="+value+unit)
	}
	itoa := func(v int64) string { return strconv.FormatInt(v, 10) }

	if p.SessionUtilization > 0 {
		add("sessionUtil", FormatFloat(p.SessionUtilization), "%")
	}
	add("req_rate", itoa(p.RequestRate), "")
	add("rate", itoa(p.SessionRate), "")
	add("ereq", itoa(p.RequestErrors), "")
	add("dreq", itoa(p.RequestsDenied), "")
	add("hsrp_4xx", itoa(p.Responses4xx), "")
	add("hsrp_5xx", itoa(p.Responses5xx), "")
	add("bin", itoa(p.BytesIn), "B")
	add("bout", itoa(p.BytesOut), "B")

	if p.ResponseTimeMS > 0 {
		add("rtime", itoa(p.ResponseTimeMS), "ms")
	}
	if p.QueueTimeMS > 0 {
		add("qtime", itoa(p.QueueTimeMS), "ms")
	}
	add("econ", itoa(p.ConnectionErrors), "")
	add("dresp", itoa(p.DeniedResponses), "")
	add("eresp", itoa(p.ResponseErrors), "")
	add("qcur", itoa(p.QueuedRequests), "")

	redispatches := p.Redispatches
	if opts.LegacyRedispatch {
		redispatches = p.ConnectionErrors
	}
	add("wredis", itoa(redispatches), "")
	add("wretr", itoa(p.Retries), "")

	return tokens
}

// FormatFloat prints the shortest representation of f, always keeping a
// decimal point: 5 -> "5.0", 33.5 -> "33.5".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
