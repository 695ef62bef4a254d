package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rileyhilliard/check-haproxy/internal/errors"
	"github.com/rileyhilliard/check-haproxy/internal/logger"
	"github.com/rileyhilliard/check-haproxy/internal/stats"
)

// Column names consumed from the "show stat" table.
const (
	colProxy    = "pxname"
	colService  = "svname"
	colStatus   = "status"
	colReqRate  = "req_rate"
	colRate     = "rate"
	colEreq     = "ereq"
	colDreq     = "dreq"
	colHrsp4xx  = "hrsp_4xx"
	colHrsp5xx  = "hrsp_5xx"
	colBytesIn  = "bin"
	colBytesOut = "bout"
	colScur     = "scur"
	colSlim     = "slim"
	colRtime    = "rtime"
	colQtime    = "qtime"
	colEcon     = "econ"
	colDresp    = "dresp"
	colEresp    = "eresp"
	colQcur     = "qcur"
	colWredis   = "wredis"
	colWretr    = "wretr"
)

var requiredColumns = []string{colProxy, colService, colStatus}

// Option configures ParseStats and ParseTable.
type Option func(*parser)

// WithAggregation selects how several up node rows of a pool combine.
func WithAggregation(mode stats.Aggregation) Option {
	return func(p *parser) {
		if mode.Valid() {
			p.mode = mode
		}
	}
}

// WithLogger sets the logger used for skipped values.
func WithLogger(l logger.Logger) Option {
	return func(p *parser) {
		p.log = l
	}
}

type parser struct {
	mode stats.Aggregation
	log  logger.Logger
}

// ParseStats parses a raw collector reply, stripping the leading "# " marker,
// and folds its rows into pools.
func ParseStats(reply string, opts ...Option) (*stats.PoolSet, error) {
	if reply == "" {
		return nil, errors.New(errors.ErrParse,
			"Received data, but misplaced it before parsing",
			"The stats socket returned an empty reply")
	}
	return ParseTable(strings.NewReader(stats.TrimReply(reply)), opts...)
}

// ParseTable parses an already trimmed CSV stats table. The first record is
// the header. The returned set is only handed out once every row is folded.
func ParseTable(r io.Reader, opts ...Option) (*stats.PoolSet, error) {
	p := &parser{mode: stats.AggregateLast, log: logger.NewEnvLogger("[parse]")}
	for _, opt := range opts {
		opt(p)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrParse,
				"Failed to parse stats reply. Error [no header line]", "")
		}
		return nil, parseError(err)
	}

	idx := indexHeader(header)
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, errors.New(errors.ErrParse,
				fmt.Sprintf("Failed to parse stats reply. Error [missing column '%s']", col),
				"Check that the socket belongs to haproxy and the command is 'show stat'")
		}
	}

	set := stats.NewPoolSet()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}
		p.fold(set, row{idx: idx, fields: record})
	}

	return set, nil
}

func parseError(err error) error {
	return errors.WrapWithCode(err, errors.ErrParse,
		fmt.Sprintf("Failed to parse stats reply. Error [%v]", err), "")
}

// indexHeader maps column names to positions. HAProxy ends the header with a
// trailing comma, which yields an empty last name that is simply ignored.
func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

type row struct {
	idx    map[string]int
	fields []string
}

// get returns the trimmed value of col and whether it is present and non-empty.
func (r row) get(col string) (string, bool) {
	i, ok := r.idx[col]
	if !ok || i >= len(r.fields) {
		return "", false
	}
	v := strings.TrimSpace(r.fields[i])
	return v, v != ""
}

func (p *parser) fold(set *stats.PoolSet, r row) {
	name, _ := r.get(colProxy)
	node, _ := r.get(colService)
	status, _ := r.get(colStatus)

	pool := set.Get(name)

	switch {
	case status == stats.StatusDown || status == stats.StatusNoLB:
		pool.DownNodes = append(pool.DownNodes, node)
	case node == stats.BackendMarker && status == stats.StatusUp:
		p.foldBackend(pool, r)
	case node != stats.BackendMarker && node != stats.FrontendMarker && status == stats.StatusUp:
		p.foldNode(pool, r)
	}
}

func (p *parser) foldBackend(pool *stats.Pool, r row) {
	pool.HasBackend = true

	// rtime and qtime only exist on HAProxy 1.5+.
	pool.ResponseTimeMS = p.intOr(r, colRtime, stats.Unset)
	pool.QueueTimeMS = p.intOr(r, colQtime, stats.Unset)

	pool.ConnectionErrors = p.intOr(r, colEcon, 0)
	pool.DeniedResponses = p.intOr(r, colDresp, 0)
	pool.ResponseErrors = p.intOr(r, colEresp, 0)
	pool.QueuedRequests = p.intOr(r, colQcur, 0)
	pool.Redispatches = p.intOr(r, colWredis, 0)
	pool.Retries = p.intOr(r, colWretr, 0)
}

func (p *parser) foldNode(pool *stats.Pool, r row) {
	first := !pool.HasNode
	pool.HasNode = true

	scur := p.intOr(r, colScur, 0)
	slim := p.intOr(r, colSlim, 0)

	if p.mode == stats.AggregateSum && !first {
		pool.RequestRate += p.intOr(r, colReqRate, 0)
		pool.SessionRate += p.intOr(r, colRate, 0)
		pool.RequestErrors += p.intOr(r, colEreq, 0)
		pool.RequestsDenied += p.intOr(r, colDreq, 0)
		pool.Responses4xx += p.intOr(r, colHrsp4xx, 0)
		pool.Responses5xx += p.intOr(r, colHrsp5xx, 0)
		pool.BytesIn += p.intOr(r, colBytesIn, 0)
		pool.BytesOut += p.intOr(r, colBytesOut, 0)
		pool.SessionsCurrent += scur
		pool.SessionsLimit += slim
		if pct, ok := utilization(pool.SessionsCurrent, pool.SessionsLimit); ok {
			pool.SessionUtilization = pct
		}
		return
	}

	pool.RequestRate = p.intOr(r, colReqRate, 0)
	pool.SessionRate = p.intOr(r, colRate, 0)
	pool.RequestErrors = p.intOr(r, colEreq, 0)
	pool.RequestsDenied = p.intOr(r, colDreq, 0)
	pool.Responses4xx = p.intOr(r, colHrsp4xx, 0)
	pool.Responses5xx = p.intOr(r, colHrsp5xx, 0)
	pool.BytesIn = p.intOr(r, colBytesIn, 0)
	pool.BytesOut = p.intOr(r, colBytesOut, 0)
	pool.SessionsCurrent = scur
	pool.SessionsLimit = slim

	// Utilization belongs to the row that wrote the counters.
	pool.SessionUtilization = stats.Unset
	if pct, ok := utilization(scur, slim); ok {
		pool.SessionUtilization = pct
	}
}

// utilization is scur/slim as a percentage; absent columns arrive as zero and
// are rejected with the other non-positive values.
func utilization(cur, limit int64) (float64, bool) {
	if cur <= 0 || limit <= 0 {
		return 0, false
	}
	return float64(cur) / float64(limit) * 100, true
}

// intOr returns the column as an integer, or def when absent, empty or malformed.
func (p *parser) intOr(r row, col string, def int64) int64 {
	v, ok := p.optInt(r, col)
	if !ok {
		return def
	}
	return v
}

func (p *parser) optInt(r row, col string) (int64, bool) {
	raw, ok := r.get(col)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.log.Debug("ignoring %s=%q: %v", col, raw, err)
		return 0, false
	}
	return v, true
}
