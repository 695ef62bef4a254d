package stats

// Unset marks a metric that the reply did not report. Only the
// version-dependent timing columns (rtime, qtime) and the computed session
// utilization use it; plain counters default to zero.
const Unset = -1

// Row markers used by HAProxy in the svname and status columns.
const (
	BackendMarker  = "BACKEND"
	FrontendMarker = "FRONTEND"

	StatusUp   = "UP"
	StatusDown = "DOWN"
	StatusNoLB = "NOLB"
)

// Aggregation selects how multiple up node rows of one pool are folded.
type Aggregation string

const (
	// AggregateLast lets every up node row overwrite the node-derived fields.
	AggregateLast Aggregation = "last"
	// AggregateSum accumulates node counters across all up node rows.
	AggregateSum Aggregation = "sum"
)

// Valid reports whether a is a known aggregation mode.
func (a Aggregation) Valid() bool {
	return a == AggregateLast || a == AggregateSum
}

// Pool holds the aggregated statistics of one proxy (pxname).
type Pool struct {
	Name       string
	HasBackend bool
	HasNode    bool
	DownNodes  []string

	// Node/listener metrics.
	RequestRate        int64   // req_rate
	SessionRate        int64   // rate
	SessionsCurrent    int64   // scur
	SessionsLimit      int64   // slim
	SessionUtilization float64 // scur / slim * 100, Unset if never computable
	RequestErrors      int64   // ereq
	RequestsDenied     int64   // dreq
	Responses4xx       int64   // hrsp_4xx
	Responses5xx       int64   // hrsp_5xx
	BytesIn            int64   // bin
	BytesOut           int64   // bout

	// Backend aggregate metrics.
	ResponseTimeMS   int64 // rtime, Unset when the column is missing
	QueueTimeMS      int64 // qtime, Unset when the column is missing
	ConnectionErrors int64 // econ
	DeniedResponses  int64 // dresp
	ResponseErrors   int64 // eresp
	QueuedRequests   int64 // qcur
	Redispatches     int64 // wredis
	Retries          int64 // wretr
}

// NewPool returns an empty pool with its sentinels in place.
func NewPool(name string) *Pool {
	return &Pool{
		Name:               name,
		DownNodes:          []string{},
		SessionUtilization: Unset,
		ResponseTimeMS:     Unset,
		QueueTimeMS:        Unset,
	}
}

// Complete reports whether the pool has a backend aggregate row and at least
// one up node row. Only complete pools are reported.
func (p *Pool) Complete() bool {
	return p.HasBackend && p.HasNode
}

// Healthy reports whether no node of the pool is down.
func (p *Pool) Healthy() bool {
	return len(p.DownNodes) == 0
}

// PoolSet maps pool names to pools and remembers first-seen order, so two
// runs over the same reply render identically.
type PoolSet struct {
	order []string
	pools map[string]*Pool
}

// NewPoolSet creates an empty set.
func NewPoolSet() *PoolSet {
	return &PoolSet{pools: make(map[string]*Pool)}
}

// Get returns the named pool, creating it on first reference.
func (s *PoolSet) Get(name string) *Pool {
	if p, ok := s.pools[name]; ok {
		return p
	}
	p := NewPool(name)
	s.pools[name] = p
	s.order = append(s.order, name)
	return p
}

// Len returns the number of pools, complete or not.
func (s *PoolSet) Len() int {
	return len(s.order)
}

// All returns every pool in first-seen order.
func (s *PoolSet) All() []*Pool {
	out := make([]*Pool, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.pools[name])
	}
	return out
}

// Complete returns the complete pools in first-seen order.
func (s *PoolSet) Complete() []*Pool {
	var out []*Pool
	for _, name := range s.order {
		if p := s.pools[name]; p.Complete() {
			out = append(out, p)
		}
	}
	return out
}
