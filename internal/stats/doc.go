// Package stats reads HAProxy's statistics table and models it per pool.
//
// # Collection
//
// Collector opens the admin stats socket, writes the query and reads the CSV
// reply until the blank-line terminator shows up or the attempt budget is
// spent. It never retries a failed connection; every failure is terminal.
//
//	c := stats.NewCollector("/run/haproxy/admin.sock")
//	c.SetTimeout(5 * time.Second)
//	raw, err := c.Collect(ctx)
//
// # Pools
//
// The reply is folded (see package parsers) into a PoolSet, one Pool per
// pxname. A pool is complete when it has both a BACKEND aggregate row and at
// least one up server row; only complete pools are reported.
package stats
