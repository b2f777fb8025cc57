// Package pool keeps the backup picks behind one results view so an "already
// watched" action can be answered without waiting on the model.
//
// A Pool moves between three states:
//
//	Serving     backups remain; a watched pick is swapped for the pool head.
//	ToppingUp   the pool fell to the low-water mark; one background refill
//	            for target-size picks is in flight.
//	Fetching    the pool is empty; the next watched action blocks on a single
//	            pick, bounded by the fetch timeout.
//
// Only one refill runs per pool at a time. Watched history is written in the
// background and never delays the swap. Registry owns one Pool per view id and
// drops views that sit idle past their TTL.
package pool
