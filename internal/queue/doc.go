// Package queue holds the in-memory FIFO of pending file transfers.
//
// The Store exposes exactly four lock-scoped operations: Enqueue, PeekFront,
// PopFront, and Len. The lock is held only for the container operation,
// never across I/O, so the ingress side can append while the worker is busy
// downloading. A capacity-one wake channel couples the two: every enqueue
// signals the worker, tokens coalesce, and the worker drains the queue until
// empty after each wake, so a coalesced token never strands a job.
//
// Queue state is deliberately process-local. Nothing here survives a
// restart; only the downloaded files and the transfer history ledger do.
package queue
