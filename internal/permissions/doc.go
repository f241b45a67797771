// Package permissions gates inbound chat messages before they reach the
// transfer queue.
//
// Rules live in a JSON file mapping chat identifiers to an allow rule: the
// wildcard "*", a single user id (string or integer), a comma-separated id
// list, or an explicit JSON array of ids. A global allow_all rule is checked
// before any per-chat rule. The Manager holds the active config behind an
// RWMutex so the control channel can swap in a freshly loaded file without
// touching the queue or the worker.
package permissions
