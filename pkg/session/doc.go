/*
Package session implements the game-state controller for a single run and the
manager that hosts many of them.

A Session owns its GameState and exposes it only through named transitions
(SelectStep, SubmitInput, ToggleCacheView...). Reads return deep-copied
snapshots. At most one generation request is in flight per run, enforced by a
ports.Latch keyed on the run ID; a busy latch drops the new request with
domain.ErrRequestInFlight instead of queueing it.

The Manager stores sessions by run ID for the HTTP and MCP hosts, serializing
host-level operations per run with reference-counted locks.
*/
package session
