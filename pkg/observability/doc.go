/*
Package observability turns session lifecycle hooks into logs and Prometheus
metrics.

Hooks are plain domain.LifecycleHooks values; Combine merges several sets so a
host can log and record metrics from the same events.
*/
package observability
