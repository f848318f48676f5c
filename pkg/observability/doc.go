/*
Package observability turns conversation lifecycle events into metrics and logs.

Metrics are prometheus collectors kept in their own registry; both Metrics and
the log sink plug into the engine as domain.LifecycleHooks.
*/
package observability
