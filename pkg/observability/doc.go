/*
Package observability provides Prometheus instrumentation for the ruleflow service.

Metrics are registered on a caller-supplied registry so several services (or tests)
can coexist in one process. A nil *Metrics is valid and records nothing.
*/
package observability
