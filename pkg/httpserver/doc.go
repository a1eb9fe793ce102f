// Package httpserver runs the service's HTTP listener. It applies the
// timeouts carried by Config, drains in-flight requests when the caller's
// context is cancelled, and exposes Probe for the platform's liveness and
// readiness endpoints.
//
// Signal handling is the binary's job. Run only watches the context it is
// given, so wiring graceful shutdown is a signal.NotifyContext at the call
// site.
package httpserver
