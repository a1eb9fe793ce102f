// Package ssrf guards outbound webhook URLs against server-side request
// forgery. A URL is rejected when its hostname is a loopback name or
// resolves, in either address family, to a loopback, private, or
// link-local range. Parse and resolution failures are treated as internal,
// so the guard always fails closed.
//
// Callers run the check both when a URL is registered and again right
// before each delivery attempt; the second check defends against DNS
// rebinding between registration and dispatch.
package ssrf
