// Package webhook implements the transport half of outbound webhook
// delivery: the JSON wire payload, the timestamped HMAC-SHA256 signature
// scheme, and a single-attempt HTTP sender with a hard per-delivery
// timeout.
//
// Signatures cover "{unixTimestamp}.{payloadJSON}" and travel in the
// X-Webhook-Signature header as "t=<unix>,v1=<hex>". Verify is provided
// for receivers and test harnesses; it compares in constant time and can
// enforce a maximum signature age.
//
// The sender deliberately has no retry or backoff logic. Failure recovery
// is a counter threshold owned by the registry: each failed delivery
// increments the webhook's failure count and crossing the threshold
// disables the subscription until it is manually re-enabled.
package webhook
