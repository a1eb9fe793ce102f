// Package envelope implements envelope encryption for stored secrets:
// small plaintext values (TOTP seeds, webhook signing keys) are wrapped
// with AES-256-GCM under a server-held master key and persisted as a single
// tagged opaque string.
//
// The package also carries the migration story for rows that predate
// envelope encryption. FromStored classifies any persisted string into a
// tagged Value variant (plaintext or encrypted) without ever failing, and
// Service.Open applies the read policy: unwrap if wrapped, otherwise return
// the legacy plaintext directly and log a migration warning. Legacy values
// are deliberately not re-wrapped on read.
//
// The master key is supplied through the Keyring interface rather than a
// package-level singleton so rotation requires no code changes.
package envelope
