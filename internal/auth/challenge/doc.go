// Package challenge implements one-time passcode challenges for untrusted
// devices: issuance with a per-device cooldown, single-use verification,
// cancellation, and restore-on-reload of an in-flight code.
package challenge
