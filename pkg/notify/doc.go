// Package notify delivers comment notification emails through Resend.
// Recipients are resolved by a host-supplied callback; delivery runs in a
// background task so request handling never waits on the email provider.
package notify
