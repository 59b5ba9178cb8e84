// Package auth provides the access gate middleware.
//
// Every request passes through the gate. Requests under an exempt prefix
// (sign-in surfaces, public note shares, static assets, health and metrics)
// are let through with whatever session context could be attached. All other
// requests require a session: the gate resolves the opaque session cookie
// against the session store, loads the identity row and places both in the
// request locals for handlers and templates.
//
// Federated identities with an incomplete profile are redirected to the
// profile setup page before they can reach the rest of the application.
// Guests are exempt from that redirect, as are sessions whose identity row
// no longer exists; the latter keep their session context and fail later at
// the operation that actually needs the row.
package auth
