// Package auth implements the identity and session lifecycle behind sign-in.
//
// Two kinds of identity exist:
//   - Guest identities, created without authentication. They get an
//     auto-generated display name and full functionality immediately, and
//     are deleted again when their session ends without migration.
//   - Federated identities, obtained from AWS Cognito through the OAuth2
//     authorization-code flow against the hosted UI.
//
// # Federated sign-in
//
// CognitoProvider drives a single login attempt: it builds the hosted UI
// authorization URL, exchanges the returned code at the token endpoint and
// extracts the identity claims from the ID token. ResolveFederated then maps
// the claims onto an identity row with a tagged three-way result:
//
//   - ResolvedExisting: the subject is already known, its row is reused.
//   - ResolvedMigrated: the caller's own session is a guest session; the
//     subject is attached to that guest row, preserving its internal id and
//     therefore all notes and categories created as a guest.
//   - ResolvedCreated: a fresh federated identity row.
//
// Migration is keyed strictly on the caller's current session; a federated
// login can never absorb an unrelated guest's data. Concurrent callbacks for
// the same new subject are serialized by the unique index on the subject
// column: the loser retries the lookup and finishes on the winner's row.
//
// # Security notes
//
// The ID token claims are extracted without cryptographic signature
// verification and the authorization request carries no anti-CSRF state
// parameter. Both are deliberate carry-overs from the system this replaces;
// see the flags at the respective call sites before hardening.
package auth
