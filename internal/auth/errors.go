package auth

import "errors"

var (
	// ErrProviderDisabled is returned when federated sign-in is attempted
	// while the Cognito configuration is incomplete.
	ErrProviderDisabled = errors.New("cognito authentication is disabled")

	// ErrNoIDToken is returned when the token response doesn't contain an ID token.
	// This typically indicates a misconfigured client or an incomplete flow.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrAuthExchangeFailed is returned when the provider rejects the
	// authorization-code exchange, or the exchange times out. Terminal for
	// the attempt; no identity or session state has been touched.
	ErrAuthExchangeFailed = errors.New("authorization code exchange failed")

	// ErrInvalidClaims is returned when the ID token lacks the expected
	// identity claims. Treated like an exchange failure by callers.
	ErrInvalidClaims = errors.New("id token is missing expected claims")
)
