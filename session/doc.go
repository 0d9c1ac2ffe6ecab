// Package session owns the authentication lifecycle: obtaining, persisting,
// refreshing, and revoking the access/refresh token pair, and caching the
// current user.
//
// The Manager wraps the HTTP client as an httpclient.Doer and is the single
// decision point for the retry-once-on-401 policy: a failed authed request
// triggers exactly one transparent token refresh (deduplicated across
// concurrent failures) before the original error surfaces. An unrecoverable
// refresh forces logout: tokens are cleared and the current-user entry is
// removed regardless of what the server said.
//
// Logout is locally irreversible. The revocation call may fail, but local
// credentials are always cleared.
package session
