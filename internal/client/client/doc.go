// Package client contains the remote side of the SecretKey client.
//
// # Overview
//
// The package provides:
//  1. The Client interface: the platform credential REST API as used by the
//     Store and the services (register/login, paginated listing, lookup by
//     name, create/update/delete, exports, ping).
//  2. HTTPClient, its HTTP/JSON implementation. A RoundTripper injects the
//     bearer token from a TokenSource into authenticated calls and refuses
//     them locally when no token is held.
//  3. Local database bootstrap (InitDatabase, RunMigrations) for the SQLite
//     file that persists the session, with embedded goose migrations.
//
// # Error Handling
//
// Every failed call is a *RemoteError whose Message is safe to show to the
// user. Its class is matched with errors.Is against ErrUnauthorized,
// ErrNotFound, ErrUnavailable, ErrBadCredentials or ErrInvalidResponse.
// FetchPage reports "nothing registered" as ErrNoContent. Cancelled calls
// return the context error.
//
// The client keeps no per-call state and is safe for concurrent use.
package client
