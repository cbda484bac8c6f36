// Package cli provides the interactive SecretKey command-line client.
//
// It wires configuration, the local session database, the HTTP API client,
// the platform Store and the export service, then runs a REPL over them.
// The view subscribes to the Store and re-renders the current page after
// every settled state change; passwords are masked except in 'show'.
//
// Key features:
//   - Register / Login / Logout, with the session restored on start
//   - Paged listing with next, prev and page <n>
//   - Lookup by exact name pinned above the list until cleared
//   - Add, edit and delete with confirmation
//   - Server-side exports written locally or uploaded to S3
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
