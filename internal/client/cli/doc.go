// Package cli provides the interactive langcrowd terminal client.
//
// It wires configuration, local storage, the API gateway, the session store
// and the mutation services into a REPL. Every command is bound to a view
// path and goes through the role-gated navigator before it runs, so the
// terminal enforces the same access rules as the web views.
//
// A background watcher pings the backend and flips between online and
// offline mode; while offline, mutations are applied to the local mirror
// and replayed by the sync command.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
