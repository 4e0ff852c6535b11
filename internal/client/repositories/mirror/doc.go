// Package mirror keeps a local copy of remote collections so the client can
// keep working while the backend is unreachable.
//
// Every record belongs to a named collection ("admin-languages",
// "admin-users", ...) and carries its JSON payload plus a sync state. Records
// fetched from the server are synced. Records changed while the server was
// unavailable are pending and remember which operation (create, update or
// delete) still has to be replayed.
//
// Pending operations coalesce: an update of a record created offline stays a
// create, and deleting a record created offline drops it altogether since the
// server never saw it.
package mirror
