// Package services contains the application services of the langcrowd
// client: one per admin collection (users, languages, roles, role
// assignments, backups and snapshots) plus the syncer.
//
// Every mutation first goes to the backend. When the backend confirms it,
// the confirmed record is written to the local mirror. When the backend is
// unreachable or does not implement the endpoint, the same change is applied
// to the mirror as pending and reported as AppliedLocally; the Syncer
// replays it later. A 404 on an existing record means it is gone, so it
// only falls back for records created offline. Any other failure is
// reported as Failed and changes nothing.
//
// Reads go through the query cache. A successful remote read replaces the
// synced part of the mirror, and pending local records are overlaid on the
// result. When the backend is unreachable the mirror is served instead.
//
// The mirror belongs to one user at a time. SignIn wipes it when someone
// else signs in, so pending changes are never replayed under another
// account.
package services
