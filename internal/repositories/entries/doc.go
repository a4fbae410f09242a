// Package entries persists clipboard entries in the local (SQLite) and the
// remote (PostgreSQL) store.
//
// Both backends implement Store, the operation set the services and the
// retention engine are written against. Local adds the sync-marker
// bookkeeping used by push and pull passes; Remote adds the idempotent upsert
// by (tenant, content hash) and the full tenant listing used by bootstrap.
//
// Every query is scoped by tenant id. A row belonging to another tenant is
// reported as not found.
package entries
