// Package services implements clipkeeper's operations on top of the local and
// remote stores: capturing and editing entries, tags, tenant settings,
// replication between the stores and local retention.
//
// Every operation takes an explicit tenancy.Context. Local writes never wait
// on the remote store; remote work is either deferred to SyncService or done
// best-effort when the remote store happens to be online.
package services
