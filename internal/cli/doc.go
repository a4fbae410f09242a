// Package cli wires the stores and services into an App and exposes them as
// cobra commands: a long-running capture daemon plus one-shot commands for
// browsing, editing, tagging, syncing and purging clipboard history.
package cli
