package services

import (
	"github.com/dmitrijs2005/clipkeeper/internal/storage"
)

// RemoteSource hands out remote repositories while the shared store is
// reachable and common.ErrCloudUnavailable otherwise.
// *storage.RemoteConnector implements it.
type RemoteSource interface {
	Remote() (*storage.Remote, error)
}
