package models

import "time"

// TenantSettings holds per-tenant preferences mirrored in both stores.
type TenantSettings struct {
	UserID     string
	TenantID   string
	Cadence    Cadence
	RetainTags bool
	UpdatedAt  time.Time
}

// DefaultSettings returns the settings used before anything is stored.
func DefaultSettings(userID, tenantID string) *TenantSettings {
	return &TenantSettings{UserID: userID, TenantID: tenantID, Cadence: CadenceNever}
}

// SameValues reports whether both sides hold the same replicated values.
func (s *TenantSettings) SameValues(other *TenantSettings) bool {
	return s.Cadence == other.Cadence && s.RetainTags == other.RetainTags
}
