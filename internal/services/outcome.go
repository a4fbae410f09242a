package services

import (
	"fmt"

	"github.com/google/uuid"
)

// OutcomeKind is what a replication pass did with one row.
type OutcomeKind string

const (
	// OutcomeSynced: pushed and marked synced locally.
	OutcomeSynced OutcomeKind = "synced"
	// OutcomeSkipped: left in its prior state, retried on the next pass.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeInserted: pulled into a new local row.
	OutcomeInserted OutcomeKind = "inserted"
	// OutcomeUpdated: pulled over an existing local row.
	OutcomeUpdated OutcomeKind = "updated"
	// OutcomeUnchanged: local and remote already agreed.
	OutcomeUnchanged OutcomeKind = "unchanged"
	// OutcomePushed: settings written to the remote store.
	OutcomePushed OutcomeKind = "pushed"
	// OutcomeAdopted: remote settings copied into the empty local store.
	OutcomeAdopted OutcomeKind = "adopted"
)

// Entity names used in RowOutcome.
const (
	EntityEntry    = "entry"
	EntityTag      = "tag"
	EntitySettings = "settings"
)

// Skip reasons.
const (
	ReasonRemoteWrite      = "remote write failed"
	ReasonModifiedInFlight = "modified during push"
	ReasonMarkFailed       = "mark synced failed"
	ReasonLocalWrite       = "local write failed"
	ReasonTenantMismatch   = "hash owned by another tenant"
	ReasonCancelled        = "pass cancelled"
)

// RowOutcome is the result for one row of a pass.
type RowOutcome struct {
	Entity   string
	LocalID  int64
	ServerID int64
	Kind     OutcomeKind
	Reason   string
	Err      error
}

// Report aggregates the outcomes of one Sync or Bootstrap call.
type Report struct {
	RunID    uuid.UUID
	Outcomes []RowOutcome
	counts   map[OutcomeKind]int
}

func newReport() *Report {
	return &Report{RunID: uuid.New(), counts: map[OutcomeKind]int{}}
}

func (r *Report) add(o RowOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.counts[o.Kind]++
}

// Count returns the number of outcomes of kind k.
func (r *Report) Count(k OutcomeKind) int {
	return r.counts[k]
}

// CountFor counts outcomes of kind k for one entity.
func (r *Report) CountFor(entity string, k OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Entity == entity && o.Kind == k {
			n++
		}
	}
	return n
}

// Skipped returns the outcomes that left rows untouched.
func (r *Report) Skipped() []RowOutcome {
	var out []RowOutcome
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeSkipped {
			out = append(out, o)
		}
	}
	return out
}

func (r *Report) String() string {
	return fmt.Sprintf("synced=%d inserted=%d updated=%d unchanged=%d skipped=%d",
		r.counts[OutcomeSynced], r.counts[OutcomeInserted], r.counts[OutcomeUpdated],
		r.counts[OutcomeUnchanged], r.counts[OutcomeSkipped])
}
