// Package models contains data structures for the application's domain models.
package models

import "time"

// Proposal is a governance proposal tracked by the governance ledger.
// Voting runs from StartTime to EndTime; execution and cancellation flip the
// corresponding flags and are both terminal.
type Proposal struct {
	ID           uint64    `json:"id"`
	Proposer     string    `json:"proposer"`
	Description  string    `json:"description"`
	ContentRef   string    `json:"content_ref"`
	ForVotes     uint64    `json:"for_votes"`
	AgainstVotes uint64    `json:"against_votes"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Executed     bool      `json:"executed"`
	Canceled     bool      `json:"canceled"`
}
