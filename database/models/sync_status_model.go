// Copyright (C) 2025 deskmirror contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package models

import "time"

type SyncState string

const (
	SyncStateInProgress SyncState = "in_progress"
	SyncStateSuccess    SyncState = "success"
	SyncStateError      SyncState = "error"
)

type SyncPhase string

const (
	SyncPhaseOrganizations SyncPhase = "organizations"
	SyncPhaseTickets       SyncPhase = "tickets"
	SyncPhaseAssignments   SyncPhase = "assignments"
	SyncPhaseIssueLinks    SyncPhase = "issue_links"
)

// SyncStatus is the per-phase ledger row: written at phase start and phase
// end, read both as a health signal and as the checkpoint source for delta
// timing.
type SyncStatus struct {
	Phase SyncPhase `json:"phase" gorm:"primaryKey;type:text"`

	State       SyncState `json:"state" gorm:"type:text"`
	LastRunAt   time.Time `json:"lastRunAt"`
	RecordCount int       `json:"recordCount"`
	Error       *string   `json:"error"`
}

func (SyncStatus) TableName() string {
	return "sync_statuses"
}
