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

import (
	"time"

	"github.com/lib/pq"
)

type TicketStatus string

const (
	TicketStatusNew     TicketStatus = "new"
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusPending TicketStatus = "pending"
	TicketStatusHold    TicketStatus = "hold"
	TicketStatusSolved  TicketStatus = "solved"
	TicketStatusClosed  TicketStatus = "closed"
	TicketStatusUnknown TicketStatus = "unknown"
)

// OpenTicketStatuses are the operationally significant states that get
// fetched without a date bound on every sync.
var OpenTicketStatuses = []TicketStatus{
	TicketStatusNew, TicketStatusOpen, TicketStatusPending, TicketStatusHold,
}

// ClosedTicketStatuses are terminal states, only fetched inside the rolling
// reporting window.
var ClosedTicketStatuses = []TicketStatus{
	TicketStatusSolved, TicketStatusClosed,
}

// ParseTicketStatus maps a raw source string to the closed status set.
// Anything the source invents beyond the known lifecycle ends up as
// TicketStatusUnknown instead of passing through unvalidated.
func ParseTicketStatus(raw string) TicketStatus {
	switch TicketStatus(raw) {
	case TicketStatusNew, TicketStatusOpen, TicketStatusPending,
		TicketStatusHold, TicketStatusSolved, TicketStatusClosed:
		return TicketStatus(raw)
	default:
		return TicketStatusUnknown
	}
}

func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusSolved || s == TicketStatusClosed
}

type TicketPriority string

const (
	TicketPriorityLow     TicketPriority = "low"
	TicketPriorityNormal  TicketPriority = "normal"
	TicketPriorityHigh    TicketPriority = "high"
	TicketPriorityUrgent  TicketPriority = "urgent"
	TicketPriorityUnknown TicketPriority = "unknown"
)

func ParseTicketPriority(raw string) TicketPriority {
	switch TicketPriority(raw) {
	case TicketPriorityLow, TicketPriorityNormal, TicketPriorityHigh, TicketPriorityUrgent:
		return TicketPriority(raw)
	default:
		return TicketPriorityUnknown
	}
}

// Ticket rows are fully replaced on every sync that touches them. There are
// no partial-field merges, so a row is always self-consistent with a single
// source snapshot.
type Ticket struct {
	ID             int64  `json:"id" gorm:"primaryKey"`
	OrganizationID *int64 `json:"organizationId" gorm:"index"`

	Subject  string         `json:"subject"`
	Status   TicketStatus   `json:"status" gorm:"index;type:text"`
	Priority TicketPriority `json:"priority" gorm:"type:text"`

	RequesterID *int64 `json:"requesterId"`
	AssigneeID  *int64 `json:"assigneeId"`

	Tags pq.StringArray `json:"tags" gorm:"type:text[]"`

	Product      string `json:"product"`
	Module       string `json:"module"`
	IssueSubtype string `json:"issueSubtype"`

	Escalated bool `json:"escalated"`

	SourceCreatedAt time.Time `json:"sourceCreatedAt"`
	SourceUpdatedAt time.Time `json:"sourceUpdatedAt"`
	SyncedAt        time.Time `json:"syncedAt"`
}

func (Ticket) TableName() string {
	return "tickets"
}
