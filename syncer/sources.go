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

package syncer

import (
	"context"
	"time"

	"github.com/deskmirror/deskmirror/crm"
	"github.com/deskmirror/deskmirror/database/models"
	"github.com/deskmirror/deskmirror/tracker"
	"github.com/deskmirror/deskmirror/zendesk"
)

// TicketingSource is the slice of the ticketing API the engine consumes.
type TicketingSource interface {
	ListOrganizations(ctx context.Context) ([]zendesk.Organization, error)
	SearchTickets(ctx context.Context, query string, maxPages int) ([]zendesk.Ticket, error)
	TicketFieldMapping(ctx context.Context) (zendesk.FieldMapping, error)
	GetUser(ctx context.Context, id int64) (zendesk.User, error)
}

type CRMSource interface {
	ListAssignments(ctx context.Context, role models.OwnerRole) ([]crm.AccountAssignment, error)
}

type TrackerSource interface {
	ListConfiguredBoardItems(ctx context.Context) ([]tracker.Item, error)
	SearchForTicketReferences(ctx context.Context, patterns []string) ([]tracker.Item, error)
}

// Store interfaces, implemented by database/repositories. The engine only
// sees these so tests can run against in-memory fakes.

type OrganizationRepository interface {
	All() ([]models.Organization, error)
	UpsertBatch(orgs []models.Organization) error
	UpdateCRMName(orgID int64, crmName string) error
	Count() (int64, error)
}

type TicketRepository interface {
	UpsertBatch(tickets []models.Ticket) error
	ExistingIDs() (map[int64]struct{}, error)
	Count() (int64, error)
}

type AssignmentRepository interface {
	ReplaceForRole(role models.OwnerRole, assignments []models.Assignment) error
}

type IssueLinkRepository interface {
	ReplaceAll(links []models.IssueLink) error
}

type SyncStatusRepository interface {
	RecordPhaseStatus(phase models.SyncPhase, state models.SyncState, count int, errMsg *string) error
	GetPhaseStatuses() ([]models.SyncStatus, error)
	LastSuccessfulRun(phase models.SyncPhase) (time.Time, error)
}
