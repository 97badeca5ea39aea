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
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deskmirror/deskmirror/database/models"
	"github.com/deskmirror/deskmirror/zendesk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQBRCutoff(t *testing.T) {
	// cutoff is the first day of the quarter two quarters before the one
	// containing now, for every possible current month
	tests := []struct {
		month    time.Month
		wantYear int
		wantMon  time.Month
	}{
		{time.January, 2024, time.July},
		{time.February, 2024, time.July},
		{time.March, 2024, time.July},
		{time.April, 2024, time.October},
		{time.May, 2024, time.October},
		{time.June, 2024, time.October},
		{time.July, 2025, time.January},
		{time.August, 2025, time.January},
		{time.September, 2025, time.January},
		{time.October, 2025, time.April},
		{time.November, 2025, time.April},
		{time.December, 2025, time.April},
	}

	for _, tc := range tests {
		t.Run(tc.month.String(), func(t *testing.T) {
			now := time.Date(2025, tc.month, 15, 12, 0, 0, 0, time.UTC)
			got := QBRCutoff(now)
			assert.Equal(t, tc.wantYear, got.Year())
			assert.Equal(t, tc.wantMon, got.Month())
			assert.Equal(t, 1, got.Day())
		})
	}
}

func TestSyncTicketsDeduplicatesKeepingLastSeen(t *testing.T) {
	env := newTestEnv()
	// sequential fetches keep the open-before-closed query order, so the
	// closed-state sighting is deterministically the last one seen
	env.syncer.concurrency = 1
	orgID := int64(1)
	env.orgs.rows[orgID] = models.Organization{ID: orgID, Name: "Acme"}

	// ticket 42 changed state mid-sync: it shows up in the open fetch and
	// again, already solved, in the closed fetch
	env.ticketing.searchFn = func(query string, maxPages int) ([]zendesk.Ticket, error) {
		switch {
		case query == "status:open":
			return []zendesk.Ticket{{ID: 42, OrganizationID: &orgID, Status: "open", Subject: "first sighting"}}, nil
		case strings.HasPrefix(query, "status:solved"):
			return []zendesk.Ticket{{ID: 42, OrganizationID: &orgID, Status: "solved", Subject: "second sighting"}}, nil
		default:
			return nil, nil
		}
	}

	count, err := env.syncer.syncTickets(context.Background(), newRunCache())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	row := env.tickets.rows[42]
	assert.Equal(t, models.TicketStatusSolved, row.Status)
	assert.Equal(t, "second sighting", row.Subject)
}

func TestSyncTicketsIsIdempotent(t *testing.T) {
	env := newTestEnv()
	orgID := int64(1)
	env.orgs.rows[orgID] = models.Organization{ID: orgID, Name: "Acme"}
	env.syncer.now = func() time.Time { return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC) }

	env.ticketing.searchFn = func(query string, maxPages int) ([]zendesk.Ticket, error) {
		if query != "status:open" {
			return nil, nil
		}
		return []zendesk.Ticket{
			{ID: 1, OrganizationID: &orgID, Status: "open", Subject: "a", Tags: []string{"x"}},
			{ID: 2, OrganizationID: &orgID, Status: "open", Subject: "b"},
		}, nil
	}

	_, err := env.syncer.syncTickets(context.Background(), newRunCache())
	require.NoError(t, err)
	first := make(map[int64]models.Ticket, len(env.tickets.rows))
	for id, row := range env.tickets.rows {
		first[id] = row
	}

	_, err = env.syncer.syncTickets(context.Background(), newRunCache())
	require.NoError(t, err)

	assert.Equal(t, first, env.tickets.rows)
}

func TestSyncTicketsDropsUnknownOrganizations(t *testing.T) {
	env := newTestEnv()
	known := int64(1)
	unknown := int64(999)
	env.orgs.rows[known] = models.Organization{ID: known, Name: "Acme"}

	env.ticketing.searchFn = func(query string, maxPages int) ([]zendesk.Ticket, error) {
		if query != "status:open" {
			return nil, nil
		}
		return []zendesk.Ticket{
			{ID: 1, OrganizationID: &known, Status: "open"},
			{ID: 2, OrganizationID: &unknown, Status: "open"},
			{ID: 3, Status: "open"}, // no organization at all
		}, nil
	}

	count, err := env.syncer.syncTickets(context.Background(), newRunCache())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, env.tickets.rows, int64(1))
	assert.NotContains(t, env.tickets.rows, int64(2))
	assert.NotContains(t, env.tickets.rows, int64(3))
}

func TestSyncTicketsQueriesClosedStatesWithCutoff(t *testing.T) {
	env := newTestEnv()
	env.syncer.now = func() time.Time { return time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC) }

	var mu sync.Mutex
	queries := make([]string, 0)
	env.ticketing.searchFn = func(query string, maxPages int) ([]zendesk.Ticket, error) {
		mu.Lock()
		queries = append(queries, query)
		mu.Unlock()
		return nil, nil
	}

	_, err := env.syncer.syncTickets(context.Background(), newRunCache())
	require.NoError(t, err)

	assert.Contains(t, queries, "status:new")
	assert.Contains(t, queries, "status:open")
	assert.Contains(t, queries, "status:pending")
	assert.Contains(t, queries, "status:hold")
	assert.Contains(t, queries, "status:solved updated>=2024-07-01")
	assert.Contains(t, queries, "status:closed updated>=2024-07-01")
}

func TestTicketToModelParsesEnumsAndClassification(t *testing.T) {
	orgID := int64(7)
	requester := int64(12)
	ticket := zendesk.Ticket{
		ID:             5,
		OrganizationID: &orgID,
		Subject:        "Payroll export broken",
		Status:         "weird_future_state",
		Priority:       "urgent",
		RequesterID:    &requester,
		Tags:           []string{"escalated", "module_exports"},
	}

	row := ticketToModel(ticket, zendesk.FieldMapping{}, time.Now())

	assert.Equal(t, models.TicketStatusUnknown, row.Status)
	assert.Equal(t, models.TicketPriorityUrgent, row.Priority)
	assert.True(t, row.Escalated)
	assert.Equal(t, "payroll", row.Product) // subject fallback
	assert.Equal(t, "exports", row.Module)  // tag fallback
}
