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
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/deskmirror/deskmirror/crm"
	"github.com/deskmirror/deskmirror/database/models"
	"github.com/deskmirror/deskmirror/tracker"
	"github.com/deskmirror/deskmirror/zendesk"
)

// in-memory fakes for the store and source interfaces

type fakeTicketing struct {
	mu sync.Mutex

	orgs    []zendesk.Organization
	orgsErr error

	searchFn func(query string, maxPages int) ([]zendesk.Ticket, error)

	mapping    zendesk.FieldMapping
	mappingErr error

	users     map[int64]zendesk.User
	userCalls int

	// blockOrgs lets tests hold the organization fetch open
	blockOrgs chan struct{}
}

func (f *fakeTicketing) ListOrganizations(ctx context.Context) ([]zendesk.Organization, error) {
	if f.blockOrgs != nil {
		<-f.blockOrgs
	}
	return f.orgs, f.orgsErr
}

func (f *fakeTicketing) SearchTickets(ctx context.Context, query string, maxPages int) ([]zendesk.Ticket, error) {
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(query, maxPages)
}

func (f *fakeTicketing) TicketFieldMapping(ctx context.Context) (zendesk.FieldMapping, error) {
	return f.mapping, f.mappingErr
}

func (f *fakeTicketing) GetUser(ctx context.Context, id int64) (zendesk.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	u, ok := f.users[id]
	if !ok {
		return zendesk.User{}, fmt.Errorf("user %d not found", id)
	}
	return u, nil
}

type fakeCRM struct {
	assignments map[models.OwnerRole][]crm.AccountAssignment
	err         error
}

func (f *fakeCRM) ListAssignments(ctx context.Context, role models.OwnerRole) ([]crm.AccountAssignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assignments[role], nil
}

type fakeTracker struct {
	boardItems  []tracker.Item
	searchItems []tracker.Item
	err         error
}

func (f *fakeTracker) ListConfiguredBoardItems(ctx context.Context) ([]tracker.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.boardItems, nil
}

func (f *fakeTracker) SearchForTicketReferences(ctx context.Context, patterns []string) ([]tracker.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.searchItems, nil
}

type fakeOrgRepo struct {
	mu   sync.Mutex
	rows map[int64]models.Organization
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{rows: make(map[int64]models.Organization)}
}

func (f *fakeOrgRepo) All() ([]models.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	orgs := make([]models.Organization, 0, len(f.rows))
	for _, org := range f.rows {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs, nil
}

func (f *fakeOrgRepo) UpsertBatch(orgs []models.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, org := range orgs {
		// crm_name is owned by the matching phase and survives the upsert
		if existing, ok := f.rows[org.ID]; ok {
			org.CRMName = existing.CRMName
		}
		f.rows[org.ID] = org
	}
	return nil
}

func (f *fakeOrgRepo) UpdateCRMName(orgID int64, crmName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.rows[orgID]
	if !ok {
		return fmt.Errorf("organization %d not found", orgID)
	}
	org.CRMName = &crmName
	f.rows[orgID] = org
	return nil
}

func (f *fakeOrgRepo) Count() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeTicketRepo struct {
	mu   sync.Mutex
	rows map[int64]models.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{rows: make(map[int64]models.Ticket)}
}

func (f *fakeTicketRepo) UpsertBatch(tickets []models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ticket := range tickets {
		f.rows[ticket.ID] = ticket
	}
	return nil
}

func (f *fakeTicketRepo) ExistingIDs() (map[int64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := make(map[int64]struct{}, len(f.rows))
	for id := range f.rows {
		set[id] = struct{}{}
	}
	return set, nil
}

func (f *fakeTicketRepo) Count() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeAssignmentRepo struct {
	mu   sync.Mutex
	rows map[models.OwnerRole][]models.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{rows: make(map[models.OwnerRole][]models.Assignment)}
}

func (f *fakeAssignmentRepo) ReplaceForRole(role models.OwnerRole, assignments []models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[role] = assignments
	return nil
}

type fakeIssueLinkRepo struct {
	mu   sync.Mutex
	rows []models.IssueLink
}

func (f *fakeIssueLinkRepo) ReplaceAll(links []models.IssueLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = links
	return nil
}

type fakeStatusRepo struct {
	mu   sync.Mutex
	rows map[models.SyncPhase]models.SyncStatus
}

func newFakeStatusRepo() *fakeStatusRepo {
	return &fakeStatusRepo{rows: make(map[models.SyncPhase]models.SyncStatus)}
}

func (f *fakeStatusRepo) RecordPhaseStatus(phase models.SyncPhase, state models.SyncState, count int, errMsg *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[phase] = models.SyncStatus{
		Phase:       phase,
		State:       state,
		LastRunAt:   time.Now(),
		RecordCount: count,
		Error:       errMsg,
	}
	return nil
}

func (f *fakeStatusRepo) GetPhaseStatuses() ([]models.SyncStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	statuses := make([]models.SyncStatus, 0, len(f.rows))
	for _, status := range f.rows {
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (f *fakeStatusRepo) LastSuccessfulRun(phase models.SyncPhase) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.rows[phase]
	if !ok || status.State != models.SyncStateSuccess {
		return time.Time{}, fmt.Errorf("no successful run for phase %s", phase)
	}
	return status.LastRunAt, nil
}

type testEnv struct {
	ticketing *fakeTicketing
	crm       *fakeCRM
	tracker   *fakeTracker

	orgs        *fakeOrgRepo
	tickets     *fakeTicketRepo
	assignments *fakeAssignmentRepo
	links       *fakeIssueLinkRepo
	statuses    *fakeStatusRepo

	syncer *Syncer
}

func newTestEnv() *testEnv {
	env := &testEnv{
		ticketing:   &fakeTicketing{users: make(map[int64]zendesk.User)},
		crm:         &fakeCRM{assignments: make(map[models.OwnerRole][]crm.AccountAssignment)},
		tracker:     &fakeTracker{},
		orgs:        newFakeOrgRepo(),
		tickets:     newFakeTicketRepo(),
		assignments: newFakeAssignmentRepo(),
		links:       &fakeIssueLinkRepo{},
		statuses:    newFakeStatusRepo(),
	}
	env.syncer = New(env.ticketing, env.crm, env.tracker,
		env.orgs, env.tickets, env.assignments, env.links, env.statuses,
		Options{Concurrency: 2, MaxSearchPages: 10})
	return env
}
