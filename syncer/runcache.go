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

	"github.com/deskmirror/deskmirror/database/models"
	"github.com/deskmirror/deskmirror/zendesk"
	lru "github.com/hashicorp/golang-lru/v2"
)

// runCache is the arena-scoped lookup cache for one sync run. It is created
// at run start and dropped at run end - nothing in here survives a run, so
// repeated runs never see stale side objects.
type runCache struct {
	users *lru.Cache[int64, zendesk.User]

	// organizations memoizes the store's org list across phases of one run.
	organizations []models.Organization
	orgsLoaded    bool
}

func newRunCache() *runCache {
	users, _ := lru.New[int64, zendesk.User](2048)
	return &runCache{users: users}
}

// cachedOrganizations returns the store's organization list, fetched at most
// once per run. The ticket and assignment phases both consume it; the
// organization phase invalidates it after writing.
func (r *runCache) cachedOrganizations(repo OrganizationRepository) ([]models.Organization, error) {
	if r.orgsLoaded {
		return r.organizations, nil
	}
	orgs, err := repo.All()
	if err != nil {
		return nil, err
	}
	r.organizations = orgs
	r.orgsLoaded = true
	return orgs, nil
}

func (r *runCache) invalidateOrganizations() {
	r.organizations = nil
	r.orgsLoaded = false
}

// user resolves a ticketing user through the per-run cache so the same
// requester is never fetched twice within one sync.
func (r *runCache) user(ctx context.Context, source TicketingSource, id int64) (zendesk.User, error) {
	if u, ok := r.users.Get(id); ok {
		return u, nil
	}
	u, err := source.GetUser(ctx, id)
	if err != nil {
		return zendesk.User{}, err
	}
	r.users.Add(id, u)
	return u, nil
}
