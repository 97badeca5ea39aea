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
	"log/slog"

	"github.com/deskmirror/deskmirror/database/models"
	"github.com/deskmirror/deskmirror/utils"
	"github.com/deskmirror/deskmirror/zendesk"
	"github.com/pkg/errors"
)

// syncOrganizations fetches the full organization list and upserts it.
// The CRM display name is not written here - it is owned by the assignment
// matching phase and survives this upsert untouched.
func (s *Syncer) syncOrganizations(ctx context.Context, run *runCache) (int, error) {
	orgs, err := s.ticketing.ListOrganizations(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "organization fetch failed")
	}

	now := s.now()
	rows := utils.Map(orgs, func(o zendesk.Organization) models.Organization {
		return models.Organization{
			ID:      o.ID,
			Name:    o.Name,
			Domains: o.DomainNames,
			CRMID:   o.CRMIdentifier(),

			SourceCreatedAt: o.CreatedAt,
			SourceUpdatedAt: o.UpdatedAt,
			SyncedAt:        now,
		}
	})

	if err := s.organizations.UpsertBatch(rows); err != nil {
		return 0, errors.Wrap(err, "could not upsert organizations")
	}

	// later phases must see the organizations written in this run
	run.invalidateOrganizations()

	withCRMID := len(utils.Filter(rows, func(o models.Organization) bool { return o.CRMID != nil }))
	slog.Info("organization phase finished", "count", len(rows), "withCrmId", withCRMID)
	return len(rows), nil
}
