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
	"log/slog"
	"strconv"
	"time"

	"github.com/deskmirror/deskmirror/database/models"
	"github.com/deskmirror/deskmirror/utils"
	"github.com/deskmirror/deskmirror/zendesk"
	"github.com/pkg/errors"
)

// QBRCutoff returns the first day of the quarter two quarters before the
// one containing now. The resulting window always spans the current quarter
// plus the two preceding it, which is what trailing-quarter reporting needs.
// Wraps into the previous year for quarters 1 and 2.
func QBRCutoff(now time.Time) time.Time {
	quarter := (int(now.Month()) - 1) / 3 // 0-indexed
	year := now.Year()

	quarter -= 2
	if quarter < 0 {
		quarter += 4
		year--
	}

	return time.Date(year, time.Month(quarter*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// syncTickets runs the two-tier bounded fetch: every open-ish ticket with no
// date bound, plus terminal tickets updated inside the QBR window. Tickets
// for organizations outside the cached set are discarded; duplicates across
// the two passes keep the last-seen instance.
func (s *Syncer) syncTickets(ctx context.Context, run *runCache) (int, error) {
	mapping, err := s.ticketing.TicketFieldMapping(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not load ticket field mapping")
	}

	cutoff := QBRCutoff(s.now())

	queries := make([]string, 0, len(models.OpenTicketStatuses)+len(models.ClosedTicketStatuses))
	for _, status := range models.OpenTicketStatuses {
		queries = append(queries, fmt.Sprintf("status:%s", status))
	}
	for _, status := range models.ClosedTicketStatuses {
		queries = append(queries, fmt.Sprintf("status:%s updated>=%s", status, cutoff.Format("2006-01-02")))
	}

	// bounded fan-out against the rate limited API; the order of the result
	// slices is not deterministic, but dedup below keeps the last-seen
	// instance per id so the merged batch is stable per run.
	wg := utils.ErrGroup[[]zendesk.Ticket](s.concurrency)
	for _, query := range queries {
		query := query
		wg.Go(func() ([]zendesk.Ticket, error) {
			return s.ticketing.SearchTickets(ctx, query, s.maxSearchPages)
		})
	}
	pages, err := wg.WaitAndCollect()
	if err != nil {
		return 0, errors.Wrap(err, "ticket fetch failed")
	}
	fetched := utils.Flat(pages)

	orgs, err := run.cachedOrganizations(s.organizations)
	if err != nil {
		return 0, errors.Wrap(err, "could not load cached organizations")
	}
	knownOrgs := make(map[int64]struct{}, len(orgs))
	for _, org := range orgs {
		knownOrgs[org.ID] = struct{}{}
	}

	// the organization phase is the source of truth for membership
	inScope := utils.Filter(fetched, func(t zendesk.Ticket) bool {
		if t.OrganizationID == nil {
			return false
		}
		_, ok := knownOrgs[*t.OrganizationID]
		return ok
	})
	dropped := len(fetched) - len(inScope)

	deduped := utils.DeduplicateSlice(inScope, func(t zendesk.Ticket) string {
		return strconv.FormatInt(t.ID, 10)
	})

	now := s.now()
	rows := utils.Map(deduped, func(t zendesk.Ticket) models.Ticket {
		return ticketToModel(t, mapping, now)
	})

	if err := s.tickets.UpsertBatch(rows); err != nil {
		return 0, errors.Wrap(err, "could not upsert tickets")
	}

	s.logEscalations(ctx, run, deduped)

	slog.Info("ticket phase finished", "fetched", len(fetched), "upserted", len(rows), "droppedUnknownOrg", dropped, "qbrCutoff", cutoff.Format("2006-01-02"))
	return len(rows), nil
}

func ticketToModel(t zendesk.Ticket, mapping zendesk.FieldMapping, syncedAt time.Time) models.Ticket {
	classification := zendesk.ExtractClassification(t, mapping)
	return models.Ticket{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		Subject:        t.Subject,
		Status:         models.ParseTicketStatus(t.Status),
		Priority:       models.ParseTicketPriority(t.Priority),
		RequesterID:    t.RequesterID,
		AssigneeID:     t.AssigneeID,
		Tags:           t.Tags,
		Product:        classification.Product,
		Module:         classification.Module,
		IssueSubtype:   classification.IssueSubtype,
		Escalated:      zendesk.IsEscalated(t.Tags),

		SourceCreatedAt: t.CreatedAt,
		SourceUpdatedAt: t.UpdatedAt,
		SyncedAt:        syncedAt,
	}
}

// logEscalations resolves requester names for escalated tickets through the
// per-run user cache. Best effort - a lookup failure never fails the phase.
func (s *Syncer) logEscalations(ctx context.Context, run *runCache, tickets []zendesk.Ticket) {
	for _, t := range tickets {
		if !zendesk.IsEscalated(t.Tags) || t.RequesterID == nil {
			continue
		}
		user, err := run.user(ctx, s.ticketing, *t.RequesterID)
		if err != nil {
			slog.Warn("could not resolve requester of escalated ticket", "ticketId", t.ID, "err", err)
			continue
		}
		slog.Info("escalated ticket in sync scope", "ticketId", t.ID, "subject", t.Subject, "requester", user.Name)
	}
}
