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
	"sync/atomic"
	"time"

	"github.com/deskmirror/deskmirror/database/models"
	"github.com/deskmirror/deskmirror/utils"
	"github.com/google/uuid"
)

// ErrSyncInProgress is returned when a full sync is requested while another
// one is still running. Distinct from any source adapter error so callers
// can surface it as a conflict rather than a failure.
var ErrSyncInProgress = fmt.Errorf("a full sync is already in progress")

// SyncResult is the aggregate outcome of one run. Counts are zero for a
// phase that failed; PhaseErrors carries whatever went wrong in the
// best-effort phases, so a caller can detect degraded completeness without
// the run as a whole failing.
type SyncResult struct {
	RunID      uuid.UUID `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	Organizations int `json:"organizations"`
	Tickets       int `json:"tickets"`
	Assignments   int `json:"assignments"`
	IssueLinks    int `json:"issueLinks"`

	PhaseErrors map[models.SyncPhase]string `json:"phaseErrors,omitempty"`
}

type Options struct {
	// Concurrency caps parallel fetches against one external source.
	Concurrency int
	// MaxSearchPages bounds ticket search pagination per query.
	MaxSearchPages int
}

type Syncer struct {
	ticketing TicketingSource
	crm       CRMSource
	tracker   TrackerSource

	organizations OrganizationRepository
	tickets       TicketRepository
	assignments   AssignmentRepository
	issueLinks    IssueLinkRepository
	statuses      SyncStatusRepository

	concurrency    int
	maxSearchPages int

	// overridable in tests
	now func() time.Time

	running atomic.Bool
}

func New(
	ticketing TicketingSource,
	crmSource CRMSource,
	trackerSource TrackerSource,
	organizations OrganizationRepository,
	tickets TicketRepository,
	assignments AssignmentRepository,
	issueLinks IssueLinkRepository,
	statuses SyncStatusRepository,
	opts Options,
) *Syncer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.MaxSearchPages <= 0 {
		opts.MaxSearchPages = 50
	}
	return &Syncer{
		ticketing:      ticketing,
		crm:            crmSource,
		tracker:        trackerSource,
		organizations:  organizations,
		tickets:        tickets,
		assignments:    assignments,
		issueLinks:     issueLinks,
		statuses:       statuses,
		concurrency:    opts.Concurrency,
		maxSearchPages: opts.MaxSearchPages,
		now:            time.Now,
	}
}

// CacheEmpty reports whether the organization table has never been filled.
// The daemon uses it to decide on a startup sync.
func (s *Syncer) CacheEmpty() (bool, error) {
	count, err := s.organizations.Count()
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (s *Syncer) GetPhaseStatuses() ([]models.SyncStatus, error) {
	return s.statuses.GetPhaseStatuses()
}

// FullSync runs all four phases in fixed order. Organization and ticket
// failures are fatal to the run; assignment and issue link failures are
// best-effort enrichment, recorded in their status row and in the result,
// without aborting the remaining phases.
//
// Only one run at a time: a second invocation fails fast with
// ErrSyncInProgress instead of queueing or interleaving.
func (s *Syncer) FullSync(ctx context.Context) (SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SyncResult{}, ErrSyncInProgress
	}
	defer s.running.Store(false)

	run := newRunCache()
	start := s.now()
	result := SyncResult{
		RunID:       uuid.New(),
		StartedAt:   start,
		PhaseErrors: make(map[models.SyncPhase]string),
	}
	slog.Info("starting full sync", "runId", result.RunID)

	// organizations are a hard prerequisite for every later phase
	count, err := s.runPhase(ctx, models.SyncPhaseOrganizations, run, s.syncOrganizations)
	if err != nil {
		result.FinishedAt = s.now()
		return result, err
	}
	result.Organizations = count

	count, err = s.runPhase(ctx, models.SyncPhaseTickets, run, s.syncTickets)
	if err != nil {
		result.FinishedAt = s.now()
		return result, err
	}
	result.Tickets = count

	// best-effort from here on
	count, err = s.runPhase(ctx, models.SyncPhaseAssignments, run, s.syncAssignments)
	if err != nil {
		slog.Error("assignment phase failed, continuing", "err", err)
		result.PhaseErrors[models.SyncPhaseAssignments] = err.Error()
	} else {
		result.Assignments = count
	}

	count, err = s.runPhase(ctx, models.SyncPhaseIssueLinks, run, s.syncIssueLinks)
	if err != nil {
		slog.Error("issue link phase failed, continuing", "err", err)
		result.PhaseErrors[models.SyncPhaseIssueLinks] = err.Error()
	} else {
		result.IssueLinks = count
	}

	result.FinishedAt = s.now()
	slog.Info("full sync finished", "runId", result.RunID, "duration", result.FinishedAt.Sub(result.StartedAt),
		"organizations", result.Organizations, "tickets", result.Tickets,
		"assignments", result.Assignments, "issueLinks", result.IssueLinks,
		"degradedPhases", len(result.PhaseErrors))
	return result, nil
}

// runPhase wraps one phase with its status ledger writes and duration log.
func (s *Syncer) runPhase(ctx context.Context, phase models.SyncPhase, run *runCache, fn func(context.Context, *runCache) (int, error)) (int, error) {
	start := time.Now()
	if err := s.statuses.RecordPhaseStatus(phase, models.SyncStateInProgress, 0, nil); err != nil {
		slog.Warn("could not record phase start", "phase", phase, "err", err)
	}

	count, err := fn(ctx, run)
	if err != nil {
		if statusErr := s.statuses.RecordPhaseStatus(phase, models.SyncStateError, 0, utils.EmptyThenNil(err.Error())); statusErr != nil {
			slog.Warn("could not record phase error", "phase", phase, "err", statusErr)
		}
		return 0, err
	}

	if err := s.statuses.RecordPhaseStatus(phase, models.SyncStateSuccess, count, nil); err != nil {
		slog.Warn("could not record phase success", "phase", phase, "err", err)
	}
	slog.Info("phase finished", "phase", phase, "count", count, "duration", time.Since(start))
	return count, nil
}
