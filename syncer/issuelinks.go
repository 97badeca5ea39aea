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
	"regexp"
	"strconv"

	"github.com/deskmirror/deskmirror/database/models"
	"github.com/deskmirror/deskmirror/tracker"
	"github.com/pkg/errors"
)

// ticket ids live well below a billion; anything outside this range is a
// false positive of the text patterns (order numbers, timestamps, ...).
const (
	minTicketID = 1
	maxTicketID = 99_999_999
)

// ticketRefPatterns are the fixed text forms a ticket reference takes in
// tracker items: an id-prefixed token, the labeled bracket form, and full
// ticket URLs.
var ticketRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bzd[#:]\s*(\d+)`),
	regexp.MustCompile(`(?i)\[ticket\s*#?(\d+)\]`),
	regexp.MustCompile(`(?i)https?://[a-z0-9-]+\.zendesk\.com/agent/tickets/(\d+)`),
}

// searchPatterns is the full-text search pass counterpart of the regexes.
var searchPatterns = []string{"zd#", "[ticket", ".zendesk.com/agent/tickets/"}

// ExtractTicketReferences pulls every validated ticket id out of free text.
// Duplicates within one text are collapsed, order of first appearance kept.
func ExtractTicketReferences(text string) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)

	for _, pattern := range ticketRefPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			id, err := strconv.ParseInt(match[1], 10, 64)
			if err != nil || id < minTicketID || id > maxTicketID {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	return ids
}

// syncIssueLinks crawls the configured boards and the search pass, extracts
// ticket references, and fully replaces the link set. Links to tickets
// outside the current cache are dropped - the cache is the filter, not the
// tracker.
func (s *Syncer) syncIssueLinks(ctx context.Context, run *runCache) (int, error) {
	boardItems, err := s.tracker.ListConfiguredBoardItems(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not list board items")
	}

	searchItems, err := s.tracker.SearchForTicketReferences(ctx, searchPatterns)
	if err != nil {
		return 0, errors.Wrap(err, "tracker search pass failed")
	}

	knownTickets, err := s.tickets.ExistingIDs()
	if err != nil {
		return 0, errors.Wrap(err, "could not load cached ticket ids")
	}

	// the board pass runs first, so on duplicates its occurrence wins
	links := make([]models.IssueLink, 0)
	seen := make(map[string]struct{})
	droppedUnknown := 0

	for _, item := range append(boardItems, searchItems...) {
		for _, ticketID := range ExtractTicketReferences(item.Title + "\n" + item.Body) {
			if _, ok := knownTickets[ticketID]; !ok {
				droppedUnknown++
				continue
			}
			key := fmt.Sprintf("%d|%s|%d", ticketID, item.Repo, item.Number)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			links = append(links, issueLinkFromItem(ticketID, item))
		}
	}

	if err := s.issueLinks.ReplaceAll(links); err != nil {
		return 0, errors.Wrap(err, "could not replace issue links")
	}

	slog.Info("issue link phase finished",
		"boardItems", len(boardItems), "searchItems", len(searchItems),
		"links", len(links), "droppedUnknownTicket", droppedUnknown)
	return len(links), nil
}

func issueLinkFromItem(ticketID int64, item tracker.Item) models.IssueLink {
	return models.IssueLink{
		TicketID:    ticketID,
		Repo:        item.Repo,
		IssueNumber: item.Number,
		IssueTitle:  item.Title,
		Status:      item.Status,
		Sprint:      item.Sprint,
		Milestone:   item.Milestone,
		Release:     item.Release,
		URL:         item.URL,
		LastSeenAt:  item.UpdatedAt,
	}
}
