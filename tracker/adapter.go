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

package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deskmirror/deskmirror/utils"
	"github.com/google/go-github/v62/github"
)

// Item is one issue-tracker item as the sync engine consumes it.
type Item struct {
	Repo      string
	Number    int
	Title     string
	Body      string
	Status    string
	Sprint    string
	Milestone string
	Release   string
	URL       string
	UpdatedAt time.Time
}

type Adapter struct {
	client ClientFacade
	// repos in "owner/name" form, the configured project boards.
	repos       []string
	concurrency int
}

func NewAdapter(client ClientFacade, repos []string, concurrency int) *Adapter {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Adapter{client: client, repos: repos, concurrency: concurrency}
}

// ListConfiguredBoardItems fetches all issues of every configured repo,
// fanning out per repo with a bounded group.
func (a *Adapter) ListConfiguredBoardItems(ctx context.Context) ([]Item, error) {
	wg := utils.ErrGroup[[]Item](a.concurrency)

	for _, repo := range a.repos {
		repo := repo
		wg.Go(func() ([]Item, error) {
			owner, name, err := splitRepo(repo)
			if err != nil {
				return nil, err
			}
			issues, err := a.client.ListRepoIssues(ctx, owner, name)
			if err != nil {
				return nil, err
			}
			return utils.Map(issues, func(issue *github.Issue) Item {
				return itemFromIssue(repo, issue)
			}), nil
		})
	}

	results, err := wg.WaitAndCollect()
	if err != nil {
		return nil, err
	}
	return utils.Flat(results), nil
}

// SearchForTicketReferences runs a full-text search pass across the
// configured repos for each pattern, as a supplement to the board listing.
func (a *Adapter) SearchForTicketReferences(ctx context.Context, patterns []string) ([]Item, error) {
	scope := strings.Join(utils.Map(a.repos, func(repo string) string {
		return "repo:" + repo
	}), " ")

	items := make([]Item, 0)
	for _, pattern := range patterns {
		issues, err := a.client.SearchIssues(ctx, fmt.Sprintf("%q in:title,body is:issue %s", pattern, scope))
		if err != nil {
			return nil, err
		}
		for _, issue := range issues {
			items = append(items, itemFromIssue(repoFromIssue(issue), issue))
		}
	}
	return items, nil
}

func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repo %q, expected owner/name", repo)
	}
	return owner, name, nil
}

// repoFromIssue recovers the owner/name pair from a search result's
// repository URL.
func repoFromIssue(issue *github.Issue) string {
	url := issue.GetRepositoryURL()
	if i := strings.Index(url, "/repos/"); i >= 0 {
		return url[i+len("/repos/"):]
	}
	return ""
}

func itemFromIssue(repo string, issue *github.Issue) Item {
	item := Item{
		Repo:      repo,
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		Milestone: issue.GetMilestone().GetTitle(),
		URL:       issue.GetHTMLURL(),
		UpdatedAt: issue.GetUpdatedAt().Time,
	}

	// status/sprint/release ride on labels by team convention
	for _, label := range issue.Labels {
		name := label.GetName()
		if status, ok := strings.CutPrefix(name, "status:"); ok {
			item.Status = strings.TrimSpace(status)
		}
		if sprint, ok := strings.CutPrefix(name, "sprint:"); ok {
			item.Sprint = strings.TrimSpace(sprint)
		}
		if release, ok := strings.CutPrefix(name, "release:"); ok {
			item.Release = strings.TrimSpace(release)
		}
	}

	if item.Status == "" && issue.GetState() != "" {
		item.Status = issue.GetState()
	}

	return item
}
