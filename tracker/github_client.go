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

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// ClientFacade is a wrapper around the github package - which provides only
// the methods we need. Keeps the engine testable without network access.
type ClientFacade interface {
	ListRepoIssues(ctx context.Context, owner string, repo string) ([]*github.Issue, error)
	SearchIssues(ctx context.Context, query string) ([]*github.Issue, error)
}

type githubClient struct {
	client *github.Client
}

func NewGithubClient(token string) ClientFacade {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), tokenSource)
	return &githubClient{client: github.NewClient(httpClient)}
}

func (g *githubClient) ListRepoIssues(ctx context.Context, owner string, repo string) ([]*github.Issue, error) {
	issues := make([]*github.Issue, 0)
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, res, err := g.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, err
		}
		issues = append(issues, page...)
		if res.NextPage == 0 {
			break
		}
		opts.Page = res.NextPage
	}

	return issues, nil
}

func (g *githubClient) SearchIssues(ctx context.Context, query string) ([]*github.Issue, error) {
	issues := make([]*github.Issue, 0)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 100}}

	for {
		result, res, err := g.client.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		issues = append(issues, result.Issues...)
		if res.NextPage == 0 {
			break
		}
		opts.Page = res.NextPage
	}

	return issues, nil
}
