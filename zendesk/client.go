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

package zendesk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const maxAttempts = 3

// RateLimitError signals a 429 from the ticketing API. It is a distinct
// type so callers can tell throttling apart from real failures.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by ticketing API, retry after %s", e.RetryAfter)
}

type Client struct {
	subdomain  string
	email      string
	apiToken   string
	baseURL    string // overridable for tests
	httpClient *http.Client
}

func NewClient(subdomain, email, apiToken string) (*Client, error) {
	if subdomain == "" || email == "" || apiToken == "" {
		return nil, fmt.Errorf("invalid ticketing client parameters: subdomain, email and apiToken must be provided")
	}
	return &Client{
		subdomain:  subdomain,
		email:      email,
		apiToken:   apiToken,
		baseURL:    fmt.Sprintf("https://%s.zendesk.com", subdomain),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// NewClientWithBaseURL is used by tests to point the client at an httptest
// server.
func NewClientWithBaseURL(baseURL, email, apiToken string) *Client {
	return &Client{
		email:      email,
		apiToken:   apiToken,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// this method will retry up to maxAttempts before returning an error.
// 429 responses honor Retry-After and end up as *RateLimitError once the
// attempts are exhausted.
func (c *Client) doRequest(ctx context.Context, path string, currentTry int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not create ticketing API request")
	}
	req.SetBasicAuth(c.email+"/token", c.apiToken)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if currentTry < maxAttempts {
			slog.Warn("ticketing API request failed", "try", currentTry, "path", path, "err", err)
			return c.doRequest(ctx, path, currentTry+1)
		}
		return nil, errors.Wrap(err, "ticketing API unreachable")
	}

	if res.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(res)
		res.Body.Close()
		if currentTry < maxAttempts {
			slog.Warn("ticketing API rate limit hit, backing off", "try", currentTry, "retryAfter", retryAfter)
			select {
			case <-time.After(retryAfter):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return c.doRequest(ctx, path, currentTry+1)
		}
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}

	if res.StatusCode >= 500 {
		res.Body.Close()
		if currentTry < maxAttempts {
			slog.Warn("ticketing API server error, retrying", "try", currentTry, "statusCode", res.StatusCode)
			select {
			case <-time.After(time.Duration(currentTry) * 2 * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return c.doRequest(ctx, path, currentTry+1)
		}
		return nil, fmt.Errorf("ticketing API returned status code %d", res.StatusCode)
	}

	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("ticketing API returned status code %d", res.StatusCode)
	}

	return res, nil
}

func parseRetryAfter(res *http.Response) time.Duration {
	if v := res.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 10 * time.Second
}

// ListOrganizations fetches the complete organization list, following
// pagination until exhausted.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	orgs := make([]Organization, 0)
	path := "/api/v2/organizations.json?page[size]=100"

	for path != "" {
		res, err := c.doRequest(ctx, path, 1)
		if err != nil {
			return nil, errors.Wrap(err, "could not list organizations")
		}

		var page organizationsResponse
		err = json.NewDecoder(res.Body).Decode(&page)
		res.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "could not decode organizations response")
		}

		orgs = append(orgs, page.Organizations...)
		path = nextPath(page.NextPage)
	}

	slog.Debug("fetched organizations from ticketing API", "count", len(orgs))
	return orgs, nil
}

// SearchTickets runs a structured search query (status:, organization_id:,
// updated>=DATE predicates) and follows pagination up to maxPages pages.
func (c *Client) SearchTickets(ctx context.Context, query string, maxPages int) ([]Ticket, error) {
	tickets := make([]Ticket, 0)
	path := "/api/v2/search.json?query=" + url.QueryEscape("type:ticket "+query)

	for page := 0; path != "" && page < maxPages; page++ {
		res, err := c.doRequest(ctx, path, 1)
		if err != nil {
			return nil, errors.Wrapf(err, "could not search tickets with query %q", query)
		}

		var result searchResponse
		err = json.NewDecoder(res.Body).Decode(&result)
		res.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "could not decode ticket search response")
		}

		tickets = append(tickets, result.Results...)
		path = nextPath(result.NextPage)
	}

	slog.Debug("fetched tickets from ticketing API", "query", query, "count", len(tickets))
	return tickets, nil
}

// GetUser fetches a single user. Callers cache the result per run - see the
// syncer run cache.
func (c *Client) GetUser(ctx context.Context, id int64) (User, error) {
	res, err := c.doRequest(ctx, fmt.Sprintf("/api/v2/users/%d.json", id), 1)
	if err != nil {
		return User{}, errors.Wrapf(err, "could not fetch user %d", id)
	}
	defer res.Body.Close()

	var result userResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return User{}, errors.Wrap(err, "could not decode user response")
	}
	return result.User, nil
}

// TicketFieldMapping fetches the ticket field catalog and returns a mapping
// from field title to field id for the classification fields.
func (c *Client) TicketFieldMapping(ctx context.Context) (FieldMapping, error) {
	res, err := c.doRequest(ctx, "/api/v2/ticket_fields.json", 1)
	if err != nil {
		return FieldMapping{}, errors.Wrap(err, "could not fetch ticket fields")
	}
	defer res.Body.Close()

	var result ticketFieldsResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return FieldMapping{}, errors.Wrap(err, "could not decode ticket fields response")
	}

	mapping := fieldMappingFromEnv()
	for _, field := range result.TicketFields {
		switch field.Title {
		case "Product":
			if mapping.ProductFieldID == 0 {
				mapping.ProductFieldID = field.ID
			}
		case "Module":
			if mapping.ModuleFieldID == 0 {
				mapping.ModuleFieldID = field.ID
			}
		case "Issue Subtype":
			if mapping.SubtypeFieldID == 0 {
				mapping.SubtypeFieldID = field.ID
			}
		}
	}
	return mapping, nil
}

// nextPath strips the host from the absolute next_page URL the API returns,
// so pagination goes through the same baseURL (and test servers work).
func nextPath(next *string) string {
	if next == nil || *next == "" {
		return ""
	}
	u, err := url.Parse(*next)
	if err != nil {
		return ""
	}
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}
