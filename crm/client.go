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

package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/deskmirror/deskmirror/database/models"
	"github.com/pkg/errors"
)

const maxAttempts = 3

// AccountAssignment is one (account, owner) tuple as the CRM reports it for
// a given role.
type AccountAssignment struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	OwnerID     string `json:"owner_id"`
	OwnerName   string `json:"owner_name"`
	OwnerEmail  string `json:"owner_email"`
}

type assignmentsResponse struct {
	Assignments []AccountAssignment `json:"assignments"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("invalid CRM client parameters: baseURL and apiKey must be provided")
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *Client) doRequest(ctx context.Context, path string, currentTry int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not create CRM API request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		if currentTry < maxAttempts {
			slog.Warn("CRM API request failed", "try", currentTry, "path", path, "err", err)
			return c.doRequest(ctx, path, currentTry+1)
		}
		return nil, errors.Wrap(err, "CRM API unreachable")
	}

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
		statusCode := res.StatusCode
		res.Body.Close()
		if currentTry < maxAttempts {
			slog.Warn("CRM API error, retrying", "try", currentTry, "statusCode", statusCode)
			select {
			case <-time.After(time.Duration(currentTry) * 2 * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return c.doRequest(ctx, path, currentTry+1)
		}
		return nil, fmt.Errorf("CRM API returned status code %d", statusCode)
	}

	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("CRM API returned status code %d", res.StatusCode)
	}

	return res, nil
}

// ListAssignments returns every (account, owner) tuple the CRM holds for
// the role.
func (c *Client) ListAssignments(ctx context.Context, role models.OwnerRole) ([]AccountAssignment, error) {
	res, err := c.doRequest(ctx, "/api/v1/account-owners?role="+url.QueryEscape(string(role)), 1)
	if err != nil {
		return nil, errors.Wrapf(err, "could not list %s assignments", role)
	}
	defer res.Body.Close()

	var result assignmentsResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "could not decode assignments response")
	}

	slog.Debug("fetched assignments from CRM", "role", role, "count", len(result.Assignments))
	return result.Assignments, nil
}
