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

package commands

import (
	"os"
	"strconv"
	"strings"

	"github.com/deskmirror/deskmirror/shared"
	"github.com/pkg/errors"
)

// Config is the source adapter configuration, read from the environment
// (LoadConfig pulls in a .env file first).
type Config struct {
	ZendeskSubdomain string `validate:"required"`
	ZendeskEmail     string `validate:"required,email"`
	ZendeskAPIToken  string `validate:"required"`

	CRMBaseURL string `validate:"required,url"`
	CRMAPIKey  string `validate:"required"`

	GithubToken string   `validate:"required"`
	GithubRepos []string `validate:"required,min=1,dive,contains=/"`

	SyncConcurrency    int
	SyncMaxSearchPages int
}

func ConfigFromEnv() (Config, error) {
	cfg := Config{
		ZendeskSubdomain: os.Getenv("ZENDESK_SUBDOMAIN"),
		ZendeskEmail:     os.Getenv("ZENDESK_EMAIL"),
		ZendeskAPIToken:  os.Getenv("ZENDESK_API_TOKEN"),

		CRMBaseURL: os.Getenv("CRM_BASE_URL"),
		CRMAPIKey:  os.Getenv("CRM_API_KEY"),

		GithubToken: os.Getenv("GITHUB_TOKEN"),

		SyncConcurrency:    intFromEnv("SYNC_CONCURRENCY"),
		SyncMaxSearchPages: intFromEnv("SYNC_MAX_SEARCH_PAGES"),
	}

	for _, repo := range strings.Split(os.Getenv("GITHUB_REPOS"), ",") {
		repo = strings.TrimSpace(repo)
		if repo != "" {
			cfg.GithubRepos = append(cfg.GithubRepos, repo)
		}
	}

	if err := shared.V.Struct(cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func intFromEnv(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
