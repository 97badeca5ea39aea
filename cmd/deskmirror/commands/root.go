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
	"log/slog"
	"os"

	"github.com/deskmirror/deskmirror/crm"
	"github.com/deskmirror/deskmirror/database"
	"github.com/deskmirror/deskmirror/database/repositories"
	"github.com/deskmirror/deskmirror/syncer"
	"github.com/deskmirror/deskmirror/tracker"
	"github.com/deskmirror/deskmirror/zendesk"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "deskmirror",
	Short: "Local queryable cache of support-ticket and account data",
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

// DatabaseFactory opens the pool and runs pending migrations unless
// DISABLE_AUTOMIGRATE=true.
func DatabaseFactory() (*gorm.DB, error) {
	pool, err := database.NewPgxConnPool(database.GetPoolConfigFromEnv())
	if err != nil {
		return nil, err
	}
	db, err := database.NewGormDB(pool)
	if err != nil {
		return nil, err
	}

	if os.Getenv("DISABLE_AUTOMIGRATE") != "true" {
		slog.Info("running database migrations...")
		if err := database.RunMigrationsWithDB(db); err != nil {
			return nil, err
		}
	} else {
		slog.Info("automatic migrations disabled via DISABLE_AUTOMIGRATE=true")
	}

	return db, nil
}

// NewTicketingClient builds the ticketing source adapter from config.
func NewTicketingClient(cfg Config) (*zendesk.Client, error) {
	return zendesk.NewClient(cfg.ZendeskSubdomain, cfg.ZendeskEmail, cfg.ZendeskAPIToken)
}

func NewCRMClient(cfg Config) (*crm.Client, error) {
	return crm.NewClient(cfg.CRMBaseURL, cfg.CRMAPIKey)
}

func NewTrackerAdapter(cfg Config) *tracker.Adapter {
	return tracker.NewAdapter(tracker.NewGithubClient(cfg.GithubToken), cfg.GithubRepos, cfg.SyncConcurrency)
}

// NewSyncer wires the engine against the real repositories and adapters.
func NewSyncer(db *gorm.DB, ticketing *zendesk.Client, crmClient *crm.Client, trackerAdapter *tracker.Adapter, cfg Config) *syncer.Syncer {
	return syncer.New(
		ticketing,
		crmClient,
		trackerAdapter,
		repositories.NewOrganizationRepository(db),
		repositories.NewTicketRepository(db),
		repositories.NewAssignmentRepository(db),
		repositories.NewIssueLinkRepository(db),
		repositories.NewSyncStatusRepository(db),
		syncer.Options{
			Concurrency:    cfg.SyncConcurrency,
			MaxSearchPages: cfg.SyncMaxSearchPages,
		},
	)
}
