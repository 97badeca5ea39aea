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

	"github.com/spf13/cobra"
)

// NewSyncCommand runs one full sync and exits. Fatal phase errors propagate
// as a non-zero exit code.
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one full synchronization against all sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ConfigFromEnv()
			if err != nil {
				return err
			}

			db, err := DatabaseFactory()
			if err != nil {
				return err
			}

			ticketing, err := NewTicketingClient(cfg)
			if err != nil {
				return err
			}
			crmClient, err := NewCRMClient(cfg)
			if err != nil {
				return err
			}

			s := NewSyncer(db, ticketing, crmClient, NewTrackerAdapter(cfg), cfg)

			result, err := s.FullSync(cmd.Context())
			if err != nil {
				return err
			}

			slog.Info("sync complete",
				"organizations", result.Organizations,
				"tickets", result.Tickets,
				"assignments", result.Assignments,
				"issueLinks", result.IssueLinks)
			for phase, msg := range result.PhaseErrors {
				slog.Warn("phase completed with errors", "phase", phase, "err", msg)
			}
			return nil
		},
	}
}
