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
	"context"

	"github.com/deskmirror/deskmirror/daemons"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// NewServeCommand starts the long-running process: scheduled syncs plus a
// warm store for the API layer reading alongside.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sync daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ConfigFromEnv()
			if err != nil {
				return err
			}

			db, err := DatabaseFactory()
			if err != nil {
				return err
			}

			app := fx.New(
				fx.Supply(cfg),
				fx.Supply(db),
				fx.Provide(
					NewTicketingClient,
					NewCRMClient,
					NewTrackerAdapter,
					NewSyncer,
					daemons.NewRunner,
				),
				fx.Invoke(func(runner *daemons.Runner, lc fx.Lifecycle) {
					ctx, cancel := context.WithCancel(context.Background())
					lc.Append(fx.Hook{
						OnStart: func(context.Context) error {
							runner.Start(ctx)
							return nil
						},
						OnStop: func(context.Context) error {
							cancel()
							return nil
						},
					})
				}),
			)

			app.Run()
			return nil
		},
	}
}
