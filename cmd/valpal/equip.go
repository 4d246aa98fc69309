package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zachrip/valpal/internal/notify"
	"github.com/zachrip/valpal/pkg/types"
)

var errNotRunning = errors.New("game client is not running or not signed in")

func newEquipCmd() *cobra.Command {
	var agentID, loadoutID string

	cmd := &cobra.Command{
		Use:   "equip",
		Short: "Equip a loadout now",
		Long:  "Equip the loadout with --loadout, or pick one the same way an agent lock does, narrowed by --agent.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(); err == nil {
					err = closeErr
				}
			}()

			sess := a.resolver.Resolve(cmd.Context())
			if sess == nil {
				return errNotRunning
			}
			eq := a.equipper(notify.Log{Logger: a.log.Named("notify")})

			var l *types.Loadout
			if loadoutID != "" {
				l, err = eq.EquipByID(cmd.Context(), sess, loadoutID)
			} else {
				l, err = eq.Equip(cmd.Context(), sess, agentID)
			}
			if err != nil {
				return err
			}
			if l == nil {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "no enabled loadouts")
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "equipped %s (%s)\n", l.Name, l.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "", "agent id to narrow the random pick")
	cmd.Flags().StringVar(&loadoutID, "loadout", "", "loadout id to equip")
	cmd.MarkFlagsMutuallyExclusive("agent", "loadout")
	return cmd
}
