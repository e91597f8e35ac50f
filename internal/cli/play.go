package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "play <username>",
		Short: "Join a game as a player",
		Long: `Join the configured server as a seated player.

While playing, answer prompts by typing a hand position (1-14), tile
notation (5m, 3p, E), or a decision option number. Type quit to leave.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if username == "" {
				return errors.New("username is required")
			}
			return runSession(sessionOptions{
				username: username,
				observe:  false,
				record:   record,
			})
		},
	}

	cmd.Flags().BoolVar(&record, "record", true, "Record the session as a replay")

	return cmd
}

func newObserveCmd() *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "observe <username>",
		Short: "Watch a seated player's game",
		Long: `Connect as an observer of the named player.

Type watch <username> to switch seats mid-game. Type quit to leave.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(sessionOptions{
				username: args[0],
				observe:  true,
				record:   record,
			})
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "Record the session as a replay")

	return cmd
}
