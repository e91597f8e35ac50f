package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/presentation"
)

func newReplaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replays",
		Short: "Manage recorded sessions",
	}

	cmd.AddCommand(newReplaysListCmd())
	cmd.AddCommand(newReplaysRenderCmd())
	cmd.AddCommand(newReplaysDeleteCmd())

	return cmd
}

func newReplaysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored replays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			metas, err := app.ReplayService.List(context.Background())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tSERVER\tSTARTED\tLINES\tFINISHED")
			for _, meta := range metas {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\n",
					meta.ID, meta.Username, meta.Server,
					meta.StartedAt.Format("2006-01-02 15:04:05"),
					meta.LineCount, meta.Finished,
				)
			}
			return w.Flush()
		},
	}
}

func newReplaysRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <id>",
		Short: "Re-render a recorded session to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			console := presentation.NewConsole(os.Stdout)
			return app.ReplayService.Render(context.Background(), model.ReplayID(args[0]), console)
		},
	}
}

func newReplaysDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored replay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			id := model.ReplayID(args[0])
			if _, err := app.ReplayService.Get(context.Background(), id); err != nil {
				return err
			}
			return app.ReplayService.Delete(context.Background(), id)
		},
	}
}
