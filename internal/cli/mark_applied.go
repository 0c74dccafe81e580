package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/timjtrainor/Apply4Jobs/internal/common"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
)

var markAppliedDate string

var markAppliedCmd = &cobra.Command{
	Use:   "mark-applied <id>",
	Short: "Record that an application was submitted",
	Long: `Set date_applied on an application (default: today). The apply stage
only picks up records at "Step 3 - Apply" that have this date set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid application id %q", args[0])
		}
		day, err := common.ParseDate(markAppliedDate, time.Now())
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.MarkApplied(cmd.Context(), id, day); err != nil {
			return err
		}
		app, err := e.store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "#%d %s applied %s [%s]\n", app.ID, app.Label(), store.Date(day), app.Status)
		return nil
	},
}

func init() {
	markAppliedCmd.Flags().StringVar(&markAppliedDate, "date", "", "Date applied, YYYY-MM-DD (default: today)")
}
