package cli

import (
	"github.com/spf13/cobra"

	"github.com/timjtrainor/Apply4Jobs/internal/common"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/types"
)

var (
	listConfig common.CommandConfig
	listStatus string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List job applications",
	Long:  `List applications, optionally only those at one status such as "Step 3 - Apply".`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &listConfig)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := common.ParseStatus(listStatus)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		apps, err := e.store.List(cmd.Context(), status)
		if err != nil {
			return err
		}
		return common.NewOutputHandlerTo(cmd.OutOrStdout(), e.logger).
			HandleOutput(applicationList(string(status), apps), listConfig)
	},
}

func applicationList(filter string, apps []store.Application) types.ApplicationList {
	list := types.ApplicationList{
		Filter:       filter,
		Applications: make([]types.ApplicationRow, 0, len(apps)),
	}
	for _, a := range apps {
		row := types.ApplicationRow{
			ID:               a.ID,
			Company:          a.CompanyName,
			Title:            a.JobTitle,
			Status:           string(a.Status),
			OriginalFitScore: a.OriginalFitScore,
			FinalFitScore:    a.FinalFitScore,
			DateCreated:      a.DateCreated,
		}
		if a.DateApplied != nil {
			row.DateApplied = *a.DateApplied
		}
		list.Applications = append(list.Applications, row)
	}
	return list
}

func init() {
	addOutputFlags(listCmd, &listConfig)
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only list applications at this status")
}
