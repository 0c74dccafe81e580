package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timjtrainor/Apply4Jobs/internal/common"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
)

var addFlags struct {
	app             store.Application
	descriptionFile string
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or refresh one job posting",
	Long: `Insert a posting at "Step 1 - JD Review", or refresh the descriptive
fields of an existing posting with the same company and title. Empty flags
leave stored values unchanged and the status is never modified.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := addFlags.app
		if addFlags.descriptionFile != "" {
			if app.JobDescription != "" {
				return fmt.Errorf("use either --description or --description-file, not both")
			}
			text, err := common.NewFileProcessor(getLoggerFromContext(cmd.Context())).ReadTextFile(addFlags.descriptionFile)
			if err != nil {
				return err
			}
			app.JobDescription = strings.TrimSpace(text)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		saved, err := e.store.Upsert(cmd.Context(), &app)
		if err != nil {
			return err
		}
		e.logger.Info("Posting saved", "id", saved.ID, "company", saved.CompanyName, "title", saved.JobTitle)
		fmt.Fprintf(cmd.OutOrStdout(), "#%d %s [%s]\n", saved.ID, saved.Label(), saved.Status)
		return nil
	},
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addFlags.app.CompanyName, "company", "", "Company name (required)")
	f.StringVar(&addFlags.app.JobTitle, "title", "", "Job title (required)")
	f.StringVar(&addFlags.app.Link, "link", "", "Posting URL")
	f.StringVar(&addFlags.app.JobDescription, "description", "", "Job description text")
	f.StringVar(&addFlags.descriptionFile, "description-file", "", "Read the job description from a text file")
	f.StringVar(&addFlags.app.CompanyMission, "mission", "", "Company mission")
	f.StringVar(&addFlags.app.CompanyValues, "values", "", "Company values")
	f.StringVar(&addFlags.app.RecentNews, "news", "", "Recent company news")
	_ = addCmd.MarkFlagRequired("company")
	_ = addCmd.MarkFlagRequired("title")
}
