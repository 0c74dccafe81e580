package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timjtrainor/Apply4Jobs/internal/store"
)

var initFlags struct {
	googleToken string
	resumeName  string
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the working directories and the application database",
	Long: `Create the directories the stages write into, create or migrate the
application database, and optionally store the Gemini key and the resume
export name in the config table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		for _, dir := range e.cfg.Paths.WorkingDirs() {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			fmt.Fprintf(out, "ready  %s\n", dir)
		}
		fmt.Fprintf(out, "ready  %s\n", e.cfg.Paths.Resolve(e.cfg.Store.Path))

		ctx := cmd.Context()
		if initFlags.googleToken != "" {
			if err := e.store.ConfigSet(ctx, store.KeyGoogleToken, initFlags.googleToken); err != nil {
				return err
			}
			fmt.Fprintf(out, "set    %s\n", store.KeyGoogleToken)
		}
		if initFlags.resumeName != "" {
			if err := e.store.ConfigSet(ctx, store.KeyFullResumeFileName, initFlags.resumeName); err != nil {
				return err
			}
			fmt.Fprintf(out, "set    %s=%s\n", store.KeyFullResumeFileName, initFlags.resumeName)
		}

		if _, err := os.Stat(e.cfg.Paths.TemplatePath()); err != nil {
			e.logger.Warn("Resume template not found; the resume stage needs it",
				"path", e.cfg.Paths.TemplatePath())
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initFlags.googleToken, "google-token", "", "Store the Gemini API key in the config table")
	initCmd.Flags().StringVar(&initFlags.resumeName, "resume-name", "", "Store the resume export name (without .json)")
}
