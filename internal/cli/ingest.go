package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timjtrainor/Apply4Jobs/internal/ingest"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file-or-dir]",
	Short: "Load job postings from YAML files",
	Long: `Upsert every posting in a YAML file, or in every .yaml/.yml file of a
directory (default: ingest.dir). A file may hold several postings separated
by "---". Each posting needs company and title; link, description, mission,
values and recentNews are optional.

With --watch the directory is watched and new or changed files are ingested
until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		path := e.cfg.Paths.Resolve(e.cfg.Ingest.Dir)
		if len(args) == 1 {
			path = args[0]
		}

		ing := ingest.New(e.store, e.obs.GetMetrics(), e.logger)
		n, err := ing.IngestPath(cmd.Context(), path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d posting(s) from %s\n", n, path)

		if !ingestWatch {
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", path)
		return ing.Watch(cmd.Context(), path, e.cfg.Ingest.Debounce)
	},
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "Keep watching the directory for new posting files")
}
