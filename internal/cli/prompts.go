package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timjtrainor/Apply4Jobs/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts [id]",
	Short: "Show prompt templates and where they come from",
	Long: `List every prompt template id with its source (default, file or
inline). With an id, print the template text in use.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		b, err := prompts.NewBuilder(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			for _, id := range prompts.IDs() {
				fmt.Fprintf(out, "%-22s %s\n", id, b.Source(id))
			}
			return nil
		}

		id := prompts.TemplateID(args[0])
		if b.Source(id) == "" {
			return fmt.Errorf("unknown prompt template %q", args[0])
		}
		fmt.Fprintln(out, b.Template(id))
		return nil
	},
}
