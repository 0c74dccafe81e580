package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timjtrainor/Apply4Jobs/internal/common"
	"github.com/timjtrainor/Apply4Jobs/internal/pipeline"
	"github.com/timjtrainor/Apply4Jobs/internal/selector"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

type stageFlags struct {
	common.CommandConfig
	Company string
}

var stageHelp = []struct {
	stage workflow.Stage
	short string
	long  string
}{
	{
		workflow.StageReview,
		"Review new job descriptions",
		`Extract the stated requirements of each posting at "Step 1 - JD Review"
and ask whether to pursue it. Declined postings move to "Bad Fit". Accepted
ones get a fit score, keywords and resume guidance, then move to "Step 2 - Resume".`,
	},
	{
		workflow.StageResume,
		"Build a tailored resume for each reviewed posting",
		`For each posting at "Step 2 - Resume", copy the resume template, pick
enhanced achievement bullets per role, a summary, summary achievements and a
skills block, save the DOCX under temp/resumes/docx and score the result.`,
	},
	{
		workflow.StageApply,
		"Archive resumes of submitted applications",
		`For each posting at "Step 3 - Apply" with a date_applied set (see
mark-applied), move the DOCX and PDF into data/applied/<date>/.`,
	},
	{
		workflow.StageDM,
		"Draft a LinkedIn comment for each applied posting",
		`For each posting at "Step 4 - DM", ask for the hiring post URL and
choose one of the generated comments.`,
	},
	{
		workflow.StageEmail,
		"Draft the follow-up email",
		`For each posting at "Step 5 - Email", generate a cover letter email,
write it under temp/email and schedule the follow-up date.`,
	},
}

func stageCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(stageHelp))
	for _, h := range stageHelp {
		cmds = append(cmds, newStageCommand(h.stage, h.short, h.long))
	}
	return cmds
}

func newStageCommand(name workflow.Stage, short, long string) *cobra.Command {
	var flags stageFlags
	cmd := &cobra.Command{
		Use:   string(name),
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveFormat(cmd, &flags.CommandConfig)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			_, err = runStage(cmd, e, name, nil, flags)
			return err
		},
	}
	addOutputFlags(cmd, &flags.CommandConfig)
	cmd.Flags().StringVar(&flags.Company, "company", "", "Only process records for this company")
	return cmd
}

func runStage(cmd *cobra.Command, e *env, name workflow.Stage, sel *selector.Selector, flags stageFlags) (*pipeline.Report, error) {
	d, err := e.deps(cmd, name, sel)
	if err != nil {
		return nil, err
	}
	stage, err := pipeline.New(name, d)
	if err != nil {
		return nil, err
	}
	return common.RunStageCommand(
		cmd.Context(),
		e.logger,
		flags.CommandConfig,
		common.NewOutputHandlerTo(cmd.OutOrStdout(), e.logger),
		e.runner(),
		stage,
		store.Filter{Company: flags.Company},
	)
}

var (
	runFlags  stageFlags
	runStages []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in order",
	Long: `Run the review, resume, apply, dm and email stages one after another.
Records advanced by one stage are picked up by the next in the same run. The
run stops at the first stage that fails.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &runFlags.CommandConfig)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		stages, err := selectStages(runStages)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		// One reader over stdin for the whole run
		sel := newSelector(cmd)
		for _, name := range stages {
			if _, err := runStage(cmd, e, name, sel, runFlags); err != nil {
				return fmt.Errorf("stage %s: %w", name, err)
			}
		}
		return nil
	},
}

func selectStages(names []string) ([]workflow.Stage, error) {
	if len(names) == 0 {
		return workflow.Stages(), nil
	}
	want := make(map[workflow.Stage]bool, len(names))
	for _, n := range names {
		s, err := workflow.ParseStage(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		want[s] = true
	}
	// keep pipeline order regardless of flag order
	var out []workflow.Stage
	for _, s := range workflow.Stages() {
		if want[s] {
			out = append(out, s)
		}
	}
	return out, nil
}

func init() {
	addOutputFlags(runCmd, &runFlags.CommandConfig)
	runCmd.Flags().StringVar(&runFlags.Company, "company", "", "Only process records for this company")
	runCmd.Flags().StringSliceVar(&runStages, "stages", nil, "Comma-separated stages to run (default: all)")
}
