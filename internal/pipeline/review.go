package pipeline

import (
	"context"
	"fmt"

	"github.com/timjtrainor/Apply4Jobs/internal/prompts"
	"github.com/timjtrainor/Apply4Jobs/internal/selector"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// ReviewStage extracts the stated requirements of a posting and asks the
// operator whether to pursue it.
type ReviewStage struct{ d *Deps }

func (s *ReviewStage) Name() workflow.Stage   { return workflow.StageReview }
func (s *ReviewStage) Input() workflow.Status { return workflow.StatusJDReview }
func (s *ReviewStage) Query() store.Filter    { return store.Filter{} }

func (s *ReviewStage) Prepare(ctx context.Context) error {
	if err := s.d.requireGenerator(); err != nil {
		return err
	}
	_, err := s.d.loadResume()
	return err
}

func (s *ReviewStage) Process(ctx context.Context, app *store.Application) (Outcome, error) {
	d := s.d
	res, err := d.loadResume()
	if err != nil {
		return Fatal, err
	}
	commit := func(fields map[string]any) error {
		return d.Store.UpdateStage(ctx, workflow.StageReview, app.ID, workflow.StatusJDReview, fields)
	}

	d.Selector.Note("Processing: %s", app.Label())
	reqs, err := d.generate(ctx, prompts.Requirements, prompts.Fields{"JobDescription": app.JobDescription})
	if err != nil {
		return Skipped, err
	}
	d.Selector.Show("Requirements", reqs)

	ok, err := d.Selector.Confirm("Do you meet the requirements and want to continue?", selector.DeclineOnNo)
	if err != nil {
		return Skipped, err
	}
	if !ok {
		err := commit(map[string]any{
			workflow.ColStatus:       workflow.StatusBadFit,
			workflow.ColDateJDReview: d.today(),
		})
		if err != nil {
			return Skipped, err
		}
		return Terminal, nil
	}

	if err := commit(map[string]any{workflow.ColAIRequirements: reqs}); err != nil {
		return Skipped, err
	}

	score, err := d.fitScore(ctx, reqs, res.RawText)
	if err != nil {
		return Skipped, err
	}
	if score != nil {
		if err := commit(map[string]any{workflow.ColOriginalFitScore: score}); err != nil {
			return Skipped, err
		}
	}

	keywords, err := d.generate(ctx, prompts.Keywords, prompts.Fields{"JobDescription": app.JobDescription})
	if err != nil {
		return Skipped, err
	}
	d.Selector.Show("Keywords", keywords)
	if err := commit(map[string]any{workflow.ColKeywords: keywords}); err != nil {
		return Skipped, err
	}

	guidance, err := d.generate(ctx, prompts.Guidance, prompts.Fields{"JobDescription": app.JobDescription})
	if err != nil {
		return Skipped, err
	}
	d.Selector.Show("Guidance", guidance)

	err = commit(map[string]any{
		workflow.ColGuidance:     guidance,
		workflow.ColStatus:       workflow.StatusResume,
		workflow.ColDateJDReview: d.today(),
	})
	if err != nil {
		return Skipped, fmt.Errorf("advance %s: %w", app.Label(), err)
	}
	return Advanced, nil
}
