package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/timjtrainor/Apply4Jobs/internal/prompts"
	"github.com/timjtrainor/Apply4Jobs/internal/selector"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// DMStage drafts a LinkedIn comment for a hiring post.
type DMStage struct{ d *Deps }

func (s *DMStage) Name() workflow.Stage   { return workflow.StageDM }
func (s *DMStage) Input() workflow.Status { return workflow.StatusDM }
func (s *DMStage) Query() store.Filter    { return store.Filter{} }

func (s *DMStage) Prepare(ctx context.Context) error {
	return s.d.requireGenerator()
}

func (s *DMStage) Process(ctx context.Context, app *store.Application) (Outcome, error) {
	d := s.d
	d.Selector.Note("Processing: %s", app.Label())

	if strings.TrimSpace(app.RecentNews) == "" {
		ok, err := d.Selector.Confirm("No recent news for this company. Continue anyway?", selector.RequireYes)
		if err != nil {
			return Skipped, err
		}
		if !ok {
			return Skipped, nil
		}
	}

	postURL, err := d.Selector.Ask(fmt.Sprintf("Enter LinkedIn post url for %s", app.Label()))
	if err != nil {
		return Skipped, err
	}

	out, err := d.generate(ctx, prompts.LinkedInComment, prompts.Fields{
		"Company":        app.CompanyName,
		"JobTitle":       app.JobTitle,
		"Mission":        app.CompanyMission,
		"Values":         app.CompanyValues,
		"RecentNews":     app.RecentNews,
		"Summary":        app.ResumeSummary,
		"SummaryBullets": app.ResumeSummaryBullets,
		"Count":          d.Config.DM.CommentOptions,
	})
	if err != nil {
		return Skipped, err
	}
	comment, err := d.Selector.SelectOne(selector.Lines(out))
	if err != nil {
		return Skipped, err
	}

	err = d.Store.UpdateStage(ctx, workflow.StageDM, app.ID, workflow.StatusDM, map[string]any{
		workflow.ColLinkedInPostURL: postURL,
		workflow.ColLinkedInComment: comment,
		workflow.ColStatus:          workflow.StatusEmail,
	})
	if err != nil {
		return Skipped, err
	}
	return Advanced, nil
}
