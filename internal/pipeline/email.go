package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/prompts"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/utils"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// EmailStage drafts the cover letter email and schedules the follow-up.
type EmailStage struct{ d *Deps }

func (s *EmailStage) Name() workflow.Stage   { return workflow.StageEmail }
func (s *EmailStage) Input() workflow.Status { return workflow.StatusEmail }
func (s *EmailStage) Query() store.Filter    { return store.Filter{} }

func (s *EmailStage) Prepare(ctx context.Context) error {
	return s.d.requireGenerator()
}

// EmailPath is where the cover letter for app is written.
func EmailPath(dir string, app *store.Application) string {
	return filepath.Join(dir, utils.SafeFileName(app.CompanyName+"-"+app.JobTitle)+".txt")
}

func (s *EmailStage) Process(ctx context.Context, app *store.Application) (Outcome, error) {
	d := s.d

	letter, err := d.generate(ctx, prompts.CoverLetter, prompts.Fields{
		"Resume":     app.Resume,
		"Company":    app.CompanyName,
		"JobTitle":   app.JobTitle,
		"Mission":    app.CompanyMission,
		"Values":     app.CompanyValues,
		"RecentNews": app.RecentNews,
	})
	if err != nil {
		return Skipped, err
	}
	letter = strings.TrimSpace(letter)
	d.Selector.Show(app.Label(), letter)

	path := EmailPath(d.Config.Paths.EmailDir(), app)
	if err := utils.EnsureParentDir(path); err != nil {
		return Skipped, apperrors.NewIOError(apperrors.ErrCodeFileWriteFailed, "cannot create email directory", err)
	}
	if err := os.WriteFile(path, []byte(letter+"\n"), 0o644); err != nil {
		return Skipped, apperrors.NewIOError(apperrors.ErrCodeFileWriteFailed,
			fmt.Sprintf("cannot write %s", path), err)
	}

	now := d.now()
	err = d.Store.UpdateStage(ctx, workflow.StageEmail, app.ID, workflow.StatusEmail, map[string]any{
		workflow.ColEmail:             letter,
		workflow.ColDateEmailed:       store.Date(now),
		workflow.ColDateEmailFollowup: store.Date(now.AddDate(0, 0, d.Config.Email.FollowupDays)),
		workflow.ColStatus:            workflow.StatusFollowUp,
	})
	if err != nil {
		return Skipped, err
	}
	return Advanced, nil
}
