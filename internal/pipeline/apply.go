package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/utils"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// ApplyStage archives the resume artifacts of submitted applications.
// Only records with date_applied set are picked up.
type ApplyStage struct{ d *Deps }

func (s *ApplyStage) Name() workflow.Stage   { return workflow.StageApply }
func (s *ApplyStage) Input() workflow.Status { return workflow.StatusApply }
func (s *ApplyStage) Query() store.Filter    { return store.Filter{RequireApplied: true} }

func (s *ApplyStage) Process(ctx context.Context, app *store.Application) (Outcome, error) {
	d := s.d
	paths := d.Config.Paths
	base := artifactBase(app)
	dest := paths.AppliedDirFor(d.now())

	moves := []struct{ src, dst string }{
		{filepath.Join(paths.DocxDir(), base+"-Resume.docx"), filepath.Join(dest, base+".docx")},
		{filepath.Join(paths.PDFDir(), base+"-Resume.pdf"), filepath.Join(dest, base+".pdf")},
	}

	var failed []error
	for _, m := range moves {
		if err := utils.MoveFile(m.src, m.dst); err != nil {
			d.Logger.Warn("Could not archive artifact",
				"id", app.ID,
				"company", app.CompanyName,
				"src", m.src,
				"error", err.Error())
			failed = append(failed, err)
			continue
		}
		d.Logger.Debug("Archived artifact", "id", app.ID, "dst", m.dst)
	}

	if len(failed) > 0 && d.Config.Apply.RequireArtifacts {
		return Skipped, apperrors.NewIOError(apperrors.ErrCodeFileMoveFailed,
			fmt.Sprintf("%d of %d artifacts not archived", len(failed), len(moves)), errors.Join(failed...))
	}

	err := d.Store.UpdateStage(ctx, workflow.StageApply, app.ID, workflow.StatusApply, map[string]any{
		workflow.ColStatus: workflow.StatusDM,
	})
	if err != nil {
		return Skipped, err
	}
	d.Selector.Note("Applied: %s", app.Label())
	return Advanced, nil
}
