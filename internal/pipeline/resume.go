package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/timjtrainor/Apply4Jobs/internal/document"
	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/prompts"
	"github.com/timjtrainor/Apply4Jobs/internal/resume"
	"github.com/timjtrainor/Apply4Jobs/internal/selector"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/utils"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// Template placeholders.
const (
	tokenJobTitle  = "jobTitle"
	tokenSummary   = "summaryParagraph"
	tokenSkills    = "skillsPlaceHolder"
	summaryBulletN = "summaryBullet%d"
	achievementN   = "job%dAchievement%d"
)

// ResumeStage tailors the resume template to one posting, with the
// operator choosing among generated variants.
type ResumeStage struct{ d *Deps }

func (s *ResumeStage) Name() workflow.Stage   { return workflow.StageResume }
func (s *ResumeStage) Input() workflow.Status { return workflow.StatusResume }
func (s *ResumeStage) Query() store.Filter    { return store.Filter{} }

func (s *ResumeStage) Prepare(ctx context.Context) error {
	if err := s.d.requireGenerator(); err != nil {
		return err
	}
	if _, err := s.d.loadResume(); err != nil {
		return err
	}
	tpl := s.d.Config.Paths.TemplatePath()
	if err := utils.ValidateInputFile(tpl); err != nil {
		return apperrors.NewConfigError(apperrors.ErrCodeMissingConfig,
			fmt.Sprintf("resume template not usable: %s", tpl), err)
	}
	return nil
}

// DocxPath is where the tailored resume for app is written.
func DocxPath(dir string, app *store.Application) string {
	return filepath.Join(dir, artifactBase(app)+"-Resume.docx")
}

func artifactBase(app *store.Application) string {
	return utils.SafeFileName(app.CompanyName + "-" + app.JobTitle)
}

func (s *ResumeStage) Process(ctx context.Context, app *store.Application) (Outcome, error) {
	d := s.d
	cfg := d.Config.Resume
	res, err := d.loadResume()
	if err != nil {
		return Fatal, err
	}
	commit := func(fields map[string]any) error {
		return d.Store.UpdateStage(ctx, workflow.StageResume, app.ID, workflow.StatusResume, fields)
	}

	d.Selector.Note("Processing: %s", app.Label())
	if strings.TrimSpace(app.CompanyMission) == "" || strings.TrimSpace(app.CompanyValues) == "" {
		ok, err := d.Selector.Confirm("Company mission or values are missing. Continue anyway?", selector.RequireYes)
		if err != nil {
			return Skipped, err
		}
		if !ok {
			d.Logger.Info("Resume build declined", "id", app.ID, "company", app.CompanyName)
			return Skipped, nil
		}
	}

	docPath := DocxPath(d.Config.Paths.DocxDir(), app)
	if err := document.CopyTemplate(d.Config.Paths.TemplatePath(), docPath); err != nil {
		return Skipped, err
	}
	doc, err := document.Open(docPath)
	if err != nil {
		return Skipped, err
	}
	doc.Replace(tokenJobTitle, app.JobTitle)
	tokens := []string{tokenJobTitle, tokenSummary, tokenSkills}

	var (
		chosen     []string
		experience strings.Builder
	)
	for i, role := range res.WorkExperience {
		n := cfg.BulletsFor(i)
		for m := range n {
			tokens = append(tokens, fmt.Sprintf(achievementN, i+1, m+1))
		}
		bullets, err := s.roleBullets(ctx, app, i, role, n)
		if err != nil {
			return Skipped, err
		}
		experience.WriteString(role.Heading())
		experience.WriteString("\n")
		for m, b := range bullets {
			doc.Replace(fmt.Sprintf(achievementN, i+1, m+1), b)
			experience.WriteString("- " + b + "\n")
		}
		experience.WriteString("\n")
		chosen = append(chosen, bullets...)
	}
	allBullets := strings.Join(chosen, "\n")

	out, err := d.generate(ctx, prompts.Summary, prompts.Fields{
		"Guidance":       app.Guidance,
		"Company":        app.CompanyName,
		"JobDescription": app.JobDescription,
		"Bullets":        allBullets,
		"Keywords":       app.Keywords,
		"Values":         app.CompanyValues,
		"Mission":        app.CompanyMission,
		"Count":          cfg.SummaryOptions,
	})
	if err != nil {
		return Skipped, err
	}
	d.Selector.Note("Select the resume summary")
	summary, err := d.Selector.SelectOne(selector.Lines(out))
	if err != nil {
		return Skipped, err
	}
	doc.Replace(tokenSummary, summary)
	if err := commit(map[string]any{workflow.ColResumeSummary: summary}); err != nil {
		return Skipped, err
	}

	out, err = d.generate(ctx, prompts.SummaryAchievements, prompts.Fields{
		"Guidance":       app.Guidance,
		"JobDescription": app.JobDescription,
		"Bullets":        allBullets,
		"Keywords":       app.Keywords,
		"Summary":        summary,
		"Values":         app.CompanyValues,
		"Mission":        app.CompanyMission,
		"Count":          cfg.AchievementPool,
	})
	if err != nil {
		return Skipped, err
	}
	d.Selector.Note("Select %d summary achievements", cfg.AchievementPicks)
	picks, err := d.Selector.SelectMany(selector.Lines(out), cfg.AchievementPicks)
	if err != nil {
		return Skipped, err
	}
	for k, p := range picks {
		doc.Replace(fmt.Sprintf(summaryBulletN, k+1), p)
	}
	for k := range cfg.AchievementPicks {
		tokens = append(tokens, fmt.Sprintf(summaryBulletN, k+1))
	}
	summaryBullets := strings.Join(picks, "\n")
	if err := commit(map[string]any{workflow.ColResumeSummaryBullets: summaryBullets}); err != nil {
		return Skipped, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Summary\n\n%s\n\n%s\n\n", summary, summaryBullets)
	text.WriteString("Experience\n\n")
	text.WriteString(experience.String())
	if extra := strings.TrimSpace(cfg.ExtraSections); extra != "" {
		text.WriteString(extra)
		text.WriteString("\n\n")
	}
	text.WriteString("Skills:\n")

	out, err = d.generate(ctx, prompts.Skills, prompts.Fields{
		"JobDescription": app.JobDescription,
		"Keywords":       app.Keywords,
		"Resume":         text.String(),
		"Guidance":       app.Guidance,
	})
	if err != nil {
		return Skipped, err
	}
	skills := strings.TrimSpace(out)
	d.Selector.Show("Skills", skills)
	doc.Replace(tokenSkills, skills)
	text.WriteString(skills)

	if err := doc.SaveAs(docPath); err != nil {
		return Skipped, err
	}
	saved := doc.Path()
	left, err := document.Leftovers(saved, tokens)
	if err != nil {
		d.Logger.Warn("Could not scan resume for placeholders", "path", saved, "error", err.Error())
	} else if len(left) > 0 {
		d.Logger.Warn("Resume still contains placeholders", "path", saved, "tokens", left)
		d.Selector.Note("Warning: unfilled placeholders %s", strings.Join(left, ", "))
	}

	resumeText := text.String()
	score, err := d.fitScore(ctx, app.JobDescription, resumeText)
	if err != nil {
		return Skipped, err
	}
	fields := map[string]any{
		workflow.ColResume:            resumeText,
		workflow.ColStatus:            workflow.StatusApply,
		workflow.ColDateResumeCreated: d.today(),
	}
	if score != nil {
		fields[workflow.ColFinalFitScore] = score
	}
	if err := commit(fields); err != nil {
		return Skipped, err
	}
	d.Logger.Info("Resume created", "id", app.ID, "path", saved)
	return Advanced, nil
}

// roleBullets filters the role's achievements down to n and lets the
// operator pick one phrasing of each.
func (s *ResumeStage) roleBullets(ctx context.Context, app *store.Application, idx int, role resume.Role, n int) ([]string, error) {
	d := s.d
	if n <= 0 || strings.TrimSpace(role.JobDescription) == "" {
		return nil, nil
	}
	out, err := d.generate(ctx, prompts.BulletFilter, prompts.Fields{
		"Achievements":   role.JobDescription,
		"JobDescription": app.JobDescription,
		"Guidance":       app.Guidance,
		"Count":          n,
	})
	if err != nil {
		return nil, err
	}
	filtered := selector.Lines(out)
	if len(filtered) > n {
		filtered = filtered[:n]
	}

	picked := make([]string, 0, len(filtered))
	for m, bullet := range filtered {
		out, err := d.generate(ctx, prompts.BulletEnhance, prompts.Fields{
			"Bullet":   bullet,
			"Guidance": app.Guidance,
			"Keywords": app.Keywords,
			"Count":    d.Config.Resume.BulletVersions,
		})
		if err != nil {
			return nil, err
		}
		d.Selector.Note("%s: achievement %d of %d", role.Organization, m+1, len(filtered))
		choice, err := d.Selector.SelectOne(append([]string{bullet}, selector.Lines(out)...))
		if err != nil {
			return nil, err
		}
		picked = append(picked, choice)
	}
	d.Logger.Debug("Role bullets selected", "role", idx+1, "count", len(picked))
	return picked, nil
}
