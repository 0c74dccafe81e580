package store

import (
	"time"

	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// DateLayout is how calendar dates are stored.
const DateLayout = "2006-01-02"

// Application is one row of job_applications.
type Application struct {
	ID             int64           `gorm:"column:job_application_id;primaryKey;autoIncrement" json:"id"`
	CompanyName    string          `gorm:"column:company_name;not null" json:"company_name"`
	JobTitle       string          `gorm:"column:job_title;not null" json:"job_title"`
	Link           string          `gorm:"column:link" json:"link,omitempty"`
	JobDescription string          `gorm:"column:job_description" json:"job_description,omitempty"`
	CompanyMission string          `gorm:"column:company_mission" json:"company_mission,omitempty"`
	CompanyValues  string          `gorm:"column:company_values" json:"company_values,omitempty"`
	RecentNews     string          `gorm:"column:recent_news" json:"recent_news,omitempty"`
	DateApplied    *string         `gorm:"column:date_applied" json:"date_applied,omitempty"`
	Status         workflow.Status `gorm:"column:status;not null;default:'Step 1 - JD Review'" json:"status"`

	OriginalFitScore *float64 `gorm:"column:original_fit_score" json:"original_fit_score,omitempty"`
	FinalFitScore    *float64 `gorm:"column:final_fit_score" json:"final_fit_score,omitempty"`

	AIRequirements       string `gorm:"column:ai_requirements" json:"ai_requirements,omitempty"`
	Keywords             string `gorm:"column:keywords" json:"keywords,omitempty"`
	Guidance             string `gorm:"column:guidance" json:"guidance,omitempty"`
	ResumeSummary        string `gorm:"column:resume_summary" json:"resume_summary,omitempty"`
	ResumeSummaryBullets string `gorm:"column:resume_summary_bullets" json:"resume_summary_bullets,omitempty"`
	Resume               string `gorm:"column:resume" json:"resume,omitempty"`
	LinkedInPostURL      string `gorm:"column:linkedin_post_url" json:"linkedin_post_url,omitempty"`
	LinkedInComment      string `gorm:"column:linkedin_comment" json:"linkedin_comment,omitempty"`
	Email                string `gorm:"column:email" json:"email,omitempty"`
	Followup             string `gorm:"column:followup" json:"followup,omitempty"`

	DateJDReview      *string `gorm:"column:date_jd_review" json:"date_jd_review,omitempty"`
	DateResumeCreated *string `gorm:"column:date_resume_created" json:"date_resume_created,omitempty"`
	DateEmailed       *string `gorm:"column:date_emailed" json:"date_emailed,omitempty"`
	DateEmailFollowup *string `gorm:"column:date_email_followup" json:"date_email_followup,omitempty"`
	DateCreated       string  `gorm:"column:date_created;->" json:"date_created"`
}

func (Application) TableName() string { return "job_applications" }

// Label identifies the record in prompts and log lines.
func (a *Application) Label() string {
	return a.CompanyName + " - " + a.JobTitle
}

// ConfigEntry is one row of the operator key/value table.
type ConfigEntry struct {
	Key   string `gorm:"column:key;uniqueIndex"`
	Value string `gorm:"column:value"`
}

func (ConfigEntry) TableName() string { return "config" }

// Date formats t as a stored calendar date.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// Filter narrows QueryByStatus.
type Filter struct {
	Company        string // exact company name; empty matches all
	RequireApplied bool   // only records with date_applied set
}

// Config keys read by the pipeline.
const (
	KeyGoogleToken        = "google_token"
	KeyFullResumeFileName = "full_resume_file_name"
)
