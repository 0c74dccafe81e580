// Package store persists application records and operator settings in an
// embedded SQLite file.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"

	"github.com/glebarez/sqlite"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	ErrNotFound       = errors.New("application not found")
	ErrStatusMismatch = errors.New("status precondition failed")
)

// descriptiveColumns are the ingestion-owned columns an upsert may refresh.
var descriptiveColumns = []string{
	"link", "job_description", "company_mission", "company_values", "recent_news",
}

// Store is a single connection to the application database. It is used
// sequentially by one run.
type Store struct {
	db     *gorm.DB
	logger *apperrors.Logger
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string, busyTimeout time.Duration, logger *apperrors.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.NewIOError(apperrors.ErrCodeFileWriteFailed,
				"failed to create database directory", err).WithContext("path", dir)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", path, busyTimeout.Milliseconds())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to open database", err).
			WithContext("path", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to access database handle", err)
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to access database handle", err)
	}

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return apperrors.NewInternalError(apperrors.ErrCodeDatabase, "embedded migrations missing", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, fsys)
	if err != nil {
		return apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to prepare migrations", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to apply migrations", err)
	}
	for _, r := range results {
		s.logger.Info("Applied migration", "version", r.Source.Version, "duration", r.Duration.String())
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// QueryByStatus returns records at status in id order.
func (s *Store) QueryByStatus(ctx context.Context, status workflow.Status, filter Filter) ([]Application, error) {
	q := s.db.WithContext(ctx).Where("status = ?", string(status))
	if filter.Company != "" {
		q = q.Where("company_name = ?", filter.Company)
	}
	if filter.RequireApplied {
		q = q.Where("date_applied IS NOT NULL")
	}

	var apps []Application
	if err := q.Order("job_application_id").Find(&apps).Error; err != nil {
		return nil, apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to query applications", err).
			WithContext("status", string(status))
	}
	return apps, nil
}

// List returns every record, or only those at status when it is non-empty.
func (s *Store) List(ctx context.Context, status workflow.Status) ([]Application, error) {
	q := s.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}

	var apps []Application
	if err := q.Order("job_application_id").Find(&apps).Error; err != nil {
		return nil, apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to list applications", err)
	}
	return apps, nil
}

// Get loads one record by id.
func (s *Store) Get(ctx context.Context, id int64) (*Application, error) {
	var app Application
	err := s.db.WithContext(ctx).First(&app, "job_application_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to load application", err).
			WithContext("id", id)
	}
	return &app, nil
}

// Upsert inserts a posting or, when (company, title) already exists,
// refreshes its non-empty descriptive columns. Status and generated columns
// are never touched.
func (s *Store) Upsert(ctx context.Context, app *Application) (*Application, error) {
	if app.CompanyName == "" || app.JobTitle == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
			"company name and job title are required", nil)
	}

	row := Application{
		CompanyName:    app.CompanyName,
		JobTitle:       app.JobTitle,
		Link:           app.Link,
		JobDescription: app.JobDescription,
		CompanyMission: app.CompanyMission,
		CompanyValues:  app.CompanyValues,
		RecentNews:     app.RecentNews,
	}

	updates := make(clause.Set, 0, len(descriptiveColumns))
	for _, col := range descriptiveColumns {
		updates = append(updates, clause.Assignment{
			Column: clause.Column{Name: col},
			Value:  gorm.Expr(fmt.Sprintf("COALESCE(NULLIF(excluded.%[1]s, ''), job_applications.%[1]s)", col)),
		})
	}

	err := s.db.WithContext(ctx).
		Select("company_name", "job_title", "link", "job_description", "company_mission", "company_values", "recent_news").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_name"}, {Name: "job_title"}},
			DoUpdates: updates,
		}).
		Create(&row).Error
	if err != nil {
		return nil, apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to upsert application", err).
			WithContext("company", app.CompanyName).
			WithContext("title", app.JobTitle)
	}

	return s.getByKey(ctx, app.CompanyName, app.JobTitle)
}

func (s *Store) getByKey(ctx context.Context, company, title string) (*Application, error) {
	var app Application
	err := s.db.WithContext(ctx).
		Where("company_name = ? AND job_title = ?", company, title).
		First(&app).Error
	if err != nil {
		return nil, apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to reload application", err).
			WithContext("company", company).
			WithContext("title", title)
	}
	return &app, nil
}

// UpdateFields writes fields to record id only while its status is still
// expected. Zero matched rows means a mismatch or a missing record.
func (s *Store) UpdateFields(ctx context.Context, id int64, expected workflow.Status, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	values := make(map[string]any, len(fields))
	for col, v := range fields {
		values[col] = columnValue(v)
	}

	res := s.db.WithContext(ctx).
		Model(&Application{}).
		Where("job_application_id = ? AND status = ?", id, string(expected)).
		Updates(values)
	if res.Error != nil {
		return apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to update application", res.Error).
			WithContext("id", id)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return apperrors.NewValidationError(apperrors.ErrCodeStatusMismatch,
		fmt.Sprintf("application %d is at %q, expected %q", id, current.Status, expected), ErrStatusMismatch).
		WithContext("id", id)
}

// UpdateStage checks that stage may write fields to a record at current,
// then applies them under the same status guard.
func (s *Store) UpdateStage(ctx context.Context, stage workflow.Stage, id int64, current workflow.Status, fields map[string]any) error {
	if err := workflow.CheckWrite(stage, current, fields); err != nil {
		return err
	}
	return s.UpdateFields(ctx, id, current, fields)
}

// MarkApplied records the date an application was submitted.
func (s *Store) MarkApplied(ctx context.Context, id int64, day time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&Application{}).
		Where("job_application_id = ?", id).
		Update("date_applied", Date(day))
	if res.Error != nil {
		return apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to mark application applied", res.Error).
			WithContext("id", id)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

// ConfigGet reads an operator setting. ok is false when the key is absent.
func (s *Store) ConfigGet(ctx context.Context, key string) (string, bool, error) {
	var entry ConfigEntry
	err := s.db.WithContext(ctx).Where(`"key" = ?`, key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Info("No config value found", "key", key)
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to read config", err).
			WithContext("key", key)
	}
	return entry.Value, true, nil
}

// ConfigSet stores an operator setting, replacing any existing value.
func (s *Store) ConfigSet(ctx context.Context, key, value string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&ConfigEntry{Key: key, Value: value}).Error
	if err != nil {
		return apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to write config", err).
			WithContext("key", key)
	}
	return nil
}

// ConfigKeys lists stored setting names.
func (s *Store) ConfigKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&ConfigEntry{}).Order("key").Pluck("key", &keys).Error; err != nil {
		return nil, apperrors.NewStoreError(apperrors.ErrCodeDatabase, "failed to list config keys", err)
	}
	return keys, nil
}

func notFound(id int64) error {
	return apperrors.NewStoreError(apperrors.ErrCodeRecordNotFound,
		fmt.Sprintf("application %d not found", id), ErrNotFound).
		WithContext("id", id)
}

// columnValue flattens typed and pointer values into driver-friendly ones.
func columnValue(v any) any {
	switch x := v.(type) {
	case workflow.Status:
		return string(x)
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *string:
		if x == nil {
			return nil
		}
		return *x
	}
	return v
}
