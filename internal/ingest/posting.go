// Package ingest loads job postings from YAML files into the record store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/observability"
	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/utils"

	"gopkg.in/yaml.v3"
)

// Posting is one job posting document. A file may hold several documents
// separated by "---".
type Posting struct {
	Company     string `yaml:"company"`
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Mission     string `yaml:"mission"`
	Values      string `yaml:"values"`
	RecentNews  string `yaml:"recentNews"`
}

// Application converts the posting to a record for upsert.
func (p Posting) Application() *store.Application {
	return &store.Application{
		CompanyName:    strings.TrimSpace(p.Company),
		JobTitle:       strings.TrimSpace(p.Title),
		Link:           strings.TrimSpace(p.Link),
		JobDescription: strings.TrimSpace(p.Description),
		CompanyMission: strings.TrimSpace(p.Mission),
		CompanyValues:  strings.TrimSpace(p.Values),
		RecentNews:     strings.TrimSpace(p.RecentNews),
	}
}

// ParsePostings decodes every YAML document in r. Empty documents are skipped.
func ParsePostings(r io.Reader) ([]Posting, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var postings []Posting
	for n := 1; ; n++ {
		var p Posting
		err := dec.Decode(&p)
		if errors.Is(err, io.EOF) {
			return postings, nil
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", n, err)
		}
		if p == (Posting{}) {
			continue
		}
		if strings.TrimSpace(p.Company) == "" || strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("document %d: company and title are required", n)
		}
		postings = append(postings, p)
	}
}

// Upserter is the store operation ingestion needs.
type Upserter interface {
	Upsert(ctx context.Context, app *store.Application) (*store.Application, error)
}

// Ingester writes postings to the store. Upserts never change status.
type Ingester struct {
	store   Upserter
	metrics *observability.Metrics
	logger  *apperrors.Logger
}

func New(s Upserter, metrics *observability.Metrics, logger *apperrors.Logger) *Ingester {
	return &Ingester{store: s, metrics: metrics, logger: logger}
}

// IngestFile upserts every posting in one YAML file.
func (i *Ingester) IngestFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			fmt.Sprintf("cannot open posting file %s", path), err)
	}
	defer f.Close()

	postings, err := ParsePostings(f)
	if err != nil {
		return 0, apperrors.NewValidationError(apperrors.ErrCodeInvalidFormat,
			fmt.Sprintf("invalid posting file %s", path), err)
	}

	count := 0
	for _, p := range postings {
		app, err := i.store.Upsert(ctx, p.Application())
		if err != nil {
			i.metrics.RecordIngested(ctx, "file", count)
			return count, err
		}
		count++
		i.logger.Info("Ingested posting",
			"id", app.ID,
			"company", app.CompanyName,
			"title", app.JobTitle,
			"status", string(app.Status),
			"file", path)
	}

	i.metrics.RecordIngested(ctx, "file", count)
	return count, nil
}

// IngestPath ingests a single file, or every posting file directly inside a
// directory in name order.
func (i *Ingester) IngestPath(ctx context.Context, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, apperrors.NewIOError(apperrors.ErrCodeFileNotFound,
			fmt.Sprintf("cannot access %s", path), err)
	}
	if !info.IsDir() {
		return i.IngestFile(ctx, path)
	}

	files, err := PostingFiles(path)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, file := range files {
		n, err := i.IngestFile(ctx, file)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// PostingFiles lists the .yaml and .yml files directly inside dir.
func PostingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			fmt.Sprintf("cannot read directory %s", dir), err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && utils.IsPostingFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
