// Package migrate performs the one-shot copy of the legacy SQLite content
// database into the document store. It runs sequentially, parents before
// the posts that name them, isolating per-row failures so a bad row never
// aborts the run. Only the destination connection is retried; row writes
// are not, so re-running against a populated destination reports duplicate
// slugs as failures rather than inserting twice.
package migrate

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/northbeam/studiocms/store"
)

// Failure records one row that could not be migrated.
type Failure struct {
	Name   string
	Reason string
}

// EntityReport totals one migration phase.
type EntityReport struct {
	Attempted int
	Migrated  int
	Failed    int
	Failures  []Failure
}

func (r *EntityReport) ok() {
	r.Attempted++
	r.Migrated++
}

func (r *EntityReport) fail(name string, err error) {
	r.Attempted++
	r.Failed++
	r.Failures = append(r.Failures, Failure{Name: name, Reason: err.Error()})
}

// Report is the terminal summary of a full run.
type Report struct {
	Authors    EntityReport
	Categories EntityReport
	Tags       EntityReport
	Media      EntityReport
	Posts      EntityReport
}

// Write prints the per-entity totals and the itemized failure list.
func (r *Report) Write(w io.Writer) {
	sections := []struct {
		name   string
		report EntityReport
	}{
		{"authors", r.Authors},
		{"categories", r.Categories},
		{"tags", r.Tags},
		{"media", r.Media},
		{"posts", r.Posts},
	}
	for _, s := range sections {
		fmt.Fprintf(w, "%-12s attempted: %d  migrated: %d  failed: %d\n",
			s.name, s.report.Attempted, s.report.Migrated, s.report.Failed)
	}
	for _, s := range sections {
		for _, f := range s.report.Failures {
			fmt.Fprintf(w, "  %s %q: %s\n", s.name, f.Name, f.Reason)
		}
	}
}

// Migrator copies rows from a legacy Source into the content store.
type Migrator struct {
	src    *Source
	dst    *store.Store
	logger *slog.Logger
}

// New builds a Migrator. Both connections must already be open.
func New(src *Source, dst *store.Store, logger *slog.Logger) *Migrator {
	return &Migrator{src: src, dst: dst, logger: logger}
}

// Run copies everything in phase order, then fixes up the persisted post
// counters. A phase that cannot read its source rows at all stops the run;
// individual row failures do not.
func (m *Migrator) Run() (*Report, error) {
	report := &Report{}

	if err := m.migrateAuthors(&report.Authors); err != nil {
		return report, err
	}
	if err := m.migrateCategories(&report.Categories); err != nil {
		return report, err
	}
	if err := m.migrateTags(&report.Tags); err != nil {
		return report, err
	}
	if err := m.migrateMedia(&report.Media); err != nil {
		return report, err
	}
	if err := m.migratePosts(&report.Posts); err != nil {
		return report, err
	}

	if err := m.fixupCounts(); err != nil {
		return report, fmt.Errorf("counter fix-up: %w", err)
	}
	return report, nil
}

func (m *Migrator) migrateAuthors(report *EntityReport) error {
	authors, err := m.src.Authors()
	if err != nil {
		return fmt.Errorf("read authors: %w", err)
	}
	for _, a := range authors {
		_, err := m.dst.CreateAuthor(&store.Author{
			Name:     a.Name,
			Bio:      a.Bio,
			Avatar:   a.Avatar,
			Email:    a.Email,
			Twitter:  a.Twitter,
			LinkedIn: a.LinkedIn,
			GitHub:   a.GitHub,
			Website:  a.Website,
		})
		if err != nil {
			m.logger.Warn("author not migrated", slog.String("name", a.Name), slog.String("error", err.Error()))
			report.fail(a.Name, err)
			continue
		}
		report.ok()
	}
	return nil
}

func (m *Migrator) migrateCategories(report *EntityReport) error {
	categories, err := m.src.Categories()
	if err != nil {
		return fmt.Errorf("read categories: %w", err)
	}
	for _, c := range categories {
		_, err := m.dst.CreateCategory(&store.Category{
			Name:        c.Name,
			Description: c.Description,
			Color:       c.Color,
			Icon:        c.Icon,
			Order:       c.SortOrder,
		})
		if err != nil {
			m.logger.Warn("category not migrated", slog.String("name", c.Name), slog.String("error", err.Error()))
			report.fail(c.Name, err)
			continue
		}
		report.ok()
	}
	return nil
}

func (m *Migrator) migrateTags(report *EntityReport) error {
	tags, err := m.src.Tags()
	if err != nil {
		return fmt.Errorf("read tags: %w", err)
	}
	for _, name := range tags {
		if _, err := m.dst.CreateTag(&store.Tag{Name: name}); err != nil {
			m.logger.Warn("tag not migrated", slog.String("name", name), slog.String("error", err.Error()))
			report.fail(name, err)
			continue
		}
		report.ok()
	}
	return nil
}

func (m *Migrator) migrateMedia(report *EntityReport) error {
	media, err := m.src.Media()
	if err != nil {
		return fmt.Errorf("read media: %w", err)
	}
	for _, sm := range media {
		_, err := m.dst.CreateMedia(&store.Media{
			Filename:     sm.Filename,
			OriginalName: sm.OriginalName,
			URL:          sm.URL,
			MimeType:     sm.MimeType,
			Size:         sm.Size,
			Width:        sm.Width,
			Height:       sm.Height,
			Alt:          sm.Alt,
			Caption:      sm.Caption,
			Backend:      "local",
		})
		if err != nil {
			m.logger.Warn("media not migrated", slog.String("filename", sm.Filename), slog.String("error", err.Error()))
			report.fail(sm.Filename, err)
			continue
		}
		report.ok()
	}
	return nil
}

func (m *Migrator) migratePosts(report *EntityReport) error {
	posts, err := m.src.Posts()
	if err != nil {
		return fmt.Errorf("read posts: %w", err)
	}
	for _, sp := range posts {
		_, err := m.dst.CreatePost(&store.Post{
			Slug:           sp.Slug,
			Title:          sp.Title,
			Content:        sp.Content,
			Excerpt:        sp.Excerpt,
			PublishedAt:    sp.PublishedTime(),
			Author:         sp.Author,
			AuthorImage:    sp.AuthorImage,
			CoverImage:     sp.CoverImage,
			Category:       sp.Category,
			Tags:           sp.Tags,
			Draft:          sp.Draft,
			Featured:       sp.Featured,
			SEOTitle:       sp.SEOTitle,
			SEODescription: sp.SEODesc,
			SEOKeywords:    sp.SEOKeywords,
			SocialImage:    sp.SocialImage,
		})
		if err != nil {
			m.logger.Warn("post not migrated", slog.String("title", sp.Title), slog.String("error", err.Error()))
			report.fail(sp.Title, err)
			continue
		}
		report.ok()
	}
	return nil
}

// fixupCounts writes the derived post counts into the persisted postCount
// fields. This is the one code path that maintains the stored counters; the
// live read paths derive counts on the fly. The pass is not transactional,
// so a crash mid-way leaves partial counts, which the next run repairs.
func (m *Migrator) fixupCounts() error {
	categories, err := m.dst.ListCategories()
	if err != nil {
		return err
	}
	for _, c := range categories {
		if _, err := m.dst.UpdateCategory(c.Slug, map[string]any{"postCount": c.PostCount}); err != nil {
			return fmt.Errorf("category %s: %w", c.Slug, err)
		}
	}

	tags, err := m.dst.ListTags()
	if err != nil {
		return err
	}
	for _, t := range tags {
		if _, err := m.dst.UpdateTag(t.Slug, map[string]any{"postCount": t.PostCount}); err != nil {
			return fmt.Errorf("tag %s: %w", t.Slug, err)
		}
	}

	authors, err := m.dst.ListAuthors()
	if err != nil {
		return err
	}
	for _, a := range authors {
		if _, err := m.dst.UpdateAuthor(a.Slug, map[string]any{"postCount": a.PostCount}); err != nil {
			return fmt.Errorf("author %s: %w", a.Slug, err)
		}
	}
	return nil
}
