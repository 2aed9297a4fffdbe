package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/critree/internal/config"
	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/dgallion1/critree/internal/parser"
	"github.com/dgallion1/critree/internal/store"
)

// CriteriaStore persists tagged sections and import events.
type CriteriaStore interface {
	StartImport(ctx context.Context, studyID, source, contentHash string) (*store.ImportEvent, error)
	FinishImport(ctx context.Context, id, status string, lineCount int, errMsg string) error
	FindCompletedImport(ctx context.Context, studyID, contentHash string) (*store.ImportEvent, error)
	SaveSection(ctx context.Context, studyID, eventID string, kind criteria.SectionKind, lines []criteria.TaggedLine) (store.SaveResult, error)
	PruneStudy(ctx context.Context, studyID, keepEventID string) (int64, error)
}

// CriteriaMirror copies tagged sections into a secondary key tree.
type CriteriaMirror interface {
	ClearStudy(ctx context.Context, studyID string) error
	MirrorSection(ctx context.Context, studyID, source string, kind criteria.SectionKind, lines []criteria.TaggedLine) (int, error)
}

// Worker processes a single study import job.
type Worker struct {
	builder *criteria.Builder
	store   CriteriaStore
	mirror  CriteriaMirror // nil when mirroring is off
	stats   *LatencyStats
	log     *slog.Logger

	parserOpts         parser.Options
	maxConcurrentBuild int
	storeAttempts      int
	storeDelay         time.Duration
}

func NewWorker(st CriteriaStore, mirror CriteriaMirror, stats *LatencyStats, log *slog.Logger, cfg config.Config) *Worker {
	if stats == nil {
		stats = NewLatencyStats(time.Hour)
	}
	maxBuild := cfg.MaxConcurrentBuild
	if maxBuild <= 0 {
		maxBuild = 1
	}
	return &Worker{
		builder: criteria.NewBuilder(log),
		store:   st,
		mirror:  mirror,
		stats:   stats,
		log:     log,
		parserOpts: parser.Options{
			DefaultKind:       cfg.DefaultSectionKind,
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
		},
		maxConcurrentBuild: maxBuild,
		storeAttempts:      cfg.StoreMaxRetries,
		storeDelay:         cfg.StoreRetryDelay,
	}
}

// sectionResult is the outcome of building and storing one section.
type sectionResult struct {
	kind     criteria.SectionKind
	lines    int
	stored   int
	mirrored int
	err      error
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "study_id", job.StudyID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	}

	sections := doc.Merged()
	job.SetTotalSections(len(sections))
	if len(sections) == 0 {
		log.Warn("no criteria lines found")
		job.AddError("no criteria lines found")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	hash := ContentHashHex([]byte(flattenSections(sections)))
	job.SetContentHash(hash)

	// Phase 1.5: Dedup check
	if !job.Force {
		prev, err := w.store.FindCompletedImport(ctx, job.StudyID, hash)
		switch {
		case err == nil:
			log.Info("duplicate import, skipping", "import_event_id", prev.ID)
			job.SetImportEvent(prev.ID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("dedup check failed, proceeding", "error", err)
		}
	}

	var event *store.ImportEvent
	err = withRetry(ctx, log, "start import", w.storeAttempts, w.storeDelay, func() error {
		var err error
		event, err = w.store.StartImport(ctx, job.StudyID, job.Filename, hash)
		return err
	})
	if err != nil {
		log.Error("start import failed", "error", err)
		job.AddError(fmt.Sprintf("start import: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	job.SetImportEvent(event.ID)
	log = log.With("import_event_id", event.ID)
	source := "critree:" + event.ID

	if w.mirror != nil {
		if err := w.mirror.ClearStudy(ctx, job.StudyID); err != nil {
			log.Warn("mirror clear failed", "error", err)
		}
	}

	// Phase 2: Build and store each section with bounded concurrency.
	job.SetStatus(StatusBuilding, "building")
	results := make(chan sectionResult, len(sections))
	sem := make(chan struct{}, w.maxConcurrentBuild)

	for _, sec := range sections {
		sem <- struct{}{}
		go func(sec doctree.Section) {
			defer func() { <-sem }()
			results <- w.processSection(ctx, log, job, event.ID, source, sec)
		}(sec)
	}

	// Collect section results.
	var (
		stored    int
		hadErrors bool
		messages  []string
	)
	for range sections {
		r := <-results
		if r.err != nil {
			log.Error("section failed", "section", r.kind.String(), "error", r.err)
			msg := fmt.Sprintf("%s: %s", r.kind, r.err)
			job.AddError(msg)
			messages = append(messages, msg)
			hadErrors = true
			continue
		}
		stored += r.stored
	}
	log.Info("sections stored", "lines_stored", stored, "errors", hadErrors)

	status, jobStatus, phase := store.ImportCompleted, StatusCompleted, "done"
	switch {
	case hadErrors && stored > 0:
		status, jobStatus = store.ImportPartial, StatusPartial
	case hadErrors:
		status, jobStatus, phase = store.ImportFailed, StatusFailed, "storing"
	default:
		if n, err := w.store.PruneStudy(ctx, job.StudyID, event.ID); err != nil {
			log.Warn("prune of stale sections failed", "error", err)
		} else if n > 0 {
			log.Info("pruned stale sections", "rows", n)
		}
	}

	err = withRetry(ctx, log, "finish import", w.storeAttempts, w.storeDelay, func() error {
		return w.store.FinishImport(ctx, event.ID, status, stored, strings.Join(messages, "; "))
	})
	if err != nil {
		log.Error("finish import failed", "error", err)
		job.AddError(fmt.Sprintf("finish import: %s", err))
	}
	// The job reports done only once the import event is final.
	job.SetStatus(jobStatus, phase)
}

// processSection tags one section, persists it and mirrors it.
func (w *Worker) processSection(ctx context.Context, log *slog.Logger, job *Job, eventID, source string, sec doctree.Section) sectionResult {
	res := sectionResult{kind: sec.Kind}

	start := time.Now()
	lines, err := w.builder.Build(sec.Kind, sec.Lines)
	w.stats.Record(StageBuild, time.Since(start))
	if err != nil {
		res.err = fmt.Errorf("build: %w", err)
		return res
	}
	res.lines = len(lines)
	job.AddBuilt(len(lines))

	start = time.Now()
	err = withRetry(ctx, log, "save section", w.storeAttempts, w.storeDelay, func() error {
		saved, err := w.store.SaveSection(ctx, job.StudyID, eventID, sec.Kind, lines)
		if err != nil {
			return err
		}
		log.Debug("section saved", "section", sec.Kind.String(),
			"inserted", saved.Inserted, "updated", saved.Updated, "deleted", saved.Deleted)
		return nil
	})
	w.stats.Record(StageStore, time.Since(start))
	if err != nil {
		res.err = fmt.Errorf("store: %w", err)
		return res
	}
	res.stored = len(lines)

	if w.mirror != nil {
		start = time.Now()
		n, err := w.mirror.MirrorSection(ctx, job.StudyID, source, sec.Kind, lines)
		w.stats.Record(StageMirror, time.Since(start))
		if err != nil {
			// Mirror failures do not fail the section.
			log.Warn("mirror failed", "section", sec.Kind.String(), "error", err)
			job.AddError(fmt.Sprintf("mirror %s: %s", sec.Kind, err))
		}
		res.mirrored = n
	}

	job.AddStored(res.stored, res.mirrored)
	return res
}

// flattenSections renders section lines into a canonical string for hashing.
func flattenSections(sections []doctree.Section) string {
	var sb strings.Builder
	for _, s := range sections {
		sb.WriteString(s.Kind.String())
		sb.WriteByte('\n')
		for _, l := range s.Lines {
			sb.WriteString(strconv.Itoa(l.SequenceNumber))
			sb.WriteByte('\t')
			sb.WriteString(l.LeaderStyle)
			sb.WriteByte('\t')
			sb.WriteString(strconv.Itoa(l.IndentationDepth))
			sb.WriteByte('\t')
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
