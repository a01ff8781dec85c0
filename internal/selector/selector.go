// Package selector runs the simulation-target selection pipeline:
// discovery, selection validation, confirmation, retention, backup, toggle and report.
//
// Nothing under the working directory changes before the backup generation has
// been written. A context is honoured until the toggle phase starts; after that
// the run always completes.
package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nvandessel/simselect/internal/backup"
	"github.com/nvandessel/simselect/internal/config"
	"github.com/nvandessel/simselect/internal/document"
	"github.com/nvandessel/simselect/internal/fsutil"
	"github.com/nvandessel/simselect/internal/logging"
	"github.com/nvandessel/simselect/internal/toggle"
)

// Action names what a run does to the working set.
type Action string

const (
	ActionSelect  Action = "select"
	ActionBackup  Action = "backup"
	ActionRestore Action = "restore"
)

// Plan describes a pending mutation so a Confirmer can decide on it.
type Plan struct {
	Action      Action   `json:"action"`
	Target      string   `json:"target,omitempty"`
	RestoreFrom int      `json:"restore_from,omitempty"`
	Documents   []string `json:"documents"`
	// NextGeneration is the id the backup will receive.
	NextGeneration int `json:"next_generation"`
	// Evict is the generation retention will remove, if any.
	Evict *int `json:"evict,omitempty"`
}

// Confirmer approves or rejects a Plan before anything is modified.
// Returning false cancels the run with no changes.
type Confirmer interface {
	Confirm(ctx context.Context, plan Plan) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, plan Plan) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, plan Plan) (bool, error) {
	return f(ctx, plan)
}

// AutoConfirm approves every plan.
var AutoConfirm Confirmer = ConfirmFunc(func(context.Context, Plan) (bool, error) { return true, nil })

// Outcome is the applied state reported at the end of a run.
type Outcome string

const (
	OutcomeFull      Outcome = "full"
	OutcomePartial   Outcome = "partial"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeDryRun    Outcome = "dry-run"
	OutcomeAborted   Outcome = "aborted"
)

// Failure is a per-document write failure.
type Failure struct {
	Document string `json:"document"`
	Error    string `json:"error"`
}

// Report summarises one run.
type Report struct {
	RunID       string                  `json:"run_id"`
	Action      Action                  `json:"action"`
	Target      string                  `json:"target,omitempty"`
	RestoreFrom int                     `json:"restore_from,omitempty"`
	Documents   int                     `json:"documents"`
	Occurrences int                     `json:"occurrences"`
	Changed     int                     `json:"changed"`
	Generation  int                     `json:"generation,omitempty"`
	Evicted     *int                    `json:"evicted,omitempty"`
	Results     []toggle.DocumentResult `json:"results,omitempty"`
	Failures    []Failure               `json:"failures,omitempty"`
	Outcome     Outcome                 `json:"outcome"`
	Duration    time.Duration           `json:"duration_ns"`
}

// Request is the input of a select run.
type Request struct {
	Target string
	// DryRun computes the rewrite without retention, backup or writes.
	DryRun bool
}

// Engine ties discovery, backups and the toggler to one working directory.
type Engine struct {
	fs        fsutil.FS
	workDir   string
	cfg       *config.Config
	backups   *backup.Manager
	toggler   *toggle.Toggler
	confirmer Confirmer
	logger    *slog.Logger
	journal   *logging.Journal
	newRunID  func() string
}

// New creates an Engine for workDir. cfg must already be validated.
// Without a Confirmer every plan is approved.
func New(fsys fsutil.FS, workDir string, cfg *config.Config) *Engine {
	return &Engine{
		fs:        fsys,
		workDir:   workDir,
		cfg:       cfg,
		backups:   backup.NewManager(fsys, cfg.BackupRoot(workDir), cfg.Backup.Prefix),
		toggler:   toggle.New(fsys, cfg.Attribute),
		confirmer: AutoConfirm,
		newRunID:  uuid.NewString,
	}
}

// SetConfirmer installs the confirmation gate. nil approves everything.
func (e *Engine) SetConfirmer(c Confirmer) {
	if c == nil {
		c = AutoConfirm
	}
	e.confirmer = c
}

// SetLogger sets the structured logger and run journal for observability.
func (e *Engine) SetLogger(logger *slog.Logger, journal *logging.Journal) {
	e.logger = logger
	e.journal = journal
}

// SetRunIDFunc replaces the run id generator. The CLI uses it to share one id
// between the journal and every report of an invocation.
func (e *Engine) SetRunIDFunc(f func() string) {
	if f == nil {
		f = uuid.NewString
	}
	e.newRunID = f
}

// Backups returns the generation manager for read-only listing and verification.
func (e *Engine) Backups() *backup.Manager {
	return e.backups
}

// WorkDir returns the working directory.
func (e *Engine) WorkDir() string {
	return e.workDir
}

// Discover returns the current document set.
func (e *Engine) Discover() (document.Set, error) {
	set, err := document.Discover(e.fs, e.workDir, e.cfg.Documents.Extension)
	if err != nil {
		if errors.Is(err, document.ErrNoDocuments) {
			return document.Set{}, &Error{Kind: KindNoDocumentsFound, Err: err}
		}
		return document.Set{}, fmt.Errorf("discovering documents: %w", err)
	}
	return set, nil
}

// Status reports the attribute state of every document without modifying anything.
func (e *Engine) Status() (toggle.Status, error) {
	set, err := e.Discover()
	if err != nil {
		return toggle.Status{}, err
	}
	return e.toggler.Inspect(set)
}

// Run selects req.Target as the only simulated document.
//
// The returned Report is never nil; on a fatal error it says how far the run got.
// A cancelled run returns an error of kind UserCancelled and leaves everything
// untouched. Write failures during toggling return an error of kind
// DocumentWriteFailed together with a partial Report.
func (e *Engine) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: e.newRunID(), Action: ActionSelect}
	e.event("run_start", map[string]any{"action": ActionSelect, "target": req.Target, "dry_run": req.DryRun})

	set, err := e.Discover()
	if err != nil {
		return e.fail(report, err)
	}
	report.Documents = set.Len()

	target, err := set.Select(req.Target)
	if err != nil {
		return e.fail(report, &Error{Kind: KindTargetNotFound, Document: req.Target, Err: err})
	}
	report.Target = target

	if req.DryRun {
		res := e.toggler.Preview(set, target)
		e.fillToggle(report, res)
		report.Outcome = OutcomeDryRun
		report.Duration = time.Since(start)
		e.finish(report)
		return report, nil
	}

	existing, err := e.backups.ListGenerations()
	if err != nil {
		return e.fail(report, &Error{Kind: KindBackupWriteFailed, Err: err})
	}

	plan := e.plan(ActionSelect, set, existing)
	plan.Target = target
	if err := e.confirm(ctx, plan); err != nil {
		return e.fail(report, err)
	}

	if err := e.snapshot(ctx, set, existing, report, backup.CreateOptions{Reason: string(ActionSelect), Target: target}); err != nil {
		return e.fail(report, err)
	}

	// Past this point cancellation is ignored.
	res := e.toggler.Apply(set, target)
	e.fillToggle(report, res)
	report.Duration = time.Since(start)

	var writeErr error
	if failed := res.Failed(); len(failed) > 0 {
		report.Outcome = OutcomePartial
		writeErr = documentWriteError(failed)
	} else {
		report.Outcome = OutcomeFull
	}
	e.finish(report)
	return report, writeErr
}

// Backup applies retention and writes a new generation without toggling anything.
func (e *Engine) Backup(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: e.newRunID(), Action: ActionBackup}
	e.event("run_start", map[string]any{"action": ActionBackup})

	set, err := e.Discover()
	if err != nil {
		return e.fail(report, err)
	}
	report.Documents = set.Len()

	existing, err := e.backups.ListGenerations()
	if err != nil {
		return e.fail(report, &Error{Kind: KindBackupWriteFailed, Err: err})
	}
	if err := e.snapshot(ctx, set, existing, report, backup.CreateOptions{Reason: string(ActionBackup)}); err != nil {
		return e.fail(report, err)
	}

	report.Outcome = OutcomeFull
	report.Duration = time.Since(start)
	e.finish(report)
	return report, nil
}

// Restore copies every document stored in generation id back into the working
// directory. The current state is backed up first, with the usual retention.
// Documents that are not part of the generation are left alone.
func (e *Engine) Restore(ctx context.Context, id int) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: e.newRunID(), Action: ActionRestore, RestoreFrom: id}
	e.event("run_start", map[string]any{"action": ActionRestore, "restore_from": id})

	gen, err := e.backups.Get(id)
	if err != nil {
		if errors.Is(err, backup.ErrGenerationNotFound) {
			return e.fail(report, &Error{Kind: KindGenerationNotFound, Err: err})
		}
		return e.fail(report, err)
	}

	// Loaded before retention runs, since gen may be the one evicted.
	stored, err := e.backups.LoadDocuments(gen, e.cfg.Documents.Extension)
	if err != nil {
		return e.fail(report, err)
	}
	if len(stored) == 0 {
		return e.fail(report, &Error{Kind: KindNoDocumentsFound, Err: fmt.Errorf("generation %d holds no documents", id)})
	}
	names := make([]string, 0, len(stored))
	for name := range stored {
		names = append(names, name)
	}
	restoreSet := document.NewSet(e.workDir, names)
	report.Documents = restoreSet.Len()

	// The working directory may have lost every document; then there is nothing to back up.
	current, err := e.Discover()
	hasCurrent := true
	if err != nil {
		if !errors.Is(err, ErrNoDocumentsFound) {
			return e.fail(report, err)
		}
		hasCurrent = false
	}

	existing, err := e.backups.ListGenerations()
	if err != nil {
		return e.fail(report, &Error{Kind: KindBackupWriteFailed, Err: err})
	}

	plan := e.plan(ActionRestore, restoreSet, existing)
	plan.RestoreFrom = id
	if err := e.confirm(ctx, plan); err != nil {
		return e.fail(report, err)
	}

	if hasCurrent {
		opts := backup.CreateOptions{Reason: fmt.Sprintf("%s %d", ActionRestore, id)}
		if err := e.snapshot(ctx, current, existing, report, opts); err != nil {
			return e.fail(report, err)
		}
	} else if err := ctx.Err(); err != nil {
		return e.fail(report, fmt.Errorf("aborted before restore: %w", err))
	}

	var failed []toggle.DocumentResult
	for _, name := range restoreSet.Names() {
		dr := toggle.DocumentResult{Name: name}
		if err := e.fs.WriteFile(restoreSet.Path(name), stored[name]); err != nil {
			dr.Err = fmt.Errorf("writing %s: %w", name, err)
			failed = append(failed, dr)
		}
		report.Results = append(report.Results, dr)
		e.trace(dr)
	}
	report.Duration = time.Since(start)

	var writeErr error
	if len(failed) > 0 {
		report.Outcome = OutcomePartial
		report.Failures = failures(failed)
		writeErr = documentWriteError(failed)
	} else {
		report.Outcome = OutcomeFull
	}
	e.finish(report)
	return report, writeErr
}

// plan describes the retention and backup a mutation of set would perform.
func (e *Engine) plan(action Action, set document.Set, existing []backup.Generation) Plan {
	p := Plan{
		Action:         action,
		Documents:      set.Names(),
		NextGeneration: backup.NextID(existing),
	}
	if victim, ok := e.policy().Evict(existing); ok {
		id := victim.ID
		p.Evict = &id
	}
	return p
}

func (e *Engine) policy() backup.CountPolicy {
	return backup.CountPolicy{MaxCount: e.cfg.Backup.MaxGenerations}
}

func (e *Engine) confirm(ctx context.Context, plan Plan) error {
	ok, err := e.confirmer.Confirm(ctx, plan)
	if err != nil {
		if errors.Is(err, ErrUserCancelled) {
			return err
		}
		return fmt.Errorf("confirmation: %w", err)
	}
	if !ok {
		return &Error{Kind: KindUserCancelled, Err: errors.New("declined at confirmation")}
	}
	return nil
}

// snapshot runs retention then writes a new generation of set. existing is the
// listing taken before retention, so the new id is never one that was issued.
func (e *Engine) snapshot(ctx context.Context, set document.Set, existing []backup.Generation, report *Report, opts backup.CreateOptions) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("aborted before backup: %w", err)
	}

	evicted, err := e.backups.EnforceRetention(existing, e.policy())
	if err != nil {
		return &Error{Kind: KindBackupWriteFailed, Err: err}
	}
	if evicted != nil {
		id := evicted.ID
		report.Evicted = &id
		e.debug("generation evicted", "id", id)
		e.event("retention", map[string]any{"evicted": id, "cap": e.cfg.Backup.MaxGenerations})
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("aborted before backup: %w", err)
	}

	opts.RunID = report.RunID
	gen, err := e.backups.CreateGeneration(set, existing, opts)
	if err != nil {
		return &Error{Kind: KindBackupWriteFailed, Err: err}
	}
	report.Generation = gen.ID
	e.debug("generation created", "id", gen.ID, "path", filepath.Base(gen.Path), "documents", set.Len())
	e.event("generation", map[string]any{"id": gen.ID, "documents": set.Len()})

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("aborted after backup %d: %w", gen.ID, err)
	}
	return nil
}

func (e *Engine) fillToggle(report *Report, res toggle.Result) {
	report.Results = res.Documents
	report.Occurrences = res.Total.Occurrences
	report.Changed = res.Total.Changed
	report.Failures = failures(res.Failed())
	for _, dr := range res.Documents {
		e.trace(dr)
	}
}

func failures(failed []toggle.DocumentResult) []Failure {
	var out []Failure
	for _, dr := range failed {
		out = append(out, Failure{Document: dr.Name, Error: dr.Err.Error()})
	}
	return out
}

func documentWriteError(failed []toggle.DocumentResult) error {
	if len(failed) == 1 {
		return &Error{Kind: KindDocumentWriteFailed, Document: failed[0].Name, Err: failed[0].Err}
	}
	errs := make([]error, 0, len(failed))
	for _, dr := range failed {
		errs = append(errs, dr.Err)
	}
	return &Error{Kind: KindDocumentWriteFailed, Err: fmt.Errorf("%d documents: %w", len(failed), errors.Join(errs...))}
}

func (e *Engine) fail(report *Report, err error) (*Report, error) {
	report.Outcome = OutcomeAborted
	if errors.Is(err, ErrUserCancelled) {
		report.Outcome = OutcomeCancelled
	}
	kind, _ := KindOf(err)
	if e.logger != nil {
		e.logger.Debug("run stopped", "action", report.Action, "kind", kind, "error", err)
	}
	e.event("run_end", map[string]any{"action": report.Action, "outcome": report.Outcome, "kind": kind, "error": err.Error()})
	return report, err
}

func (e *Engine) finish(report *Report) {
	if e.logger != nil {
		e.logger.Debug("run finished",
			"action", report.Action,
			"outcome", report.Outcome,
			"documents", report.Documents,
			"occurrences", report.Occurrences,
			"changed", report.Changed,
			"generation", report.Generation,
			"duration", report.Duration)
	}
	e.event("run_end", map[string]any{
		"action":      report.Action,
		"outcome":     report.Outcome,
		"documents":   report.Documents,
		"occurrences": report.Occurrences,
		"changed":     report.Changed,
		"generation":  report.Generation,
		"failures":    len(report.Failures),
	})
}

func (e *Engine) trace(dr toggle.DocumentResult) {
	if e.logger != nil {
		e.logger.Log(context.Background(), logging.LevelTrace, "document processed",
			"name", dr.Name, "target", dr.Target, "occurrences", dr.Occurrences, "changed", dr.Changed, "error", dr.Err)
	}
	event := map[string]any{"name": dr.Name, "target": dr.Target, "occurrences": dr.Occurrences, "changed": dr.Changed}
	if dr.Err != nil {
		event["error"] = dr.Err.Error()
	}
	e.event("document", event)
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) event(name string, fields map[string]any) {
	if e.journal == nil {
		return
	}
	fields["event"] = name
	e.journal.Log(fields)
}
