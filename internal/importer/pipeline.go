package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtakada173/kibela-to-kibela/internal/archive"
	"github.com/mtakada173/kibela-to-kibela/internal/translate"
	"github.com/mtakada173/kibela-to-kibela/internal/txlog"
)

// Stats aggregates the outcome of one run.
type Stats struct {
	Entries   int
	DataBytes int64
	Succeeded int
	Failed    int
}

// Pipeline walks archives entry by entry: translate, materialize, record.
// A single entry's failure is logged and counted but never aborts the run;
// only archive-level errors and cancellation do.
type Pipeline struct {
	exec   *Executor
	log    *txlog.Log
	logger *slog.Logger
	apply  bool

	seq int
}

// NewPipeline creates a pipeline writing created-entity records to log.
func NewPipeline(exec *Executor, log *txlog.Log, logger *slog.Logger, apply bool) *Pipeline {
	return &Pipeline{exec: exec, log: log, logger: logger, apply: apply}
}

// Run processes the archives in the order given, entries within each
// archive in archive order.
func (p *Pipeline) Run(ctx context.Context, archives []string) (Stats, error) {
	var stats Stats

	label := "processing"
	if !p.apply {
		label = "processing (dry-run)"
	}

	for _, archivePath := range archives {
		err := archive.Walk(archivePath, func(e archive.Entry) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			p.seq++
			tag := fmt.Sprintf("%05d", p.seq)
			p.logger.Info(label,
				slog.String("seq", tag),
				slog.String("path", e.Path),
				slog.Int("size_kib", len(e.Data)/1024))

			stats.Entries++
			stats.DataBytes += int64(len(e.Data))

			created, skipped, err := p.processEntry(ctx, e)
			// Entities created before a mid-entry failure are already on
			// record, so they count either way.
			stats.Succeeded += created
			switch {
			case skipped:
				// Draft, not counted either way.
			case err != nil:
				p.logger.Error("entry failed",
					slog.String("seq", tag),
					slog.String("path", e.Path),
					slog.String("error", err.Error()))
				stats.Failed++
			}
			return nil
		})
		if err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// processEntry runs one entry through translate → materialize → record and
// returns how many destination entities were created and recorded. The
// note's record is appended before any of its comments are created, so a
// crash mid-entry never leaves an unrecorded note behind its comments.
func (p *Pipeline) processEntry(ctx context.Context, e archive.Entry) (created int, skipped bool, err error) {
	intent, err := translate.Translate(e.Path, e.Data)
	if err != nil {
		return 0, false, err
	}

	switch in := intent.(type) {
	case nil:
		return 0, true, nil

	case *translate.AttachmentIntent:
		attachment, err := p.exec.MaterializeAttachment(ctx, in)
		if err != nil {
			return 0, false, err
		}
		if err := p.log.Append(txlog.Record{
			Type:        txlog.TypeAttachment,
			File:        e.Path,
			SourceID:    translate.SourceID(e.Path),
			DestPath:    attachment.Path,
			DestRelayID: attachment.ID,
		}); err != nil {
			return 0, false, err
		}
		return 1, false, nil

	case *translate.NoteIntent:
		note, err := p.exec.MaterializeNote(ctx, in)
		if err != nil {
			return 0, false, err
		}
		if err := p.log.Append(txlog.Record{
			Type:        txlog.TypeNote,
			File:        e.Path,
			SourceID:    translate.SourceID(e.Path),
			DestPath:    note.Path,
			DestRelayID: note.ID,
			Content:     note.Content,
		}); err != nil {
			return 0, false, err
		}
		created = 1
		for _, ci := range in.Comments {
			comment, err := p.exec.MaterializeComment(ctx, note, ci)
			if err != nil {
				return created, false, err
			}
			if err := p.log.Append(txlog.Record{
				Type: txlog.TypeComment,
				File: e.Path,
				// The export carries no per-comment identifier, so the
				// note's source id stands in for it.
				SourceID:    translate.SourceID(e.Path),
				DestPath:    comment.Path,
				DestRelayID: comment.ID,
				Content:     comment.Content,
			}); err != nil {
				return created, false, err
			}
			created++
		}
		return created, false, nil

	default:
		return 0, false, fmt.Errorf("unknown intent %T for %s", intent, e.Path)
	}
}
