// Package importer materializes translated intents in the destination team
// and drives the per-entry import pipeline.
package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mtakada173/kibela-to-kibela/internal/apperr"
	"github.com/mtakada173/kibela-to-kibela/internal/kibela"
	"github.com/mtakada173/kibela-to-kibela/internal/models"
	"github.com/mtakada173/kibela-to-kibela/internal/resolve"
	"github.com/mtakada173/kibela-to-kibela/internal/translate"
)

// Executor turns intents into destination entities. In apply mode it
// resolves dependencies and issues the real mutations; in simulate mode it
// synthesizes placeholder identities without touching the network, so dry
// runs produce the same record shapes as real runs.
type Executor struct {
	client   *kibela.Client
	resolver *resolve.Resolver
	apply    bool
}

// NewExecutor creates an executor. client and resolver may be nil when
// apply is false; simulate mode never uses them.
func NewExecutor(client *kibela.Client, resolver *resolve.Resolver, apply bool) *Executor {
	return &Executor{client: client, resolver: resolver, apply: apply}
}

// MaterializeAttachment uploads one attachment, or fabricates one in
// simulate mode.
func (e *Executor) MaterializeAttachment(ctx context.Context, in *translate.AttachmentIntent) (models.Attachment, error) {
	if !e.apply {
		id := uuid.NewString()
		return models.Attachment{ID: id, Path: "/attachments/" + id}, nil
	}

	attachment, err := e.client.UploadAttachment(ctx, in.Name, in.Data)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("%w: attachment %s: %v", apperr.ErrRemote, in.Name, err)
	}
	return attachment, nil
}

// MaterializeNote creates one note. In apply mode the note's author and
// groups are resolved first so the creation only ever references entities
// that already exist in the destination.
func (e *Executor) MaterializeNote(ctx context.Context, in *translate.NoteIntent) (models.Note, error) {
	if !e.apply {
		id := uuid.NewString()
		return models.Note{
			ID:          id,
			Path:        "/notes/" + id,
			Author:      models.Author{Account: in.AuthorAccount},
			Title:       in.Title,
			Content:     in.Content,
			FolderName:  in.FolderName,
			PublishedAt: in.PublishedAt,
		}, nil
	}

	author, err := e.resolver.Author(ctx, in.AuthorAccount)
	if err != nil {
		return models.Note{}, err
	}
	groupIDs := make([]string, 0, len(in.GroupNames))
	for _, name := range in.GroupNames {
		group, err := e.resolver.Group(ctx, name)
		if err != nil {
			return models.Note{}, err
		}
		groupIDs = append(groupIDs, group.ID)
	}

	id, path, err := e.client.CreateNote(ctx, kibela.CreateNoteInput{
		Title:       in.Title,
		Content:     in.Content,
		Coediting:   true,
		GroupIDs:    groupIDs,
		FolderName:  in.FolderName,
		AuthorID:    author.ID,
		PublishedAt: in.PublishedAt,
	})
	if err != nil {
		return models.Note{}, fmt.Errorf("%w: note %q: %v", apperr.ErrRemote, in.Title, err)
	}

	return models.Note{
		ID:          id,
		Path:        path,
		Author:      author,
		Title:       in.Title,
		Content:     in.Content,
		FolderName:  in.FolderName,
		PublishedAt: in.PublishedAt,
	}, nil
}

// MaterializeComment creates one comment on an already-created note.
func (e *Executor) MaterializeComment(ctx context.Context, note models.Note, in translate.CommentIntent) (models.Comment, error) {
	if !e.apply {
		id := uuid.NewString()
		return models.Comment{
			ID:          id,
			Path:        fmt.Sprintf("%s#comment_%s", note.Path, id),
			Author:      models.Author{Account: in.AuthorAccount},
			Content:     in.Content,
			PublishedAt: in.PublishedAt,
		}, nil
	}

	author, err := e.resolver.Author(ctx, in.AuthorAccount)
	if err != nil {
		return models.Comment{}, err
	}

	id, path, err := e.client.CreateComment(ctx, kibela.CreateCommentInput{
		CommentableID: note.ID,
		Content:       in.Content,
		AuthorID:      author.ID,
		PublishedAt:   in.PublishedAt,
	})
	if err != nil {
		return models.Comment{}, fmt.Errorf("%w: comment on %s: %v", apperr.ErrRemote, note.Path, err)
	}

	return models.Comment{
		ID:          id,
		Path:        path,
		Author:      author,
		Content:     in.Content,
		PublishedAt: in.PublishedAt,
	}, nil
}
