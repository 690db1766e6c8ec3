// Package translate classifies export archive entries and turns them into
// typed creation intents. It extracts dependency keys (author accounts,
// group names, folder names) but never resolves them to destination
// entities; that happens at materialization time.
package translate

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/mtakada173/kibela-to-kibela/internal/apperr"
	"github.com/mtakada173/kibela-to-kibela/internal/parser"
)

var (
	attachmentRe = regexp.MustCompile(`^kibela-\w+-\d+/attachments/`)
	sourceIDRe   = regexp.MustCompile(`^[^-.]+`)
	// Folder is whatever sits between the content-type directory and the
	// file itself: kibela-$team-$seq/(notes|blogs|wikis)/[$folder/]$file
	folderRe  = regexp.MustCompile(`(?i)^[^/]+/(?:notes|blogs|wikis)/(?:(.+)/)?[^/]+$`)
	headingRe = regexp.MustCompile(`(?s)^# +([^\n]*)\n\n(.*)`)
)

// Intent is one translated archive entry, either *AttachmentIntent or
// *NoteIntent. A nil Intent with a nil error means the entry is skipped
// (draft note).
type Intent interface {
	isIntent()
}

// AttachmentIntent carries the raw bytes of one binary attachment.
type AttachmentIntent struct {
	Name string
	Data []byte
}

// NoteIntent carries everything needed to create one note, with its
// dependencies still in natural-key form.
type NoteIntent struct {
	Title         string
	Content       string
	AuthorAccount string
	GroupNames    []string
	FolderName    string
	PublishedAt   time.Time
	Comments      []CommentIntent
}

// CommentIntent is a pending comment on a NoteIntent, in source order.
type CommentIntent struct {
	AuthorAccount string
	Content       string
	PublishedAt   time.Time
}

func (*AttachmentIntent) isIntent() {}
func (*NoteIntent) isIntent()       {}

// IsAttachment reports whether an archive entry path lies in an archive's
// attachments directory.
func IsAttachment(entryPath string) bool {
	return attachmentRe.MatchString(entryPath)
}

// SourceID derives the stable source identifier from an entry path: the
// leading run of the basename up to the first hyphen or dot. It is the same
// across dry-run and apply runs, which is what makes log comparison work.
func SourceID(entryPath string) string {
	return sourceIDRe.FindString(path.Base(entryPath))
}

// FolderName extracts the folder portion of a content entry path, or ""
// when the file sits directly under the content-type directory.
func FolderName(entryPath string) string {
	m := folderRe.FindStringSubmatch(entryPath)
	if m == nil {
		return ""
	}
	return m[1]
}

// Translate classifies one archive entry. Attachment entries become an
// *AttachmentIntent; everything else is parsed as a Markdown note with
// front-matter. Draft notes (no non-empty published_at) yield (nil, nil).
func Translate(entryPath string, data []byte) (Intent, error) {
	if IsAttachment(entryPath) {
		return &AttachmentIntent{Name: path.Base(entryPath), Data: data}, nil
	}
	return translateNote(entryPath, data)
}

func translateNote(entryPath string, data []byte) (Intent, error) {
	doc, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrParse, entryPath, err)
	}

	m := headingRe.FindStringSubmatch(doc.Body)
	if m == nil {
		return nil, fmt.Errorf("%w: %s: body must start with a level-1 heading followed by a blank line", apperr.ErrParse, entryPath)
	}
	title, content := m[1], m[2]

	rawPublished, ok := doc.Attributes["published_at"]
	if !ok || isEmpty(rawPublished) {
		// Draft note, not imported.
		return nil, nil
	}
	publishedAt, err := toTime(rawPublished)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: published_at: %v", apperr.ErrParse, entryPath, err)
	}

	account, ok := doc.Attributes["author"].(string)
	if !ok || account == "" {
		return nil, fmt.Errorf("%w: %s: missing author", apperr.ErrParse, entryPath)
	}

	groups, err := toStrings(doc.Attributes["groups"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: groups: %v", apperr.ErrParse, entryPath, err)
	}

	comments, err := toComments(doc.Attributes["comments"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: comments: %v", apperr.ErrParse, entryPath, err)
	}

	return &NoteIntent{
		Title:         title,
		Content:       content,
		AuthorAccount: strings.TrimPrefix(account, "@"),
		GroupNames:    groups,
		FolderName:    FolderName(entryPath),
		PublishedAt:   publishedAt,
		Comments:      comments,
	}, nil
}

func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// toTime accepts both decoded YAML timestamps and Kibela's exported string
// form ("2006-01-02 15:04:05 MST").
func toTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range []string{
			"2006-01-02 15:04:05 MST",
			"2006-01-02 15:04:05 -0700",
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02",
		} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", t)
	default:
		return time.Time{}, fmt.Errorf("unexpected type %T", v)
	}
}

func toStrings(v interface{}) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

func toComments(v interface{}) ([]CommentIntent, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]CommentIntent, 0, len(items))
	for i, item := range items {
		attrs, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("comment %d: expected a mapping, got %T", i, item)
		}
		account, _ := attrs["author"].(string)
		if account == "" {
			return nil, fmt.Errorf("comment %d: missing author", i)
		}
		content, _ := attrs["content"].(string)
		publishedAt, err := toTime(attrs["published_at"])
		if err != nil {
			return nil, fmt.Errorf("comment %d: published_at: %v", i, err)
		}
		out = append(out, CommentIntent{
			AuthorAccount: strings.TrimPrefix(account, "@"),
			Content:       content,
			PublishedAt:   publishedAt,
		})
	}
	return out, nil
}
