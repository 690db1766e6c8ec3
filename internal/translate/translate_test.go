package translate

import (
	"errors"
	"testing"
	"time"

	"github.com/mtakada173/kibela-to-kibela/internal/apperr"
)

const publishedNote = `---
author: "@alice"
published_at: "2019-03-29 02:12:15 UTC"
groups:
  - Home
  - Engineering
comments:
  - author: "@bob"
    content: "first!"
    published_at: "2019-03-29 03:00:00 UTC"
  - author: "@carol"
    content: "second"
    published_at: "2019-03-29 04:00:00 UTC"
---
# My Title

Hello, world.
`

func TestIsAttachment(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"kibela-acme-1/attachments/123.png", true},
		{"kibela-acme-12/attachments/deep/456.jpg", true},
		{"kibela-acme-1/notes/123-Title.md", false},
		{"attachments/123.png", false},
		{"other-acme-1/attachments/123.png", false},
	}
	for _, tc := range cases {
		if got := IsAttachment(tc.path); got != tc.want {
			t.Errorf("IsAttachment(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestSourceID(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"kibela-acme-1/notes/123-My-Title.md", "123"},
		{"kibela-acme-1/attachments/4567.png", "4567"},
		{"kibela-acme-1/notes/Eng/89-T.md", "89"},
	}
	for _, tc := range cases {
		if got := SourceID(tc.path); got != tc.want {
			t.Errorf("SourceID(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestFolderName(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"kibela-acme-1/notes/Eng/123-Title.md", "Eng"},
		{"kibela-acme-1/notes/123-Title.md", ""},
		{"kibela-acme-1/blogs/Team/Weekly/5-Report.md", "Team/Weekly"},
		{"kibela-acme-1/wikis/9-Page.md", ""},
	}
	for _, tc := range cases {
		if got := FolderName(tc.path); got != tc.want {
			t.Errorf("FolderName(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestTranslate_Attachment(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4e, 0x47}
	intent, err := Translate("kibela-acme-1/attachments/123.png", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	att, ok := intent.(*AttachmentIntent)
	if !ok {
		t.Fatalf("intent = %T, want *AttachmentIntent", intent)
	}
	if att.Name != "123.png" {
		t.Errorf("name = %q, want 123.png", att.Name)
	}
	if len(att.Data) != len(data) {
		t.Errorf("data length = %d, want %d", len(att.Data), len(data))
	}
}

func TestTranslate_Note(t *testing.T) {
	intent, err := Translate("kibela-acme-1/notes/Eng/123-My-Title.md", []byte(publishedNote))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	note, ok := intent.(*NoteIntent)
	if !ok {
		t.Fatalf("intent = %T, want *NoteIntent", intent)
	}
	if note.Title != "My Title" {
		t.Errorf("title = %q", note.Title)
	}
	if note.Content != "Hello, world.\n" {
		t.Errorf("content = %q", note.Content)
	}
	if note.AuthorAccount != "alice" {
		t.Errorf("author = %q, want alice (leading @ stripped)", note.AuthorAccount)
	}
	if note.FolderName != "Eng" {
		t.Errorf("folder = %q, want Eng", note.FolderName)
	}
	if len(note.GroupNames) != 2 || note.GroupNames[0] != "Home" || note.GroupNames[1] != "Engineering" {
		t.Errorf("groups = %v", note.GroupNames)
	}
	want := time.Date(2019, 3, 29, 2, 12, 15, 0, time.UTC)
	if !note.PublishedAt.Equal(want) {
		t.Errorf("publishedAt = %v, want %v", note.PublishedAt, want)
	}
	if len(note.Comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(note.Comments))
	}
	// Source order is preserved.
	if note.Comments[0].AuthorAccount != "bob" || note.Comments[1].AuthorAccount != "carol" {
		t.Errorf("comment order = %q, %q", note.Comments[0].AuthorAccount, note.Comments[1].AuthorAccount)
	}
	if note.Comments[0].Content != "first!" {
		t.Errorf("comment content = %q", note.Comments[0].Content)
	}
}

func TestTranslate_DraftSkipped(t *testing.T) {
	for _, src := range []string{
		"---\nauthor: \"@alice\"\n---\n# Draft\n\nbody\n",
		"---\nauthor: \"@alice\"\npublished_at: \"\"\n---\n# Draft\n\nbody\n",
		"---\nauthor: \"@alice\"\npublished_at:\n---\n# Draft\n\nbody\n",
	} {
		intent, err := Translate("kibela-acme-1/notes/7-Draft.md", []byte(src))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if intent != nil {
			t.Errorf("draft should yield no intent, got %T", intent)
		}
	}
}

func TestTranslate_MissingHeading(t *testing.T) {
	src := "---\nauthor: \"@alice\"\npublished_at: \"2019-03-29 02:12:15 UTC\"\n---\nNo heading here.\n"
	_, err := Translate("kibela-acme-1/notes/8-Bad.md", []byte(src))
	if !errors.Is(err, apperr.ErrParse) {
		t.Fatalf("err = %v, want apperr.ErrParse", err)
	}
}

func TestTranslate_HeadingWithoutBlankLine(t *testing.T) {
	src := "---\nauthor: \"@alice\"\npublished_at: \"2019-03-29 02:12:15 UTC\"\n---\n# Title\nno blank line\n"
	_, err := Translate("kibela-acme-1/notes/9-Bad.md", []byte(src))
	if !errors.Is(err, apperr.ErrParse) {
		t.Fatalf("err = %v, want apperr.ErrParse", err)
	}
}

func TestTranslate_CorruptFrontmatter(t *testing.T) {
	src := "---\n: bad: yaml: {{{\n---\n# T\n\nc\n"
	_, err := Translate("kibela-acme-1/notes/10-Bad.md", []byte(src))
	if !errors.Is(err, apperr.ErrParse) {
		t.Fatalf("err = %v, want apperr.ErrParse", err)
	}
}

func TestToTime_Layouts(t *testing.T) {
	for _, s := range []string{
		"2019-03-29 02:12:15 UTC",
		"2019-03-29 02:12:15 +0900",
		"2019-03-29T02:12:15Z",
		"2019-03-29 02:12:15",
		"2019-03-29",
	} {
		if _, err := toTime(s); err != nil {
			t.Errorf("toTime(%q): %v", s, err)
		}
	}
	if _, err := toTime("not a time"); err == nil {
		t.Error("expected error for unparsable timestamp")
	}
	now := time.Now()
	got, err := toTime(now)
	if err != nil || !got.Equal(now) {
		t.Errorf("toTime(time.Time) = %v, %v", got, err)
	}
}
