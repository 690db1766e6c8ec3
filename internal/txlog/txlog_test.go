package txlog

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
)

// chdirTemp mirrors t.Chdir(t.TempDir()) for toolchains older than Go 1.24.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestOpen_Collision(t *testing.T) {
	chdirTemp(t)

	l, err := Open("run-1")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	defer l.Close(false)

	if _, err := Open("run-1"); err == nil {
		t.Fatal("expected an error opening the same run id twice")
	}
}

func TestAppend_KeepsNdjsonShape(t *testing.T) {
	chdirTemp(t)

	l, err := Open("run-2")
	if err != nil {
		t.Fatal(err)
	}

	records := []Record{
		{Type: TypeNote, File: "kibela-acme-1/notes/1-A.md", SourceID: "1", DestPath: "/notes/x", DestRelayID: "N_1", Content: "body"},
		{Type: TypeComment, File: "kibela-acme-1/notes/1-A.md", SourceID: "1", DestPath: "/comments/y", DestRelayID: "C_1", Content: "hi"},
	}
	for _, r := range records {
		if err := l.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	if l.Records() != 2 {
		t.Errorf("records = %d, want 2", l.Records())
	}

	path := l.Path()
	if err := l.Close(true); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("apply log with records must be kept: %v", err)
	}
	defer f.Close()

	var got []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("line not valid JSON: %v", err)
		}
		got = append(got, r)
	}
	if len(got) != 2 {
		t.Fatalf("lines = %d, want 2", len(got))
	}
	if got[0] != records[0] || got[1] != records[1] {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestClose_DryRunRemoves(t *testing.T) {
	chdirTemp(t)

	l, err := Open("run-3")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Append(Record{Type: TypeAttachment, File: "f", SourceID: "1", DestPath: "/attachments/a", DestRelayID: "A_1"}); err != nil {
		t.Fatal(err)
	}
	path := l.Path()
	if err := l.Close(false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("dry-run log should be removed, stat err = %v", err)
	}
}

func TestClose_EmptyRemoves(t *testing.T) {
	chdirTemp(t)

	l, err := Open("run-4")
	if err != nil {
		t.Fatal(err)
	}
	path := l.Path()
	if err := l.Close(true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("empty log should be removed, stat err = %v", err)
	}
}

func TestContentOmittedForAttachments(t *testing.T) {
	data, err := json.Marshal(Record{Type: TypeAttachment, File: "f", SourceID: "1", DestPath: "/attachments/a", DestRelayID: "A_1"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "" || jsonHasKey(t, data, "content") {
		t.Errorf("content should be omitted when empty: %s", data)
	}
}

func jsonHasKey(t *testing.T, data []byte, key string) bool {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	_, ok := m[key]
	return ok
}
