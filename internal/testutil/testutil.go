// Package testutil provides shared test helpers: an in-process fake Kibela
// GraphQL endpoint and a zip export archive builder.
package testutil

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/mtakada173/kibela-to-kibela/internal/kibela"
	"github.com/mtakada173/kibela-to-kibela/internal/models"
)

// FakeKibela is a stand-in for a destination team's GraphQL endpoint. It
// dispatches on the operation inside the query text, records every mutation
// input, and hands out sequential destination ids.
type FakeKibela struct {
	srv *httptest.Server

	mu     sync.Mutex
	nextID int

	users  map[string]models.Author
	groups []models.Group

	// Calls counts requests per operation name.
	Calls map[string]int
	// Fail makes the named operation respond with a GraphQL error.
	Fail map[string]bool

	CreatedUsers    []models.Author
	CreatedGroups   []models.Group
	CreatedNotes    []map[string]interface{}
	CreatedComments []map[string]interface{}
	Attachments     []string
}

// NewFakeKibela starts a fake endpoint that is shut down with the test.
func NewFakeKibela(t *testing.T) *FakeKibela {
	t.Helper()
	f := &FakeKibela{
		users: make(map[string]models.Author),
		Calls: make(map[string]int),
		Fail:  make(map[string]bool),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

// URL returns the fake endpoint address.
func (f *FakeKibela) URL() string {
	return f.srv.URL
}

// Client returns a kibela client pointed at the fake endpoint.
func (f *FakeKibela) Client() *kibela.Client {
	return kibela.NewClient(f.srv.URL, "test-token", "kibela-to-kibela-test")
}

// AddUser registers a pre-existing destination user.
func (f *FakeKibela) AddUser(account string) models.Author {
	f.mu.Lock()
	defer f.mu.Unlock()
	author := models.Author{ID: f.id("U"), Account: account}
	f.users[account] = author
	return author
}

// AddGroup registers a pre-existing destination group.
func (f *FakeKibela) AddGroup(name string) models.Group {
	f.mu.Lock()
	defer f.mu.Unlock()
	group := models.Group{ID: f.id("G"), Name: name}
	f.groups = append(f.groups, group)
	return group
}

func (f *FakeKibela) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s_%d", prefix, f.nextID)
}

func operation(query string) string {
	for _, op := range []string{
		"uploadAttachment",
		"createNote",
		"createComment",
		"createGroup",
		"createDisabledUser",
		"userFromAccount",
		"currentUser",
		"groups(",
	} {
		if strings.Contains(query, op) {
			return strings.TrimSuffix(op, "(")
		}
	}
	return "unknown"
}

func (f *FakeKibela) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	op := operation(req.Query)
	f.Calls[op]++

	if f.Fail[op] {
		writeGraphQL(w, nil, fmt.Sprintf("%s refused by test", op))
		return
	}

	input, _ := req.Variables["input"].(map[string]interface{})

	switch op {
	case "currentUser":
		writeGraphQL(w, map[string]interface{}{
			"currentUser": map[string]interface{}{"account": "importer"},
		}, "")

	case "uploadAttachment":
		name, _ := input["name"].(string)
		f.Attachments = append(f.Attachments, name)
		id := f.id("A")
		writeGraphQL(w, map[string]interface{}{
			"uploadAttachment": map[string]interface{}{
				"attachment": map[string]interface{}{"id": id, "path": "/attachments/" + name},
			},
		}, "")

	case "createNote":
		f.CreatedNotes = append(f.CreatedNotes, input)
		id := f.id("N")
		writeGraphQL(w, map[string]interface{}{
			"createNote": map[string]interface{}{
				"note": map[string]interface{}{"id": id, "path": "/notes/" + id},
			},
		}, "")

	case "createComment":
		f.CreatedComments = append(f.CreatedComments, input)
		id := f.id("C")
		writeGraphQL(w, map[string]interface{}{
			"createComment": map[string]interface{}{
				"comment": map[string]interface{}{"id": id, "path": "/comments/" + id},
			},
		}, "")

	case "createGroup":
		name, _ := input["name"].(string)
		group := models.Group{ID: f.id("G"), Name: name}
		f.groups = append(f.groups, group)
		f.CreatedGroups = append(f.CreatedGroups, group)
		writeGraphQL(w, map[string]interface{}{
			"createGroup": map[string]interface{}{
				"group": map[string]interface{}{"id": group.ID, "name": group.Name},
			},
		}, "")

	case "createDisabledUser":
		account, _ := input["account"].(string)
		author := models.Author{ID: f.id("U"), Account: account}
		f.users[account] = author
		f.CreatedUsers = append(f.CreatedUsers, author)
		writeGraphQL(w, map[string]interface{}{
			"createDisabledUser": map[string]interface{}{
				"user": map[string]interface{}{"id": author.ID, "account": author.Account},
			},
		}, "")

	case "userFromAccount":
		account, _ := req.Variables["account"].(string)
		author, ok := f.users[account]
		if !ok {
			writeGraphQL(w, map[string]interface{}{"user": nil}, "")
			return
		}
		writeGraphQL(w, map[string]interface{}{
			"user": map[string]interface{}{"id": author.ID, "account": author.Account},
		}, "")

	case "groups":
		first := 100
		if v, ok := req.Variables["first"].(float64); ok {
			first = int(v)
		}
		start := 0
		if after, ok := req.Variables["after"].(string); ok && after != "" {
			start, _ = strconv.Atoi(after)
		}
		end := start + first
		if end > len(f.groups) {
			end = len(f.groups)
		}
		edges := make([]map[string]interface{}, 0, end-start)
		for _, g := range f.groups[start:end] {
			edges = append(edges, map[string]interface{}{
				"node": map[string]interface{}{"id": g.ID, "name": g.Name},
			})
		}
		writeGraphQL(w, map[string]interface{}{
			"groups": map[string]interface{}{
				"pageInfo": map[string]interface{}{
					"hasNextPage": end < len(f.groups),
					"endCursor":   strconv.Itoa(end),
				},
				"edges": edges,
			},
		}, "")

	default:
		writeGraphQL(w, nil, "unknown operation")
	}
}

func writeGraphQL(w http.ResponseWriter, data map[string]interface{}, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	body := map[string]interface{}{"data": data}
	if errMsg != "" {
		body["errors"] = []map[string]interface{}{{"message": errMsg}}
	}
	_ = json.NewEncoder(w).Encode(body)
}

// ArchiveFile is one entry of a built test archive.
type ArchiveFile struct {
	Path string
	Data []byte
}

// BuildArchive writes a zip archive with the given entries, in order, into
// a temp directory and returns its path.
func BuildArchive(t *testing.T, files []ArchiveFile) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.zip")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(out)
	for _, f := range files {
		w, err := zw.Create(f.Path)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(f.Data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}
