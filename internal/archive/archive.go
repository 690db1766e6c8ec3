// Package archive enumerates the entries of a zip export archive.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

// Entry is one file inside an export archive.
type Entry struct {
	Path string
	Data []byte
}

// Walk opens the zip archive at path and calls fn for every file entry, in
// archive order, with its full contents. Directory entries are skipped. An
// error from fn stops the walk and is returned as-is.
func Walk(path string, fn func(Entry) error) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("archive: open entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("archive: read entry %s: %w", f.Name, err)
		}
		if err := fn(Entry{Path: f.Name, Data: data}); err != nil {
			return err
		}
	}
	return nil
}
