// Package models defines the entities created in the destination team.
package models

import "time"

// Author is a destination user resolved from a source account name.
// Account is the natural key, without the leading "@".
type Author struct {
	ID      string `json:"id"`
	Account string `json:"account"`
}

// Group is a destination group. Name is the natural key.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attachment is an uploaded binary file.
type Attachment struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Note is a created destination note.
type Note struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Author      Author    `json:"author"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	FolderName  string    `json:"folder_name,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Comment is a created destination comment. The export format carries no
// stable source identifier for comments, so ID is assigned only on creation.
type Comment struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Author      Author    `json:"author"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
}
