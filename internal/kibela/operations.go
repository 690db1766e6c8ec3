package kibela

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"time"

	"github.com/mtakada173/kibela-to-kibela/internal/models"
)

const pingQuery = `
  query Ping {
    currentUser {
      account
    }
  }`

const uploadAttachmentMutation = `
  mutation UploadAttachment($input: UploadAttachmentInput!) {
    uploadAttachment(input: $input) {
      attachment {
        id
        path
      }
    }
  }`

const createNoteMutation = `
  mutation CreateNote($input: CreateNoteInput!) {
    createNote(input: $input) {
      note {
        id
        path
      }
    }
  }`

const createCommentMutation = `
  mutation CreateComment($input: CreateCommentInput!) {
    createComment(input: $input) {
      comment {
        id
        path
      }
    }
  }`

const createGroupMutation = `
  mutation CreateGroup($input: CreateGroupInput!) {
    createGroup(input: $input) {
      group {
        id
        name
      }
    }
  }`

const createDisabledUserMutation = `
  mutation CreateDisabledUser($input: CreateDisabledUserInput!) {
    createDisabledUser(input: $input) {
      user {
        id
        account
      }
    }
  }`

const userFromAccountQuery = `
  query GetAuthor($account: String!) {
    user: userFromAccount(account: $account) {
      id
      account
    }
  }`

const groupsQuery = `
  query GetAllGroups($first: Int!, $after: String) {
    groups(first: $first, after: $after) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          id
          name
        }
      }
    }
  }`

// Ping verifies connectivity and credentials against the endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		CurrentUser struct {
			Account string `json:"account"`
		} `json:"currentUser"`
	}
	if err := c.do(ctx, pingQuery, nil, &out); err != nil {
		return fmt.Errorf("ping %s: %w", c.endpoint, err)
	}
	return nil
}

// UploadAttachment uploads one binary attachment. The name is reduced to its
// final path segment; data travels base64-encoded.
func (c *Client) UploadAttachment(ctx context.Context, name string, data []byte) (models.Attachment, error) {
	input := map[string]interface{}{
		"name": path.Base(name),
		"data": base64.StdEncoding.EncodeToString(data),
		"kind": "GENERAL",
	}
	var out struct {
		UploadAttachment struct {
			Attachment models.Attachment `json:"attachment"`
		} `json:"uploadAttachment"`
	}
	if err := c.do(ctx, uploadAttachmentMutation, map[string]interface{}{"input": input}, &out); err != nil {
		return models.Attachment{}, err
	}
	return out.UploadAttachment.Attachment, nil
}

// CreateNoteInput is the variable set for the CreateNote mutation.
type CreateNoteInput struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Coediting   bool      `json:"coediting"`
	GroupIDs    []string  `json:"groupIds"`
	FolderName  string    `json:"folderName,omitempty"`
	AuthorID    string    `json:"authorId"`
	PublishedAt time.Time `json:"publishedAt"`
}

// CreateNote creates a note and returns its destination id and path.
func (c *Client) CreateNote(ctx context.Context, input CreateNoteInput) (id, notePath string, err error) {
	var out struct {
		CreateNote struct {
			Note struct {
				ID   string `json:"id"`
				Path string `json:"path"`
			} `json:"note"`
		} `json:"createNote"`
	}
	if err := c.do(ctx, createNoteMutation, map[string]interface{}{"input": input}, &out); err != nil {
		return "", "", err
	}
	return out.CreateNote.Note.ID, out.CreateNote.Note.Path, nil
}

// CreateCommentInput is the variable set for the CreateComment mutation.
type CreateCommentInput struct {
	CommentableID string    `json:"commentableId"`
	Content       string    `json:"content"`
	AuthorID      string    `json:"authorId"`
	PublishedAt   time.Time `json:"publishedAt"`
}

// CreateComment creates a comment on an existing note.
func (c *Client) CreateComment(ctx context.Context, input CreateCommentInput) (id, commentPath string, err error) {
	var out struct {
		CreateComment struct {
			Comment struct {
				ID   string `json:"id"`
				Path string `json:"path"`
			} `json:"comment"`
		} `json:"createComment"`
	}
	if err := c.do(ctx, createCommentMutation, map[string]interface{}{"input": input}, &out); err != nil {
		return "", "", err
	}
	return out.CreateComment.Comment.ID, out.CreateComment.Comment.Path, nil
}

// CreateGroup creates a group with the given visibility.
func (c *Client) CreateGroup(ctx context.Context, name, description string, private bool) (models.Group, error) {
	input := map[string]interface{}{
		"name":        name,
		"description": description,
		"isPrivate":   private,
	}
	var out struct {
		CreateGroup struct {
			Group models.Group `json:"group"`
		} `json:"createGroup"`
	}
	if err := c.do(ctx, createGroupMutation, map[string]interface{}{"input": input}, &out); err != nil {
		return models.Group{}, err
	}
	return out.CreateGroup.Group, nil
}

// CreateDisabledUser creates a disabled placeholder user for an account that
// exists only in the source workspace.
func (c *Client) CreateDisabledUser(ctx context.Context, account string) (models.Author, error) {
	input := map[string]interface{}{
		"account":  account,
		"realName": account,
		"email":    fmt.Sprintf("%s@dummy.example.com", account),
	}
	var out struct {
		CreateDisabledUser struct {
			User models.Author `json:"user"`
		} `json:"createDisabledUser"`
	}
	if err := c.do(ctx, createDisabledUserMutation, map[string]interface{}{"input": input}, &out); err != nil {
		return models.Author{}, err
	}
	return out.CreateDisabledUser.User, nil
}

// UserFromAccount looks up an existing user by account name. A null result
// is an error; the resolver treats it as the cue to create a disabled user.
func (c *Client) UserFromAccount(ctx context.Context, account string) (models.Author, error) {
	var out struct {
		User *models.Author `json:"user"`
	}
	if err := c.do(ctx, userFromAccountQuery, map[string]interface{}{"account": account}, &out); err != nil {
		return models.Author{}, err
	}
	if out.User == nil {
		return models.Author{}, fmt.Errorf("no user with account %q", account)
	}
	return *out.User, nil
}

// GroupPage is one cursor page of the destination's group list.
type GroupPage struct {
	Groups      []models.Group
	EndCursor   string
	HasNextPage bool
}

// Groups fetches one page of existing groups. Pass the previous page's
// EndCursor as after, or "" for the first page.
func (c *Client) Groups(ctx context.Context, first int, after string) (GroupPage, error) {
	vars := map[string]interface{}{"first": first}
	if after != "" {
		vars["after"] = after
	}
	var out struct {
		Groups struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node models.Group `json:"node"`
			} `json:"edges"`
		} `json:"groups"`
	}
	if err := c.do(ctx, groupsQuery, vars, &out); err != nil {
		return GroupPage{}, err
	}
	page := GroupPage{
		EndCursor:   out.Groups.PageInfo.EndCursor,
		HasNextPage: out.Groups.PageInfo.HasNextPage,
	}
	for _, e := range out.Groups.Edges {
		page.Groups = append(page.Groups, e.Node)
	}
	return page, nil
}
