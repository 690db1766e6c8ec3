// Package resolve maps natural keys from the export (author accounts, group
// names) to destination entities, creating missing ones on demand.
package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtakada173/kibela-to-kibela/internal/apperr"
	"github.com/mtakada173/kibela-to-kibela/internal/kibela"
	"github.com/mtakada173/kibela-to-kibela/internal/models"
)

// groupDescription marks groups this tool created in the destination team.
const groupDescription = "(created by kibela-to-kibela)"

// Resolver caches resolved entities for the lifetime of one run so each
// natural key causes at most one remote lookup or creation. The pipeline is
// strictly sequential, so plain maps suffice.
type Resolver struct {
	client *kibela.Client
	logger *slog.Logger

	privateGroups bool
	pageSize      int

	authors      map[string]models.Author
	groups       map[string]models.Group
	groupsLoaded bool
}

// New creates a resolver. privateGroups controls the visibility of groups
// created on a cache miss; pageSize is the cursor page size used when the
// existing group list is fetched.
func New(client *kibela.Client, logger *slog.Logger, privateGroups bool, pageSize int) *Resolver {
	return &Resolver{
		client:        client,
		logger:        logger,
		privateGroups: privateGroups,
		pageSize:      pageSize,
		authors:       make(map[string]models.Author),
		groups:        make(map[string]models.Group),
	}
}

// Author returns the destination user for a source account name. On a cache
// miss it looks the account up remotely; when the account does not exist in
// the destination it creates a disabled placeholder user instead. The lookup
// miss is the documented recovery path, not an error.
func (r *Resolver) Author(ctx context.Context, account string) (models.Author, error) {
	if author, ok := r.authors[account]; ok {
		return author, nil
	}

	author, err := r.client.UserFromAccount(ctx, account)
	if err != nil {
		r.logger.Info("author not found, creating a disabled user",
			slog.String("account", account))
		author, err = r.client.CreateDisabledUser(ctx, account)
		if err != nil {
			return models.Author{}, fmt.Errorf("%w: author @%s: %v", apperr.ErrDependency, account, err)
		}
	}

	r.authors[account] = author
	return author, nil
}

// Group returns the destination group for a source group name. The first
// call fetches the destination's complete group list into the cache; misses
// after that create a new group with the run-wide visibility.
func (r *Resolver) Group(ctx context.Context, name string) (models.Group, error) {
	if !r.groupsLoaded {
		if err := r.loadGroups(ctx); err != nil {
			return models.Group{}, fmt.Errorf("%w: list groups: %v", apperr.ErrDependency, err)
		}
		r.groupsLoaded = true
	}

	if group, ok := r.groups[name]; ok {
		return group, nil
	}

	group, err := r.client.CreateGroup(ctx, name, groupDescription, r.privateGroups)
	if err != nil {
		return models.Group{}, fmt.Errorf("%w: group %q: %v", apperr.ErrDependency, name, err)
	}
	r.groups[group.Name] = group
	return group, nil
}

func (r *Resolver) loadGroups(ctx context.Context) error {
	after := ""
	for {
		page, err := r.client.Groups(ctx, r.pageSize, after)
		if err != nil {
			return err
		}
		for _, g := range page.Groups {
			r.groups[g.Name] = g
		}
		if !page.HasNextPage {
			return nil
		}
		after = page.EndCursor
	}
}
