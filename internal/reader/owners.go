package reader

import (
	"context"
	"log/slog"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/feed"
)

// Owners lists publications and organizations side by side.
type Owners struct {
	Publications  *feed.Controller[content.Publication]
	Organizations *feed.Controller[content.Organization]

	deps Deps
	all  *feed.Composite
}

// NewOwners builds the publications and organizations screen. When a follow
// change of either kind is still unconfirmed, a successful fetch also asks the
// server which owners of that kind the device follows and lets the server's
// answer settle it.
func NewOwners(d Deps) *Owners {
	d = d.withDefaults()
	o := &Owners{deps: d}
	logger := d.Logger.With("screen", "owners")

	o.Publications = feed.New(feed.Options[content.Publication]{
		Key: "owners/publications",
		Fetch: func(ctx context.Context, _ string) (feed.Page[content.Publication], error) {
			items, err := d.Queries.Publications(ctx)
			if err != nil {
				return feed.Page[content.Publication]{}, err
			}
			settleFollows(ctx, d, logger, content.OwnerPublication, d.Queries.FollowedPublications)
			return feed.Page[content.Publication]{Items: items}, nil
		},
		ID:       func(p content.Publication) string { return p.Slug },
		Failures: d.Failures,
		Logger:   d.Logger,
	})
	o.Organizations = feed.New(feed.Options[content.Organization]{
		Key: "owners/organizations",
		Fetch: func(ctx context.Context, _ string) (feed.Page[content.Organization], error) {
			items, err := d.Queries.Organizations(ctx)
			if err != nil {
				return feed.Page[content.Organization]{}, err
			}
			settleFollows(ctx, d, logger, content.OwnerOrganization, d.Queries.FollowedOrganizations)
			return feed.Page[content.Organization]{Items: items}, nil
		},
		ID:       func(o content.Organization) string { return o.Slug },
		Failures: d.Failures,
		Logger:   d.Logger,
	})
	o.all = feed.NewComposite(o.Publications, o.Organizations)
	return o
}

// settleFollows lets the server decide every unconfirmed follow of kind owner.
func settleFollows(ctx context.Context, d Deps, logger *slog.Logger, owner content.OwnerKind,
	followed func(ctx context.Context, deviceID string) ([]string, error),
) {
	if !d.Cache.FollowDrifted(owner) {
		return
	}
	slugs, err := followed(ctx, d.Cache.DeviceID())
	if err != nil {
		logger.Warn("reconcile followed owners", "owner", owner.String(), "error", err)
		return
	}
	if changed := d.Cache.ReconcileFollowed(owner, slugs); len(changed) > 0 {
		logger.Info("follows corrected from server", "owner", owner.String(), "slugs", changed)
	}
}

func (o *Owners) Start(ctx context.Context) int   { return o.all.Start(ctx) }
func (o *Owners) Refresh(ctx context.Context) int { return o.all.Reload(ctx) }
func (o *Owners) Loaded() bool                    { return o.all.Loaded() }

// StartOrReload retries sections that never loaded and reloads the rest.
func (o *Owners) StartOrReload(ctx context.Context) int { return o.all.StartOrReload(ctx) }

// Rows returns publications followed by organizations.
func (o *Owners) Rows() []OwnerRow {
	cache := o.deps.Cache
	pubs := o.Publications.State().Items
	orgs := o.Organizations.State().Items
	rows := make([]OwnerRow, 0, len(pubs)+len(orgs))
	for _, p := range pubs {
		rows = append(rows, OwnerRow{
			Kind:      content.OwnerPublication,
			Slug:      p.Slug,
			Name:      p.Name,
			Bio:       p.Bio,
			Count:     p.NumArticles,
			Shoutouts: cache.EffectiveOwnerShoutouts(p.Slug, p.Shoutouts),
			Followed:  cache.IsFollowed(content.OwnerPublication, p.Slug),
		})
	}
	for _, org := range orgs {
		rows = append(rows, OwnerRow{
			Kind:      content.OwnerOrganization,
			Slug:      org.Slug,
			Name:      org.Name,
			Bio:       org.Bio,
			Count:     org.NumFlyers,
			Shoutouts: cache.EffectiveOwnerShoutouts(org.Slug, org.Shoutouts),
			Followed:  cache.IsFollowed(content.OwnerOrganization, org.Slug),
		})
	}
	return rows
}
