package api

import (
	"context"
	"fmt"

	"github.com/five82/herald/internal/content"
)

var followMutations = map[content.OwnerKind][2]string{
	content.OwnerPublication: {
		`mutation FollowPublication($slug: String!, $uuid: String!) { followPublication(slug: $slug, uuid: $uuid) { uuid } }`,
		`mutation UnfollowPublication($slug: String!, $uuid: String!) { unfollowPublication(slug: $slug, uuid: $uuid) { uuid } }`,
	},
	content.OwnerOrganization: {
		`mutation FollowOrganization($slug: String!, $uuid: String!) { followOrganization(slug: $slug, uuid: $uuid) { uuid } }`,
		`mutation UnfollowOrganization($slug: String!, $uuid: String!) { unfollowOrganization(slug: $slug, uuid: $uuid) { uuid } }`,
	},
}

var bookmarkMutations = map[content.Kind][2]string{
	content.KindArticle: {
		`mutation BookmarkArticle($id: String!, $uuid: String!) { bookmarkArticle(id: $id, uuid: $uuid) { uuid } }`,
		`mutation UnbookmarkArticle($id: String!, $uuid: String!) { unbookmarkArticle(id: $id, uuid: $uuid) { uuid } }`,
	},
	content.KindMagazine: {
		`mutation BookmarkMagazine($id: String!, $uuid: String!) { bookmarkMagazine(id: $id, uuid: $uuid) { uuid } }`,
		`mutation UnbookmarkMagazine($id: String!, $uuid: String!) { unbookmarkMagazine(id: $id, uuid: $uuid) { uuid } }`,
	},
	content.KindFlyer: {
		`mutation BookmarkFlyer($id: String!, $uuid: String!) { bookmarkFlyer(id: $id, uuid: $uuid) { uuid } }`,
		`mutation UnbookmarkFlyer($id: String!, $uuid: String!) { unbookmarkFlyer(id: $id, uuid: $uuid) { uuid } }`,
	},
}

var shoutoutMutations = map[content.Kind]string{
	content.KindArticle:  `mutation IncrementShoutouts($id: String!, $uuid: String!) { incrementShoutouts(id: $id, uuid: $uuid) { id } }`,
	content.KindMagazine: `mutation IncrementMagazineShoutouts($id: String!, $uuid: String!) { incrementMagazineShoutouts(id: $id, uuid: $uuid) { id } }`,
}

const mutationFlyerClick = `mutation IncrementTimesClicked($id: String!) { incrementTimesClicked(id: $id) { id } }`

// SetFollow follows or unfollows the owner identified by slug.
func (c *Client) SetFollow(ctx context.Context, owner content.OwnerKind, slug, deviceID string, follow bool) error {
	docs, ok := followMutations[owner]
	if !ok {
		return fmt.Errorf("follow %s: unsupported owner kind", owner)
	}
	doc := docs[1]
	if follow {
		doc = docs[0]
	}
	return c.do(ctx, doc, map[string]any{"slug": slug, "uuid": deviceID}, nil)
}

// SetBookmark bookmarks or removes the bookmark on ref.
func (c *Client) SetBookmark(ctx context.Context, ref content.Ref, deviceID string, saved bool) error {
	docs, ok := bookmarkMutations[ref.Kind]
	if !ok {
		return fmt.Errorf("bookmark %s: unsupported kind", ref)
	}
	doc := docs[1]
	if saved {
		doc = docs[0]
	}
	return c.do(ctx, doc, map[string]any{"id": ref.ID, "uuid": deviceID}, nil)
}

// IncrementShoutout records one shout-out on ref from deviceID.
func (c *Client) IncrementShoutout(ctx context.Context, ref content.Ref, deviceID string) error {
	doc, ok := shoutoutMutations[ref.Kind]
	if !ok {
		return fmt.Errorf("shout-out %s: unsupported kind", ref)
	}
	return c.do(ctx, doc, map[string]any{"id": ref.ID, "uuid": deviceID}, nil)
}

// RecordFlyerClick counts a visit to a flyer's link.
func (c *Client) RecordFlyerClick(ctx context.Context, id string) error {
	return c.do(ctx, mutationFlyerClick, map[string]any{"id": id}, nil)
}
