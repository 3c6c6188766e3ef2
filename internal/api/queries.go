package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/feed"
)

const (
	articleFields = `id title articleURL imageURL date shoutouts nsfw trendiness
		publication { slug name shoutouts }`
	magazineFields = `id title pdfURL imageURL date semester shoutouts nsfw
		publication { slug name shoutouts }`
	flyerFields = `id title flyerURL imageURL location startDate endDate timesClicked
		organization { slug name shoutouts }`
	publicationFields = `slug name bio profileImageURL backgroundImageURL websiteURL
		shoutouts numArticles contentTypes`
	organizationFields = `slug name bio profileImageURL websiteURL categorySlug shoutouts numFlyers`
)

var (
	queryTrendingArticles = `query TrendingArticles($limit: Float) {
		getTrendingArticles(limit: $limit) { ` + articleFields + ` } }`
	queryArticlesByPublications = `query ArticlesByPublicationSlugs($slugs: [String!]!, $limit: Float, $offset: Float) {
		getArticlesByPublicationSlugs(slugs: $slugs, limit: $limit, offset: $offset) { ` + articleFields + ` } }`
	queryArticle = `query ArticleByID($id: String!) {
		getArticleByID(id: $id) { ` + articleFields + ` } }`
	queryPublications = `query AllPublications {
		getAllPublications { ` + publicationFields + ` } }`
	queryOrganizations = `query AllOrganizations {
		getAllOrganizations { ` + organizationFields + ` } }`
	queryMagazines = `query AllMagazines($limit: Float, $offset: Float) {
		getAllMagazines(limit: $limit, offset: $offset) { ` + magazineFields + ` } }`
	queryMagazine = `query MagazineByID($id: String!) {
		getMagazineByID(id: $id) { ` + magazineFields + ` } }`
	queryFlyersAfter = `query FlyersAfterDate($since: String!) {
		getFlyersAfterDate(since: $since) { ` + flyerFields + ` } }`
	queryFlyersBefore = `query FlyersBeforeDate($before: String!, $limit: Float) {
		getFlyersBeforeDate(before: $before, limit: $limit) { ` + flyerFields + ` } }`
	querySearchArticles = `query SearchArticles($query: String!, $limit: Float) {
		searchArticles(query: $query, limit: $limit) { ` + articleFields + ` } }`
	querySearchMagazines = `query SearchMagazines($query: String!, $limit: Float) {
		searchMagazines(query: $query, limit: $limit) { ` + magazineFields + ` } }`
	querySearchFlyers = `query SearchFlyers($query: String!, $limit: Float) {
		searchFlyers(query: $query, limit: $limit) { ` + flyerFields + ` } }`
	queryDebrief = `query WeeklyDebrief($uuid: String!) {
		getUserByUUID(uuid: $uuid) { weeklyDebrief {
			creationDate expirationDate numShoutouts numBookmarkedArticles numReadArticles
			readArticles { ` + articleFields + ` }
			randomArticles { ` + articleFields + ` } } } }`
	queryFollowed = `query FollowedPublications($uuid: String!) {
		getUserByUUID(uuid: $uuid) { followedPublications { slug } } }`
	queryFollowedOrgs = `query FollowedOrganizations($uuid: String!) {
		getUserByUUID(uuid: $uuid) { followedOrganizations { slug } } }`
)

// TrendingArticles returns up to limit trending articles.
func (c *Client) TrendingArticles(ctx context.Context, limit int) ([]content.Article, error) {
	items, _, err := list[content.Article](ctx, c, queryTrendingArticles, "getTrendingArticles", map[string]any{"limit": limit})
	return items, err
}

// ArticlesByPublications returns one page of articles from the given
// publications, newest first.
func (c *Client) ArticlesByPublications(ctx context.Context, slugs []string, cursor string) (feed.Page[content.Article], error) {
	offset, err := parseCursor(cursor)
	if err != nil {
		return feed.Page[content.Article]{}, err
	}
	if len(slugs) == 0 {
		return feed.Page[content.Article]{}, nil
	}
	items, raw, err := list[content.Article](ctx, c, queryArticlesByPublications, "getArticlesByPublicationSlugs",
		map[string]any{"slugs": slugs, "limit": c.pageSize, "offset": offset})
	if err != nil {
		return feed.Page[content.Article]{}, err
	}
	return page(items, offset, raw, c.pageSize), nil
}

// Article returns a single article by id.
func (c *Client) Article(ctx context.Context, id string) (content.Article, error) {
	return one[content.Article](ctx, c, queryArticle, "getArticleByID", map[string]any{"id": id})
}

// Publications returns every publication.
func (c *Client) Publications(ctx context.Context) ([]content.Publication, error) {
	items, _, err := list[content.Publication](ctx, c, queryPublications, "getAllPublications", nil)
	return items, err
}

// Organizations returns every organization.
func (c *Client) Organizations(ctx context.Context) ([]content.Organization, error) {
	items, _, err := list[content.Organization](ctx, c, queryOrganizations, "getAllOrganizations", nil)
	return items, err
}

// Magazines returns one page of magazines.
func (c *Client) Magazines(ctx context.Context, cursor string) (feed.Page[content.Magazine], error) {
	offset, err := parseCursor(cursor)
	if err != nil {
		return feed.Page[content.Magazine]{}, err
	}
	items, raw, err := list[content.Magazine](ctx, c, queryMagazines, "getAllMagazines",
		map[string]any{"limit": c.pageSize, "offset": offset})
	if err != nil {
		return feed.Page[content.Magazine]{}, err
	}
	return page(items, offset, raw, c.pageSize), nil
}

// Magazine returns a single magazine by id.
func (c *Client) Magazine(ctx context.Context, id string) (content.Magazine, error) {
	return one[content.Magazine](ctx, c, queryMagazine, "getMagazineByID", map[string]any{"id": id})
}

// UpcomingFlyers returns flyers for events starting after since.
func (c *Client) UpcomingFlyers(ctx context.Context, since time.Time) ([]content.Flyer, error) {
	items, _, err := list[content.Flyer](ctx, c, queryFlyersAfter, "getFlyersAfterDate",
		map[string]any{"since": since.UTC().Format(time.RFC3339)})
	return items, err
}

// PastFlyers returns up to limit flyers for events that started before before.
func (c *Client) PastFlyers(ctx context.Context, before time.Time, limit int) ([]content.Flyer, error) {
	items, _, err := list[content.Flyer](ctx, c, queryFlyersBefore, "getFlyersBeforeDate",
		map[string]any{"before": before.UTC().Format(time.RFC3339), "limit": limit})
	return items, err
}

// SearchArticles returns articles matching query.
func (c *Client) SearchArticles(ctx context.Context, query string) ([]content.Article, error) {
	items, _, err := list[content.Article](ctx, c, querySearchArticles, "searchArticles",
		map[string]any{"query": query, "limit": c.pageSize})
	return items, err
}

// SearchMagazines returns magazines matching query.
func (c *Client) SearchMagazines(ctx context.Context, query string) ([]content.Magazine, error) {
	items, _, err := list[content.Magazine](ctx, c, querySearchMagazines, "searchMagazines",
		map[string]any{"query": query, "limit": c.pageSize})
	return items, err
}

// SearchFlyers returns flyers matching query.
func (c *Client) SearchFlyers(ctx context.Context, query string) ([]content.Flyer, error) {
	items, _, err := list[content.Flyer](ctx, c, querySearchFlyers, "searchFlyers",
		map[string]any{"query": query, "limit": c.pageSize})
	return items, err
}

// WeeklyDebrief returns the device's current weekly debrief.
func (c *Client) WeeklyDebrief(ctx context.Context, deviceID string) (content.Debrief, error) {
	// Article lists stay raw so one bad article is dropped, not the debrief.
	type rawDebrief struct {
		content.Debrief
		ReadArticles   json.RawMessage `json:"readArticles"`
		RandomArticles json.RawMessage `json:"randomArticles"`
	}
	var data struct {
		User *struct {
			WeeklyDebrief *rawDebrief `json:"weeklyDebrief"`
		} `json:"getUserByUUID"`
	}
	if err := c.do(ctx, queryDebrief, map[string]any{"uuid": deviceID}, &data); err != nil {
		return content.Debrief{}, err
	}
	if data.User == nil || data.User.WeeklyDebrief == nil {
		return content.Debrief{}, fmt.Errorf("weekly debrief: %w", ErrNotFound)
	}
	raw := data.User.WeeklyDebrief
	debrief := raw.Debrief
	var err error
	if debrief.ReadArticles, _, err = decodeList[content.Article](c.logger, "readArticles", raw.ReadArticles); err != nil {
		return content.Debrief{}, err
	}
	if debrief.RandomArticles, _, err = decodeList[content.Article](c.logger, "randomArticles", raw.RandomArticles); err != nil {
		return content.Debrief{}, err
	}
	return debrief, nil
}

// FollowedPublications returns the slugs the server records as followed by
// the device.
func (c *Client) FollowedPublications(ctx context.Context, deviceID string) ([]string, error) {
	return c.followed(ctx, queryFollowed, "followedPublications", deviceID)
}

// FollowedOrganizations returns the organization slugs the server records
// as followed by the device.
func (c *Client) FollowedOrganizations(ctx context.Context, deviceID string) ([]string, error) {
	return c.followed(ctx, queryFollowedOrgs, "followedOrganizations", deviceID)
}

func (c *Client) followed(ctx context.Context, document, field, deviceID string) ([]string, error) {
	var data struct {
		User map[string]json.RawMessage `json:"getUserByUUID"`
	}
	if err := c.do(ctx, document, map[string]any{"uuid": deviceID}, &data); err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, nil
	}
	var owners []struct {
		Slug string `json:"slug"`
	}
	if raw := data.User[field]; len(raw) > 0 {
		if err := json.Unmarshal(raw, &owners); err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
	}
	slugs := make([]string, 0, len(owners))
	for _, o := range owners {
		if o.Slug != "" {
			slugs = append(slugs, o.Slug)
		}
	}
	return slugs, nil
}

func list[T validator](ctx context.Context, c *Client, document, field string, vars map[string]any) ([]T, int, error) {
	var data map[string]json.RawMessage
	if err := c.do(ctx, document, vars, &data); err != nil {
		return nil, 0, err
	}
	return decodeList[T](c.logger, field, data[field])
}

func one[T validator](ctx context.Context, c *Client, document, field string, vars map[string]any) (T, error) {
	var data map[string]json.RawMessage
	if err := c.do(ctx, document, vars, &data); err != nil {
		var zero T
		return zero, err
	}
	return decodeOne[T](field, data[field])
}

