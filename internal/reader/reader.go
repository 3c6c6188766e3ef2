package reader

import (
	"log/slog"
	"time"

	"github.com/five82/herald/internal/api"
	"github.com/five82/herald/internal/content"
	"github.com/five82/herald/internal/prefs"
	"github.com/five82/herald/internal/state"
)

// Deps are the collaborators every screen shares.
type Deps struct {
	Queries  api.Queries
	Cache    *prefs.Cache
	Failures *state.Board
	Logger   *slog.Logger
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Failures == nil {
		d.Failures = &state.Board{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Row is a content item decorated with the reader's local state. Counts are
// effective counts: never lower than what this device has already applied.
type Row struct {
	Item           content.Item
	Shoutouts      int
	OwnerShoutouts int
	Saved          bool
	OwnerFollowed  bool
	CanShoutout    bool
}

// Rows decorates items for display.
func Rows[T content.Item](cache *prefs.Cache, items []T) []Row {
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		ref := item.Ref()
		rows = append(rows, Row{
			Item:           item,
			Shoutouts:      cache.EffectiveShoutouts(ref.ID, item.Engagement()),
			OwnerShoutouts: cache.EffectiveOwnerShoutouts(item.OwnerSlug(), item.OwnerEngagement()),
			Saved:          cache.IsSaved(ref),
			OwnerFollowed:  cache.IsFollowed(content.OwnerKindOf(ref.Kind), item.OwnerSlug()),
			CanShoutout:    ref.Kind != content.KindFlyer && cache.CanIncrementShoutout(ref.ID),
		})
	}
	return rows
}

// OwnerRow is a publication or organization decorated with local state.
type OwnerRow struct {
	Kind      content.OwnerKind
	Slug      string
	Name      string
	Bio       string
	Count     int
	Shoutouts int
	Followed  bool
}

func itemID[T content.Item](item T) string {
	return item.Ref().ID
}

// reconcileItems lets the cache retire shout-out drift markers once the
// server's counts have caught up.
func reconcileItems[T content.Item](cache *prefs.Cache) func([]T) {
	return func(items []T) {
		for _, item := range items {
			cache.ReconcileShoutouts(item.Ref().ID, item.Engagement())
		}
	}
}

// Screens is the full set of screens sharing one cache and failure board.
type Screens struct {
	Home      *Home
	Owners    *Owners
	Magazines *Magazines
	Flyers    *Flyers
	Search    *Search
	Debrief   *Debrief
}

// NewScreens builds every screen from the same dependencies.
func NewScreens(d Deps) Screens {
	d = d.withDefaults()
	return Screens{
		Home:      NewHome(d),
		Owners:    NewOwners(d),
		Magazines: NewMagazines(d),
		Flyers:    NewFlyers(d),
		Search:    NewSearch(d),
		Debrief:   NewDebrief(d),
	}
}
