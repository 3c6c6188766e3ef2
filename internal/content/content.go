package content

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the content variants a reader can engage with.
type Kind int

const (
	KindArticle Kind = iota
	KindMagazine
	KindFlyer
)

// Kinds lists every content kind in display order.
var Kinds = []Kind{KindArticle, KindMagazine, KindFlyer}

// ErrUnknownKind is returned by ParseKind for unrecognized names.
var ErrUnknownKind = errors.New("unknown content kind")

func (k Kind) String() string {
	switch k {
	case KindArticle:
		return "article"
	case KindMagazine:
		return "magazine"
	case KindFlyer:
		return "flyer"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "article":
		return KindArticle, nil
	case "magazine":
		return KindMagazine, nil
	case "flyer":
		return KindFlyer, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Ref identifies a single piece of content.
type Ref struct {
	ID   string
	Kind Kind
}

func (r Ref) String() string {
	return r.Kind.String() + ":" + r.ID
}

// Item is the capability shared by articles, magazines and flyers. Engagement
// logic works against Item and never switches on the concrete type.
type Item interface {
	Ref() Ref
	Title() string
	// OwnerSlug is the publication or organization the item belongs to.
	OwnerSlug() string
	// OwnerEngagement is the owner's server-reported shout-out aggregate as
	// embedded in the item payload.
	OwnerEngagement() int
	// Engagement is the server-reported counter for the item itself.
	Engagement() int
	Image() string
	Published() time.Time
}

var (
	_ Item = Article{}
	_ Item = Magazine{}
	_ Item = Flyer{}
)

// OwnerSummary is the slice of a publication or organization embedded in
// content payloads.
type OwnerSummary struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Shoutouts int    `json:"shoutouts"`
}

// Article is a single story from a publication.
type Article struct {
	ID          string       `json:"id"`
	Headline    string       `json:"title"`
	ArticleURL  string       `json:"articleURL"`
	ImageURL    string       `json:"imageURL"`
	Date        time.Time    `json:"date"`
	Shoutouts   int          `json:"shoutouts"`
	NSFW        bool         `json:"nsfw"`
	Trendiness  int          `json:"trendiness"`
	Publication OwnerSummary `json:"publication"`
}

func (a Article) Ref() Ref             { return Ref{ID: a.ID, Kind: KindArticle} }
func (a Article) Title() string        { return a.Headline }
func (a Article) OwnerSlug() string    { return a.Publication.Slug }
func (a Article) OwnerEngagement() int { return a.Publication.Shoutouts }
func (a Article) Engagement() int      { return a.Shoutouts }
func (a Article) Image() string        { return a.ImageURL }
func (a Article) Published() time.Time { return a.Date }

// Validate reports whether the article carries the fields the client relies on.
func (a Article) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("article id is empty")
	}
	if strings.TrimSpace(a.Publication.Slug) == "" {
		return fmt.Errorf("article %s has no publication slug", a.ID)
	}
	return nil
}

// Magazine is a full issue published as a PDF.
type Magazine struct {
	ID          string       `json:"id"`
	Headline    string       `json:"title"`
	PDFURL      string       `json:"pdfURL"`
	ImageURL    string       `json:"imageURL"`
	Date        time.Time    `json:"date"`
	Semester    string       `json:"semester"`
	Shoutouts   int          `json:"shoutouts"`
	NSFW        bool         `json:"nsfw"`
	Publication OwnerSummary `json:"publication"`
}

func (m Magazine) Ref() Ref             { return Ref{ID: m.ID, Kind: KindMagazine} }
func (m Magazine) Title() string        { return m.Headline }
func (m Magazine) OwnerSlug() string    { return m.Publication.Slug }
func (m Magazine) OwnerEngagement() int { return m.Publication.Shoutouts }
func (m Magazine) Engagement() int      { return m.Shoutouts }
func (m Magazine) Image() string        { return m.ImageURL }
func (m Magazine) Published() time.Time { return m.Date }

// Validate reports whether the magazine carries the fields the client relies on.
func (m Magazine) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("magazine id is empty")
	}
	if strings.TrimSpace(m.Publication.Slug) == "" {
		return fmt.Errorf("magazine %s has no publication slug", m.ID)
	}
	return nil
}

// Flyer is an organization's event announcement.
type Flyer struct {
	ID           string       `json:"id"`
	Headline     string       `json:"title"`
	FlyerURL     string       `json:"flyerURL"`
	ImageURL     string       `json:"imageURL"`
	Location     string       `json:"location"`
	StartDate    time.Time    `json:"startDate"`
	EndDate      time.Time    `json:"endDate"`
	TimesClicked int          `json:"timesClicked"`
	Organization OwnerSummary `json:"organization"`
}

func (f Flyer) Ref() Ref             { return Ref{ID: f.ID, Kind: KindFlyer} }
func (f Flyer) Title() string        { return f.Headline }
func (f Flyer) OwnerSlug() string    { return f.Organization.Slug }
func (f Flyer) OwnerEngagement() int { return f.Organization.Shoutouts }
func (f Flyer) Engagement() int      { return f.TimesClicked }
func (f Flyer) Image() string        { return f.ImageURL }
func (f Flyer) Published() time.Time { return f.StartDate }

// Upcoming reports whether the flyer's event has not started at now.
func (f Flyer) Upcoming(now time.Time) bool {
	return f.StartDate.After(now)
}

// Validate reports whether the flyer carries the fields the client relies on.
func (f Flyer) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return errors.New("flyer id is empty")
	}
	if strings.TrimSpace(f.Organization.Slug) == "" {
		return fmt.Errorf("flyer %s has no organization slug", f.ID)
	}
	return nil
}
