package content

import (
	"errors"
	"strings"
	"time"
)

// Publication is a student publication. It is referenced by content through
// its slug and is never owned by it.
type Publication struct {
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Bio          string   `json:"bio"`
	ImageURL     string   `json:"profileImageURL"`
	BannerURL    string   `json:"backgroundImageURL"`
	WebsiteURL   string   `json:"websiteURL"`
	Shoutouts    int      `json:"shoutouts"`
	NumArticles  int      `json:"numArticles"`
	ContentTypes []string `json:"contentTypes"`
}

// Validate reports whether the publication has a usable slug.
func (p Publication) Validate() error {
	if strings.TrimSpace(p.Slug) == "" {
		return errors.New("publication slug is empty")
	}
	return nil
}

// Organization is a campus group that posts flyers.
type Organization struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Bio        string `json:"bio"`
	ImageURL   string `json:"profileImageURL"`
	WebsiteURL string `json:"websiteURL"`
	Category   string `json:"categorySlug"`
	Shoutouts  int    `json:"shoutouts"`
	NumFlyers  int    `json:"numFlyers"`
}

// Validate reports whether the organization has a usable slug.
func (o Organization) Validate() error {
	if strings.TrimSpace(o.Slug) == "" {
		return errors.New("organization slug is empty")
	}
	return nil
}

// Debrief is the personalized weekly digest for a device.
type Debrief struct {
	CreatedAt      time.Time `json:"creationDate"`
	ExpiresAt      time.Time `json:"expirationDate"`
	NumShoutouts   int       `json:"numShoutouts"`
	NumBookmarks   int       `json:"numBookmarkedArticles"`
	NumRead        int       `json:"numReadArticles"`
	ReadArticles   []Article `json:"readArticles"`
	RandomArticles []Article `json:"randomArticles"`
}

// Expired reports whether the debrief window has closed at now.
func (d Debrief) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}

// OwnerKind distinguishes the two kinds of followable owner.
type OwnerKind int

const (
	OwnerPublication OwnerKind = iota
	OwnerOrganization
)

func (k OwnerKind) String() string {
	if k == OwnerOrganization {
		return "organization"
	}
	return "publication"
}

// OwnerKindOf returns the owner kind content of kind belongs to.
func OwnerKindOf(kind Kind) OwnerKind {
	if kind == KindFlyer {
		return OwnerOrganization
	}
	return OwnerPublication
}
