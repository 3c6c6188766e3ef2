package analytics

import (
	"time"

	"github.com/five82/herald/internal/content"
)

// Action is the user action an event reports.
type Action string

const (
	ActionOpen       Action = "open"
	ActionShare      Action = "share"
	ActionShoutout   Action = "shoutout"
	ActionBookmark   Action = "bookmark"
	ActionUnbookmark Action = "unbookmark"
	ActionFollow     Action = "follow"
	ActionUnfollow   Action = "unfollow"
)

// NavigationSource records where in the client the action started.
type NavigationSource string

const (
	SourceUnspecified       NavigationSource = "unspecified"
	SourceTrendingArticles  NavigationSource = "trending_articles"
	SourceFollowingArticles NavigationSource = "following_articles"
	SourcePublicationList   NavigationSource = "publication_list"
	SourceMagazineList      NavigationSource = "magazine_list"
	SourceFlyerList         NavigationSource = "flyer_list"
	SourceSearch            NavigationSource = "search"
	SourceBookmarks         NavigationSource = "bookmarks"
	SourceWeeklyDebrief     NavigationSource = "weekly_debrief"
	SourcePush              NavigationSource = "push_notification"
	SourceWidget            NavigationSource = "widget"
)

// Subject is what an action applies to: a content kind or an owner kind.
type Subject string

// SubjectOfKind names the subject for content of kind.
func SubjectOfKind(kind content.Kind) Subject { return Subject(kind.String()) }

// SubjectOfOwner names the subject for an owner of kind.
func SubjectOfOwner(kind content.OwnerKind) Subject { return Subject(kind.String()) }

// EventName composes the event name for action on subject, for example
// "article_shoutout" or "publication_follow".
func EventName(action Action, subject Subject) string {
	return string(subject) + "_" + string(action)
}

// Event is one analytics record. Every event carries the entity id, the
// navigation source and the device id.
type Event struct {
	Name     string           `json:"name"`
	Action   Action           `json:"action"`
	Subject  Subject          `json:"subject"`
	Entity   string           `json:"entity"`
	Source   NavigationSource `json:"source"`
	DeviceID string           `json:"device_id"`
	Time     time.Time        `json:"time"`
}

// NewEvent builds the event for action on entity of subject.
func NewEvent(action Action, subject Subject, entity string, source NavigationSource, deviceID string, at time.Time) Event {
	if source == "" {
		source = SourceUnspecified
	}
	return Event{
		Name:     EventName(action, subject),
		Action:   action,
		Subject:  subject,
		Entity:   entity,
		Source:   source,
		DeviceID: deviceID,
		Time:     at,
	}
}
