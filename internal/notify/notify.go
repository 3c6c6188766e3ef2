// Package notify parses push notification payloads and routes them to the
// screen they point at.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Type discriminates push payloads.
type Type string

const (
	TypeNewArticle    Type = "new_article"
	TypeWeeklyDebrief Type = "weekly_debrief"
)

var (
	// ErrUnknownType is returned for payloads with an unrecognized type.
	ErrUnknownType = errors.New("unknown notification type")
	// ErrMissingArticle is returned for new_article payloads without an id.
	ErrMissingArticle = errors.New("notification has no article id")
)

// Route is a parsed payload.
type Route struct {
	Type      Type   `json:"type"`
	ArticleID string `json:"articleID,omitempty"`
}

type payload struct {
	Type      string `json:"notificationType"`
	ArticleID string `json:"articleID"`
}

// Parse decodes a push payload.
func Parse(data []byte) (Route, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Route{}, fmt.Errorf("decode notification: %w", err)
	}
	switch Type(strings.TrimSpace(p.Type)) {
	case TypeNewArticle:
		id := strings.TrimSpace(p.ArticleID)
		if id == "" {
			return Route{}, ErrMissingArticle
		}
		return Route{Type: TypeNewArticle, ArticleID: id}, nil
	case TypeWeeklyDebrief:
		return Route{Type: TypeWeeklyDebrief}, nil
	}
	return Route{}, fmt.Errorf("%w: %q", ErrUnknownType, p.Type)
}

// Router opens the destinations a notification can point at.
type Router interface {
	OpenArticle(ctx context.Context, id string) error
	OpenDebrief(ctx context.Context) error
}

// Dispatch parses data and hands it to router.
func Dispatch(ctx context.Context, data []byte, router Router) (Route, error) {
	route, err := Parse(data)
	if err != nil {
		return Route{}, err
	}
	switch route.Type {
	case TypeNewArticle:
		err = router.OpenArticle(ctx, route.ArticleID)
	case TypeWeeklyDebrief:
		err = router.OpenDebrief(ctx)
	}
	if err != nil {
		return route, fmt.Errorf("route %s: %w", route.Type, err)
	}
	return route, nil
}
