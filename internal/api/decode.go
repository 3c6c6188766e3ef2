package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/five82/herald/internal/feed"
)

type validator interface {
	Validate() error
}

// decodeList decodes a JSON array item by item. Items that fail to decode or
// validate are logged and dropped; the rest of the collection survives. The
// second result counts the raw elements, dropped ones included, so offsets
// advance past malformed entries.
func decodeList[T validator](logger *slog.Logger, field string, raw json.RawMessage) ([]T, int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, 0, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", field, err)
	}

	items := make([]T, 0, len(elems))
	for i, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			logger.Warn("dropping undecodable item", "field", field, "index", i, "error", err)
			continue
		}
		if err := item.Validate(); err != nil {
			logger.Warn("dropping invalid item", "field", field, "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, len(elems), nil
}

// decodeOne decodes a single entity, mapping null to ErrNotFound.
func decodeOne[T validator](field string, raw json.RawMessage) (T, error) {
	var item T
	if len(raw) == 0 || string(raw) == "null" {
		return item, fmt.Errorf("%s: %w", field, ErrNotFound)
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("decode %s: %w", field, err)
	}
	if err := item.Validate(); err != nil {
		return item, fmt.Errorf("decode %s: %w", field, err)
	}
	return item, nil
}

// parseCursor turns an offset cursor into an offset. The empty cursor is the
// first page.
func parseCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(cursor)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid cursor %q", cursor)
	}
	return offset, nil
}

// page wraps decoded items with the cursor for the next offset. A short page
// means the collection is exhausted.
func page[T any](items []T, offset, rawCount, limit int) feed.Page[T] {
	return feed.Page[T]{
		Items:   items,
		Cursor:  strconv.Itoa(offset + rawCount),
		HasMore: rawCount == limit,
	}
}
