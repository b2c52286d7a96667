package gorm

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"
	"gorm.io/gorm/clause"

	"github.com/thewired-org/wired-relay/lib/types"
)

const (
	// DefaultQueryLimit applies when a filter carries no limit.
	DefaultQueryLimit = 500
	// MaxQueryLimit caps any requested limit.
	MaxQueryLimit = 5000
	// DefaultSearchLimit applies to search queries with no limit.
	DefaultSearchLimit = 100
)

// StoreEvent inserts the event keyed by id. Returns false with a nil
// error when the id already exists; duplicates are the expected
// steady-state outcome, not a failure.
func (store *GormStore) StoreEvent(event *nostr.Event) (bool, error) {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary

	tagsJSON, err := json.Marshal(event.Tags)
	if err != nil {
		return false, fmt.Errorf("failed to encode tags: %w", err)
	}

	record := types.EventRecord{
		ID:        event.ID,
		Pubkey:    event.PubKey,
		CreatedAt: int64(event.CreatedAt),
		Kind:      event.Kind,
		Tags:      string(tagsJSON),
		Content:   event.Content,
		Sig:       event.Sig,
		DTag:      firstTagValue(event.Tags, "d"),
		HTag:      firstTagValue(event.Tags, "h"),
	}

	result := store.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if result.Error != nil {
		return false, fmt.Errorf("failed to store event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// QueryEvents compiles the filter into a single conjunctive SELECT,
// newest first. A filter carrying a search term is delegated to the
// full-text path; its other constraints are ignored there.
func (store *GormStore) QueryEvents(filter nostr.Filter) ([]*nostr.Event, error) {
	if filter.Search != "" {
		return store.SearchEvents(filter.Search, filter.Limit)
	}

	query := store.DB.Model(&types.EventRecord{})

	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if len(filter.Authors) > 0 {
		query = query.Where("pubkey IN ?", filter.Authors)
	}
	if len(filter.Kinds) > 0 {
		query = query.Where("kind IN ?", filter.Kinds)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", int64(*filter.Since))
	}
	if filter.Until != nil {
		query = query.Where("created_at <= ?", int64(*filter.Until))
	}

	for tagName, values := range filter.Tags {
		if len(values) == 0 {
			continue
		}
		switch tagName {
		case "h":
			query = query.Where("h_tag IN ?", values)
		case "d":
			query = query.Where("d_tag IN ?", values)
		default:
			// Existential match over the full tag list for #p, #e and any
			// other tag key.
			query = query.Where(store.tagExistsCondition(), tagName, values)
		}
	}

	var records []types.EventRecord
	err := query.Order("created_at DESC").Limit(clampLimit(filter.Limit)).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	return recordsToEvents(records)
}

// SearchEvents performs a ranked full-text search over event content.
// On Postgres this uses the stored tsvector column; the SQLite driver
// falls back to a containment scan so the contract stays testable.
func (store *GormStore) SearchEvents(searchQuery string, limit int) ([]*nostr.Event, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}

	var records []types.EventRecord
	var err error

	if store.DB.Dialector.Name() == "postgres" {
		err = store.DB.Raw(`
			SELECT id, pubkey, created_at, kind, tags, content, sig, d_tag, h_tag
			FROM events
			WHERE search_tsv @@ plainto_tsquery('english', ?)
			ORDER BY ts_rank(search_tsv, plainto_tsquery('english', ?)) DESC
			LIMIT ?`,
			searchQuery, searchQuery, limit,
		).Scan(&records).Error
	} else {
		err = store.DB.
			Where("content LIKE ?", "%"+searchQuery+"%").
			Order("created_at DESC").
			Limit(limit).
			Find(&records).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	return recordsToEvents(records)
}

// DeleteEvent removes the event by id, reporting whether a row existed.
func (store *GormStore) DeleteEvent(eventID string) (bool, error) {
	result := store.DB.Delete(&types.EventRecord{}, "id = ?", eventID)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// tagExistsCondition returns the dialect-specific existential predicate
// matching events that carry at least one tag with the given name whose
// value is in the bound set.
func (store *GormStore) tagExistsCondition() string {
	if store.DB.Dialector.Name() == "postgres" {
		return "EXISTS (SELECT 1 FROM jsonb_array_elements(events.tags) elem" +
			" WHERE elem->>0 = ? AND elem->>1 IN ?)"
	}
	return "EXISTS (SELECT 1 FROM json_each(events.tags)" +
		" WHERE json_extract(json_each.value, '$[0]') = ? AND json_extract(json_each.value, '$[1]') IN ?)"
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}

func firstTagValue(tags nostr.Tags, name string) *string {
	if tag := tags.GetFirst([]string{name}); tag != nil && len(*tag) > 1 {
		value := (*tag)[1]
		return &value
	}
	return nil
}

func recordsToEvents(records []types.EventRecord) ([]*nostr.Event, error) {
	var json = jsoniter.ConfigCompatibleWithStandardLibrary

	events := make([]*nostr.Event, 0, len(records))
	for _, record := range records {
		var tags nostr.Tags
		if record.Tags != "" {
			if err := json.Unmarshal([]byte(record.Tags), &tags); err != nil {
				return nil, fmt.Errorf("failed to decode tags for event %s: %w", record.ID, err)
			}
		}
		events = append(events, &nostr.Event{
			ID:        record.ID,
			PubKey:    record.Pubkey,
			CreatedAt: nostr.Timestamp(record.CreatedAt),
			Kind:      record.Kind,
			Tags:      tags,
			Content:   record.Content,
			Sig:       record.Sig,
		})
	}

	return events, nil
}
