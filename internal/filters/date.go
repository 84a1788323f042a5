package filters

import (
	"errors"
	"fmt"
	"time"

	"github.com/rebron1900/bymattlee-11ty-starter/internal/model"
)

// ErrEmptyCollection is returned by RSSLastUpdatedDate for empty input.
var ErrEmptyCollection = errors.New("collection is empty in rssLastUpdatedDate filter")

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime accepts a time.Time, *time.Time or an ISO 8601 string.
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, errors.New("nil time")
		}
		return *t, nil
	case string:
		for _, layout := range isoLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid ISO date %q", t)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

// HTMLDate formats a date as yyyy-MM-dd in UTC.
func HTMLDate(v any) (string, error) {
	t, err := toTime(v)
	if err != nil {
		return "", err
	}
	return t.UTC().Format("2006-01-02"), nil
}

// ReadableDate formats a date as "01 May 2023".
func ReadableDate(v any) (string, error) {
	t, err := toTime(v)
	if err != nil {
		return "", err
	}
	return t.UTC().Format("02 Jan 2006"), nil
}

// RSSDate formats a date for feeds (RFC 3339, UTC).
func RSSDate(v any) (string, error) {
	t, err := toTime(v)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(time.RFC3339), nil
}

// RSSLastUpdatedDate returns the newest publish date of posts, formatted
// for feeds. It fails on an empty collection.
func RSSLastUpdatedDate(posts []*model.Post) (string, error) {
	if len(posts) == 0 {
		return "", ErrEmptyCollection
	}

	newest := posts[0].PublishedAt
	for _, p := range posts[1:] {
		if p.PublishedAt.After(newest) {
			newest = p.PublishedAt
		}
	}
	return newest.UTC().Format(time.RFC3339), nil
}
