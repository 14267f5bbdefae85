package usecase

import (
	"strings"

	"github.com/eslsoft/depictor/internal/entity"
)

const (
	_defaultPageSize   = 10
	_defaultThumbWidth = 8000
)

// Settings carries the workflow knobs the usecases share.
type Settings struct {
	// Properties is the allow-list of depicting properties, in display order.
	Properties entity.PropertySet
	PageSize   int
	ThumbWidth int
	// BaseURL is the public address of the tool, used in notification links.
	BaseURL string
}

func (s Settings) properties() entity.PropertySet {
	if len(s.Properties) == 0 {
		return entity.PropertySet{entity.PropertyDepicts}
	}
	return s.Properties
}

func (s Settings) pageSize() int {
	if s.PageSize <= 0 {
		return _defaultPageSize
	}
	return s.PageSize
}

func (s Settings) thumbWidth() int {
	if s.ThumbWidth <= 0 {
		return _defaultThumbWidth
	}
	return s.ThumbWidth
}

// ItemURL links to the item page of the tool.
func (s Settings) ItemURL(itemID string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/item/" + itemID
}

func requireIdentity(identity *entity.Identity) error {
	if !identity.LoggedIn() {
		return entity.Unauthorized(entity.ErrNotLoggedIn, "")
	}
	return nil
}
