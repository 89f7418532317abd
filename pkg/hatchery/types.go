package hatchery

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Goose is the persisted record created by the pipeline.
type Goose struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Slug        string    `json:"slug"`
	Image       string    `json:"image"`
	Likes       int64     `json:"likes"`
	Timestamp   time.Time `json:"timestamp"`
}

// AssetSource is where the submitted image lives. It is either AssetOnDisk or
// AssetInMemory.
type AssetSource interface {
	isAssetSource()
}

// AssetOnDisk is an image that is already a readable file on local storage.
type AssetOnDisk struct {
	Path string
}

// AssetInMemory is an image held in memory. It is written to a temporary file
// before upload.
type AssetInMemory struct {
	Data []byte
}

func (AssetOnDisk) isAssetSource()   {}
func (AssetInMemory) isAssetSource() {}

// SortKey orders goose listings.
type SortKey string

// Sort key constants (typed).
const (
	SortNameAsc  SortKey = "name asc"
	SortNameDesc SortKey = "name desc"
	SortTimeAsc  SortKey = "time asc"
	SortTimeDesc SortKey = "time desc"
)

// SortKeys lists every accepted sort key.
var SortKeys = []SortKey{SortNameAsc, SortNameDesc, SortTimeAsc, SortTimeDesc}

// IsValid reports whether k is one of the accepted sort keys.
func (k SortKey) IsValid() bool {
	switch k {
	case SortNameAsc, SortNameDesc, SortTimeAsc, SortTimeDesc:
		return true
	}
	return false
}

// ListParams selects a page of geese.
type ListParams struct {
	Sort  SortKey
	Limit int
	Page  int
}

// Offset returns the number of geese skipped before the page starts. It
// saturates at math.MaxInt rather than overflowing.
func (p ListParams) Offset() int {
	if p.Page <= 0 || p.Limit <= 0 {
		return 0
	}
	if p.Page > MaxPage(p.Limit) {
		return math.MaxInt
	}
	return p.Page * p.Limit
}

// MaxPage is the largest page whose offset fits in an int for limit.
func MaxPage(limit int) int {
	if limit <= 0 {
		return 0
	}
	return math.MaxInt / limit
}
