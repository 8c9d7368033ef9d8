package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "Draft"
	BlogStatusPublished BlogStatus = "Published"
)

// BlogBlock is one structured content block of a post.
type BlogBlock struct {
	Type     string   `json:"type"`
	Level    int      `json:"level,omitempty"`
	Items    []string `json:"items,omitempty"`
	Text     string   `json:"text,omitempty"`
	Language string   `json:"language,omitempty"`
}

var blogBlockTypes = map[string]bool{
	"paragraph": true,
	"heading":   true,
	"list":      true,
	"quote":     true,
	"code":      true,
}

// ValidateBlocks rejects empty content and unknown block types.
func ValidateBlocks(blocks []BlogBlock) error {
	if len(blocks) == 0 {
		return fmt.Errorf("content cannot be empty")
	}
	for i, b := range blocks {
		if !blogBlockTypes[b.Type] {
			return fmt.Errorf("unknown content block type %q at index %d", b.Type, i)
		}
	}
	return nil
}

type SEOMetadata struct {
	MetaTitle       string                      `json:"meta_title"`
	MetaDescription string                      `json:"meta_description"`
	Keywords        datatypes.JSONSlice[string] `json:"keywords"`
}

type Blog struct {
	gorm.Model
	Title         string                         `json:"title" gorm:"not null"`
	Slug          string                         `json:"slug" gorm:"uniqueIndex;not null"`
	Content       datatypes.JSONSlice[BlogBlock] `json:"content"`
	AuthorName    string                         `json:"author_name" gorm:"size:255"`
	AuthorImage   string                         `json:"author_image"`
	CreatedByID   uint                           `json:"created_by_id" gorm:"index"`
	CreatedBy     User                           `json:"created_by" gorm:"foreignKey:CreatedByID"`
	Tags          datatypes.JSONSlice[string]    `json:"tags"`
	Category      string                         `json:"category" gorm:"size:100"`
	FeaturedImage string                         `json:"featured_image"`
	ImageAltText  string                         `json:"image_alt_text"`
	Status        BlogStatus                     `json:"status" gorm:"size:20;default:'Draft'"`
	PublishedDate *time.Time                     `json:"published_date"`
	Excerpt       string                         `json:"excerpt" gorm:"type:text"`
	SEOMetadata   SEOMetadata                    `json:"seo_metadata" gorm:"embedded;embeddedPrefix:seo_"`
	Likes         int                            `json:"likes" gorm:"default:0"`
	Views         int                            `json:"views" gorm:"default:0"`
	ReadingTime   int                            `json:"reading_time" gorm:"default:0"`
	IsFeatured    bool                           `json:"is_featured" gorm:"default:false"`
	Visibility    string                         `json:"visibility" gorm:"size:20;default:'Public'"`
}
