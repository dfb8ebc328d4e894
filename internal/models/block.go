package models

import (
	"cmp"
	"slices"
	"strings"
)

// BlockType is the discriminant of a content block.
type BlockType string

const (
	BlockTypeText     BlockType = "text"
	BlockTypeImage    BlockType = "image"
	BlockTypeQuote    BlockType = "quote"
	BlockTypeCode     BlockType = "code"
	BlockTypeVideo    BlockType = "video"
	BlockTypeEquation BlockType = "equation"
	BlockTypeGallery  BlockType = "gallery"
	BlockTypeCarousel BlockType = "carousel"
)

var blockTypes = []BlockType{
	BlockTypeText,
	BlockTypeImage,
	BlockTypeQuote,
	BlockTypeCode,
	BlockTypeVideo,
	BlockTypeEquation,
	BlockTypeGallery,
	BlockTypeCarousel,
}

// BlockTypes returns the closed set of block kinds the renderer understands.
func BlockTypes() []BlockType {
	return slices.Clone(blockTypes)
}

// Known reports whether t is one of BlockTypes.
func (t BlockType) Known() bool {
	return slices.Contains(blockTypes, t)
}

// GalleryItem is one picture of a gallery or carousel block.
type GalleryItem struct {
	URL     string  `json:"url"`
	Caption *string `json:"caption,omitempty"`
	Alt     *string `json:"alt,omitempty"`
}

// Block is one unit of article content. Only the fields of the variant named
// by BlockType are populated; nullable backend fields are pointers.
type Block struct {
	ID        string    `json:"id"`
	Order     int       `json:"order"`
	BlockType BlockType `json:"block_type"`

	TextContent *string `json:"text_content,omitempty"`

	ImageURLResolved *string `json:"image_url_resolved,omitempty"`
	ImageURL         *string `json:"image_url,omitempty"`
	Image            *string `json:"image,omitempty"`
	ImageCaption     *string `json:"image_caption,omitempty"`
	ImageAlt         *string `json:"image_alt,omitempty"`

	QuoteText   *string `json:"quote_text,omitempty"`
	QuoteAuthor *string `json:"quote_author,omitempty"`

	CodeContent  *string `json:"code_content,omitempty"`
	CodeLanguage *string `json:"code_language,omitempty"`

	VideoURL     *string `json:"video_url,omitempty"`
	VideoCaption *string `json:"video_caption,omitempty"`

	EquationContent *string `json:"equation_content,omitempty"`

	GalleryData []GalleryItem `json:"gallery_data,omitempty"`
}

// ImageSource returns the first non-null of image_url_resolved, image_url and image.
func (b Block) ImageSource() string {
	for _, candidate := range []*string{b.ImageURLResolved, b.ImageURL, b.Image} {
		if candidate != nil {
			return *candidate
		}
	}
	return ""
}

// SortBlocks returns a copy of blocks ordered by Order. Blocks sharing an
// order keep the sequence they were fetched in.
func SortBlocks(blocks []Block) []Block {
	out := slices.Clone(blocks)
	slices.SortStableFunc(out, func(a, b Block) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// IsBlank reports whether s is nil or only whitespace.
func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
