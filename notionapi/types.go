package notionapi

import "strings"

// Block type discriminators as they appear on the wire.
const (
	TypeParagraph        = "paragraph"
	TypeHeading1         = "heading_1"
	TypeHeading2         = "heading_2"
	TypeHeading3         = "heading_3"
	TypeBulletedListItem = "bulleted_list_item"
	TypeNumberedListItem = "numbered_list_item"
	TypeQuote            = "quote"
	TypeCallout          = "callout"
	TypeCode             = "code"
	TypeImage            = "image"
	TypeVideo            = "video"
	TypeDivider          = "divider"
	TypeTable            = "table"
	TypeTableRow         = "table_row"
	TypeTableOfContents  = "table_of_contents"
	TypeBookmark         = "bookmark"
	TypeToggle           = "toggle"
)

// Annotations carries the style flags of one rich-text run.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// RichText is one typed run of text. PlainText always carries the renderable
// string regardless of annotations.
type RichText struct {
	Type        string      `json:"type,omitempty"`
	Annotations Annotations `json:"annotations"`
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
}

// TextPayload is the body of text-bearing blocks (paragraph, headings,
// list items, quote, toggle).
type TextPayload struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// HeadingPayload is a TextPayload plus the toggle flag headings carry.
type HeadingPayload struct {
	RichText     []RichText `json:"rich_text"`
	Color        string     `json:"color,omitempty"`
	IsToggleable bool       `json:"is_toggleable,omitempty"`
}

// Icon is a callout icon reference.
type Icon struct {
	Type     string    `json:"type"`
	Emoji    string    `json:"emoji,omitempty"`
	External *FileLink `json:"external,omitempty"`
	File     *FileLink `json:"file,omitempty"`
}

// CalloutPayload is the body of a callout wrapper block.
type CalloutPayload struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
	Color    string     `json:"color,omitempty"`
}

// CodePayload is the body of a code block.
type CodePayload struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// FileLink is a URL reference, either a transient signed file URL
// (with expiry) or a stable external URL.
type FileLink struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// MediaPayload is the body of image and video blocks. Type is "file" for
// Notion-hosted media (signed S3 URL, expires) or "external".
type MediaPayload struct {
	Type     string     `json:"type"`
	File     *FileLink  `json:"file,omitempty"`
	External *FileLink  `json:"external,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// TablePayload is the body of a table block; its rows arrive as children.
type TablePayload struct {
	TableWidth      int  `json:"table_width,omitempty"`
	HasColumnHeader bool `json:"has_column_header,omitempty"`
	HasRowHeader    bool `json:"has_row_header,omitempty"`
}

// TableRowPayload is one table row: one rich-text list per cell.
type TableRowPayload struct {
	Cells [][]RichText `json:"cells"`
}

// BookmarkPayload is the body of a bookmark block.
type BookmarkPayload struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

// Block is one node of the document tree. Type selects which payload
// pointer is set; all others stay nil and are omitted on the wire.
//
// Children is populated only by the fetcher when the source reported
// HasChildren; it is absent (nil), not empty, otherwise, and the
// classifier never synthesizes it.
type Block struct {
	Object      string `json:"object,omitempty"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children,omitempty"`
	Archived    bool   `json:"archived,omitempty"`

	Paragraph        *TextPayload     `json:"paragraph,omitempty"`
	Heading1         *HeadingPayload  `json:"heading_1,omitempty"`
	Heading2         *HeadingPayload  `json:"heading_2,omitempty"`
	Heading3         *HeadingPayload  `json:"heading_3,omitempty"`
	BulletedListItem *TextPayload     `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextPayload     `json:"numbered_list_item,omitempty"`
	Quote            *TextPayload     `json:"quote,omitempty"`
	Callout          *CalloutPayload  `json:"callout,omitempty"`
	Code             *CodePayload     `json:"code,omitempty"`
	Image            *MediaPayload    `json:"image,omitempty"`
	Video            *MediaPayload    `json:"video,omitempty"`
	Table            *TablePayload    `json:"table,omitempty"`
	TableRow         *TableRowPayload `json:"table_row,omitempty"`
	Bookmark         *BookmarkPayload `json:"bookmark,omitempty"`
	Toggle           *TextPayload     `json:"toggle,omitempty"`

	Children []Block `json:"children,omitempty"`
}

// PlainText returns the concatenated plain text of the block's rich-text
// runs, or "" for variants that carry none.
func (b *Block) PlainText() string {
	switch b.Type {
	case TypeParagraph:
		return joinPlain(payloadText(b.Paragraph))
	case TypeHeading1:
		return joinPlain(headingText(b.Heading1))
	case TypeHeading2:
		return joinPlain(headingText(b.Heading2))
	case TypeHeading3:
		return joinPlain(headingText(b.Heading3))
	case TypeBulletedListItem:
		return joinPlain(payloadText(b.BulletedListItem))
	case TypeNumberedListItem:
		return joinPlain(payloadText(b.NumberedListItem))
	case TypeQuote:
		return joinPlain(payloadText(b.Quote))
	case TypeCallout:
		if b.Callout == nil {
			return ""
		}
		return joinPlain(b.Callout.RichText)
	case TypeCode:
		if b.Code == nil {
			return ""
		}
		return joinPlain(b.Code.RichText)
	case TypeToggle:
		return joinPlain(payloadText(b.Toggle))
	default:
		return ""
	}
}

func payloadText(p *TextPayload) []RichText {
	if p == nil {
		return nil
	}
	return p.RichText
}

func headingText(p *HeadingPayload) []RichText {
	if p == nil {
		return nil
	}
	return p.RichText
}

func joinPlain(runs []RichText) string {
	if len(runs) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.PlainText)
	}
	return sb.String()
}
