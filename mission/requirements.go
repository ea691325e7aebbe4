package mission

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pblhub/missiond/notionapi"
)

// Requirement is one derived checklist entry from the guidelines section.
type Requirement struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	IsRequired bool   `json:"isRequired"`
	Category   string `json:"category,omitempty"`
}

// RequirementExtractor derives checklist requirements from a section's
// block list. Two strategies exist in the wild (list-item scanning and
// heading-step scanning); they are kept as separate implementations and
// selected by configuration, never merged.
type RequirementExtractor interface {
	Extract(blocks []notionapi.Block) []Requirement
}

// NewExtractor returns the extractor named by strategy: "list" (default
// when empty) or "steps".
func NewExtractor(strategy string) (RequirementExtractor, error) {
	switch strategy {
	case "", "list":
		return ListItemExtractor{}, nil
	case "steps":
		return HeadingStepExtractor{}, nil
	default:
		return nil, fmt.Errorf("mission: unknown extractor strategy %q", strategy)
	}
}

// optionalMarker detects the "[선택]", "(선택)" or "선택:" optional tag in a
// requirement's raw text.
var optionalMarker = regexp.MustCompile(`(?i)\[선택\]|\(선택\)|선택\s*:`)

// ListItemExtractor walks every bulleted and numbered list item in the
// section tree, in document order, nested children included. Each item with
// non-empty text becomes one requirement: the optional marker sets
// IsRequired=false and is stripped from the title, and the nearest
// preceding heading_3 text becomes the category. IDs are sequential.
type ListItemExtractor struct{}

func (ListItemExtractor) Extract(blocks []notionapi.Block) []Requirement {
	var reqs []Requirement
	var category string
	index := 0

	var walk func(blocks []notionapi.Block)
	walk = func(blocks []notionapi.Block) {
		for _, block := range blocks {
			if block.Type == notionapi.TypeHeading3 {
				category = block.PlainText()
			}

			if block.Type == notionapi.TypeBulletedListItem || block.Type == notionapi.TypeNumberedListItem {
				text := block.PlainText()
				if strings.TrimSpace(text) == "" {
					continue
				}

				optional := optionalMarker.MatchString(text)
				title := strings.TrimSpace(optionalMarker.ReplaceAllString(text, ""))

				reqs = append(reqs, Requirement{
					ID:         fmt.Sprintf("req-%d", index),
					Title:      title,
					IsRequired: !optional,
					Category:   category,
				})
				index++

				// Nested items are separate requirements, not descriptions.
				if len(block.Children) > 0 {
					walk(block.Children)
				}
			}
		}
	}

	walk(blocks)
	return reqs
}

// stepPrefix parses the leading "N. " numeral off a heading text.
var stepPrefix = regexp.MustCompile(`^\s*(\d+)\.\s*`)

// HeadingStepExtractor walks every heading_3 anywhere in the section tree
// and turns each into one unconditionally-required step: the block's own ID
// is the requirement ID, the de-prefixed text the title, and the numeral
// yields a "Step N" category.
type HeadingStepExtractor struct{}

func (HeadingStepExtractor) Extract(blocks []notionapi.Block) []Requirement {
	var reqs []Requirement

	var walk func(blocks []notionapi.Block)
	walk = func(blocks []notionapi.Block) {
		for _, block := range blocks {
			if block.Type == notionapi.TypeHeading3 {
				text := block.PlainText()
				if strings.TrimSpace(text) != "" {
					req := Requirement{
						ID:         block.ID,
						Title:      strings.TrimSpace(text),
						IsRequired: true,
					}
					if m := stepPrefix.FindStringSubmatch(text); m != nil {
						req.Title = strings.TrimSpace(stepPrefix.ReplaceAllString(text, ""))
						req.Category = "Step " + m[1]
					}
					reqs = append(reqs, req)
				}
			}
			if len(block.Children) > 0 {
				walk(block.Children)
			}
		}
	}

	walk(blocks)
	return reqs
}
