package mission

import "github.com/pblhub/missiond/notionapi"

// Classifier partitions a mission document's top-level block stream into
// the eight named sections.
type Classifier struct {
	matcher *Matcher
}

// NewClassifier creates a Classifier with the canonical label table.
func NewClassifier() *Classifier {
	return &Classifier{matcher: NewMatcher()}
}

// Classify walks blocks in order and assigns every one to exactly one
// section, or drops it when no section heading has been seen yet.
//
// Section boundaries come in two structural shapes:
//
//   - a top-level heading_3 whose text matches a section label. A toggle
//     heading (one with children) contributes its children as the section
//     content; a plain heading contributes nothing itself and lets the
//     following siblings accumulate.
//   - a callout wrapping a matching heading_3. The first matching inner
//     heading wins; its own children (toggle) or the callout's remaining
//     children (plain) become the section content, never both. The callout
//     is purely structural and is not descended into further.
//
// A heading whose text matches no label is ordinary content, never an error.
func (c *Classifier) Classify(blocks []notionapi.Block) Sections {
	var sections Sections
	var current SectionKey

	for _, block := range blocks {
		if block.Type == notionapi.TypeHeading3 {
			if key, ok := c.matcher.Match(block.PlainText()); ok {
				current = key
				if len(block.Children) > 0 {
					sections.append(current, block.Children...)
				}
				continue
			}
		}

		if block.Type == notionapi.TypeCallout && len(block.Children) > 0 {
			// Callouts with children are structural wrappers: consumed here
			// whether or not a section heading was found inside.
			c.classifyCallout(&sections, &current, block)
			continue
		}

		if current != "" {
			sections.append(current, block)
		}
	}

	return sections
}

// classifyCallout scans a callout's children for the first section heading.
// Reports whether the callout was consumed as a section boundary.
func (c *Classifier) classifyCallout(sections *Sections, current *SectionKey, callout notionapi.Block) bool {
	for _, child := range callout.Children {
		if child.Type != notionapi.TypeHeading3 {
			continue
		}
		key, ok := c.matcher.Match(child.PlainText())
		if !ok {
			continue
		}

		*current = key
		if len(child.Children) > 0 {
			// Toggle heading: its children are the section content.
			sections.append(key, child.Children...)
		} else {
			// Plain heading: the callout's other children are the content.
			for _, sibling := range callout.Children {
				if sibling.ID != child.ID {
					sections.append(key, sibling)
				}
			}
		}
		return true
	}
	return false
}
