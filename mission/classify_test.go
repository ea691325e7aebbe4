package mission

import (
	"fmt"
	"testing"

	"github.com/pblhub/missiond/notionapi"
)

// Block construction helpers. IDs are synthetic but unique per call.

var blockSeq int

func nextID() string {
	blockSeq++
	return fmt.Sprintf("blk-%d", blockSeq)
}

func runs(text string) []notionapi.RichText {
	return []notionapi.RichText{{Type: "text", PlainText: text}}
}

func h3(text string, children ...notionapi.Block) notionapi.Block {
	return notionapi.Block{
		ID:       nextID(),
		Type:     notionapi.TypeHeading3,
		Heading3: &notionapi.HeadingPayload{RichText: runs(text), IsToggleable: len(children) > 0},
		Children: children,
	}
}

func para(text string) notionapi.Block {
	return notionapi.Block{
		ID:        nextID(),
		Type:      notionapi.TypeParagraph,
		Paragraph: &notionapi.TextPayload{RichText: runs(text)},
	}
}

func bullet(text string, children ...notionapi.Block) notionapi.Block {
	return notionapi.Block{
		ID:               nextID(),
		Type:             notionapi.TypeBulletedListItem,
		BulletedListItem: &notionapi.TextPayload{RichText: runs(text)},
		Children:         children,
	}
}

func callout(children ...notionapi.Block) notionapi.Block {
	return notionapi.Block{
		ID:       nextID(),
		Type:     notionapi.TypeCallout,
		Callout:  &notionapi.CalloutPayload{},
		Children: children,
	}
}

func countBlocks(s Sections) int {
	n := 0
	for _, key := range SectionKeys {
		n += len(s.Get(key))
	}
	return n
}

func TestClassify_PlainHeadingCollectsSiblings(t *testing.T) {
	// WHAT: A non-toggle section heading opens a section; the following
	// siblings accumulate into it until the next boundary.
	c := NewClassifier()

	sections := c.Classify([]notionapi.Block{
		h3("5. 기능 요구 사항"),
		para("첫 번째 문단"),
		bullet("로그인 기능 구현"),
		h3("6. 결과 예시"),
		para("예시 화면"),
	})

	if got := len(sections.Guidelines); got != 2 {
		t.Fatalf("guidelines: got %d blocks", got)
	}
	if got := len(sections.Example); got != 1 {
		t.Fatalf("example: got %d blocks", got)
	}
	if sections.Guidelines[0].PlainText() != "첫 번째 문단" {
		t.Errorf("guidelines[0]: got %q", sections.Guidelines[0].PlainText())
	}
}

func TestClassify_ToggleHeadingContributesChildren(t *testing.T) {
	// WHAT: A toggle section heading contributes its children as the
	// section content; later siblings still accumulate after it.
	c := NewClassifier()

	sections := c.Classify([]notionapi.Block{
		h3("5. 기능 요구 사항",
			bullet("요구 사항 A"),
			bullet("요구 사항 B"),
		),
		para("추가 설명"),
	})

	if got := len(sections.Guidelines); got != 3 {
		t.Fatalf("guidelines: got %d blocks", got)
	}
	if sections.Guidelines[0].PlainText() != "요구 사항 A" {
		t.Errorf("guidelines[0]: got %q", sections.Guidelines[0].PlainText())
	}
	if sections.Guidelines[2].PlainText() != "추가 설명" {
		t.Errorf("guidelines[2]: got %q", sections.Guidelines[2].PlainText())
	}
}

func TestClassify_CalloutWithToggleHeading(t *testing.T) {
	// WHAT: A callout wrapping a toggle section heading contributes the
	// heading's children only, never the callout's other children too.
	c := NewClassifier()

	sections := c.Classify([]notionapi.Block{
		callout(
			h3("2. 과제 목표",
				para("목표 내용"),
			),
			para("콜아웃 장식 문단"),
		),
	})

	if got := len(sections.Objective); got != 1 {
		t.Fatalf("objective: got %d blocks", got)
	}
	if sections.Objective[0].PlainText() != "목표 내용" {
		t.Errorf("objective[0]: got %q", sections.Objective[0].PlainText())
	}
}

func TestClassify_CalloutWithPlainHeading(t *testing.T) {
	// WHAT: A callout wrapping a plain section heading contributes the
	// callout's remaining children, excluding the heading itself.
	c := NewClassifier()

	sections := c.Classify([]notionapi.Block{
		callout(
			h3("2. 과제 목표"),
			para("목표 설명 하나"),
			para("목표 설명 둘"),
		),
	})

	if got := len(sections.Objective); got != 2 {
		t.Fatalf("objective: got %d blocks", got)
	}
	for _, b := range sections.Objective {
		if b.Type == notionapi.TypeHeading3 {
			t.Error("heading leaked into section content")
		}
	}
}

func TestClassify_UnmatchedCalloutConsumed(t *testing.T) {
	// WHAT: A callout with children but no section heading inside is
	// consumed by the scan, not appended as ordinary content.
	c := NewClassifier()

	sections := c.Classify([]notionapi.Block{
		h3("1. 미션 소개"),
		callout(para("경고 박스")),
		para("소개 본문"),
	})

	if got := len(sections.Introduction); got != 1 {
		t.Fatalf("introduction: got %d blocks", got)
	}
	if sections.Introduction[0].PlainText() != "소개 본문" {
		t.Errorf("introduction[0]: got %q", sections.Introduction[0].PlainText())
	}
}

func TestClassify_ChildlessCalloutIsContent(t *testing.T) {
	// WHAT: A callout without children is ordinary content for the open
	// section.
	c := NewClassifier()

	sections := c.Classify([]notionapi.Block{
		h3("1. 미션 소개"),
		callout(),
	})

	if got := len(sections.Introduction); got != 1 {
		t.Fatalf("introduction: got %d blocks", got)
	}
}

func TestClassify_BlocksBeforeFirstHeadingDropped(t *testing.T) {
	// WHAT: Content before any section heading belongs to no section.
	c := NewClassifier()

	sections := c.Classify([]notionapi.Block{
		para("머리말"),
		h3("1. 미션 소개"),
		para("본문"),
	})

	if got := countBlocks(sections); got != 1 {
		t.Fatalf("total blocks: got %d, want 1", got)
	}
}

func TestClassify_NonSectionHeadingIsContent(t *testing.T) {
	// WHAT: A heading_3 that matches no label is ordinary content.
	c := NewClassifier()

	sections := c.Classify([]notionapi.Block{
		h3("5. 기능 요구 사항"),
		h3("참고 자료"),
		para("링크 목록"),
	})

	if got := len(sections.Guidelines); got != 2 {
		t.Fatalf("guidelines: got %d blocks", got)
	}
}

func TestClassify_DisjointPartition(t *testing.T) {
	// WHAT: Every top-level block lands in exactly one section (or is
	// dropped); the section totals account for the whole document.
	c := NewClassifier()

	doc := []notionapi.Block{
		para("dropped preamble"),
		h3("1. 미션 소개"),
		para("intro 1"),
		para("intro 2"),
		h3("2. 과제 목표"),
		bullet("obj 1"),
		h3("8. 보너스 과제"),
		para("bonus 1"),
	}
	sections := c.Classify(doc)

	if got := countBlocks(sections); got != 4 {
		t.Fatalf("total classified: got %d, want 4", got)
	}
	if len(sections.Introduction) != 2 || len(sections.Objective) != 1 || len(sections.Bonus) != 1 {
		t.Errorf("partition: intro=%d obj=%d bonus=%d",
			len(sections.Introduction), len(sections.Objective), len(sections.Bonus))
	}
}

func TestClassify_FullDocumentOrder(t *testing.T) {
	// WHAT: All eight sections populate from one document in canonical
	// order, mixing the two boundary shapes.
	c := NewClassifier()

	doc := []notionapi.Block{
		h3("1. 미션 소개"), para("a"),
		callout(h3("2. 과제 목표"), para("b")),
		h3("3. 최종 결과물", para("c")),
		h3("4. 목표 수행 시간"), para("d"),
		h3("5. 기능 요구 사항"), bullet("e"),
		h3("6. 결과 예시"), para("f"),
		h3("7. 제약 사항"), para("g"),
		h3("8. 보너스 과제"), para("h"),
	}
	sections := c.Classify(doc)

	for _, key := range SectionKeys {
		if got := len(sections.Get(key)); got != 1 {
			t.Errorf("%s: got %d blocks, want 1", key, got)
		}
	}
}
