package mission

import "strings"

// sectionLabels maps the canonical heading text of each section, in
// document order. The numeral prefix doubles as the fuzzy-match anchor.
var sectionLabels = []struct {
	Label string
	Key   SectionKey
}{
	{"1. 미션 소개", SectionIntroduction},
	{"2. 과제 목표", SectionObjective},
	{"3. 최종 결과물", SectionResult},
	{"4. 목표 수행 시간", SectionTimeGoal},
	{"5. 기능 요구 사항", SectionGuidelines},
	{"6. 결과 예시", SectionExample},
	{"7. 제약 사항", SectionConstraints},
	{"8. 보너스 과제", SectionBonus},
}

// Matcher resolves heading text to a section key. Matching is exact first,
// then falls back to a normalized numeral-prefix comparison to tolerate
// formatting drift in the source ("1.미션소개" matches "1. 미션 소개").
type Matcher struct {
	exact    map[string]SectionKey
	prefixes []prefixEntry
}

type prefixEntry struct {
	prefix string // normalized "N." anchor
	key    SectionKey
}

// NewMatcher builds a Matcher over the canonical section label table.
func NewMatcher() *Matcher {
	m := &Matcher{exact: make(map[string]SectionKey, len(sectionLabels))}
	for _, sl := range sectionLabels {
		m.exact[sl.Label] = sl.Key
		num, _, found := strings.Cut(normalizeLabel(sl.Label), ".")
		if found {
			m.prefixes = append(m.prefixes, prefixEntry{prefix: num + ".", key: sl.Key})
		}
	}
	return m
}

// Match resolves text to a section key. The first qualifying label wins.
func (m *Matcher) Match(text string) (SectionKey, bool) {
	trimmed := strings.TrimSpace(text)
	if key, ok := m.exact[trimmed]; ok {
		return key, true
	}

	normalized := normalizeLabel(trimmed)
	for _, p := range m.prefixes {
		if strings.HasPrefix(normalized, p.prefix) {
			return p.key, true
		}
	}
	return "", false
}

// normalizeLabel strips all whitespace and lowercases, so the comparison
// only sees the numeral prefix and the label characters themselves.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
