package mission

import "github.com/pblhub/missiond/notionapi"

// SectionKey names one of the eight fixed logical regions of a mission
// document.
type SectionKey string

const (
	SectionIntroduction SectionKey = "introduction"
	SectionObjective    SectionKey = "objective"
	SectionResult       SectionKey = "result"
	SectionTimeGoal     SectionKey = "timeGoal"
	SectionGuidelines   SectionKey = "guidelines"
	SectionExample      SectionKey = "example"
	SectionConstraints  SectionKey = "constraints"
	SectionBonus        SectionKey = "bonus"
)

// SectionKeys lists all section keys in document order.
var SectionKeys = []SectionKey{
	SectionIntroduction,
	SectionObjective,
	SectionResult,
	SectionTimeGoal,
	SectionGuidelines,
	SectionExample,
	SectionConstraints,
	SectionBonus,
}

// Sections holds the classified block lists of one mission document.
// The eight lists are mutually exclusive partitions of the top-level block
// stream; a block's own children travel with it into its section.
type Sections struct {
	Introduction []notionapi.Block `json:"introduction"`
	Objective    []notionapi.Block `json:"objective"`
	Result       []notionapi.Block `json:"result"`
	TimeGoal     []notionapi.Block `json:"timeGoal"`
	Guidelines   []notionapi.Block `json:"guidelines"`
	Example      []notionapi.Block `json:"example"`
	Constraints  []notionapi.Block `json:"constraints"`
	Bonus        []notionapi.Block `json:"bonus"`
}

// Get returns the block list for key. Unknown keys return nil.
func (s *Sections) Get(key SectionKey) []notionapi.Block {
	if b := s.bucket(key); b != nil {
		return *b
	}
	return nil
}

func (s *Sections) bucket(key SectionKey) *[]notionapi.Block {
	switch key {
	case SectionIntroduction:
		return &s.Introduction
	case SectionObjective:
		return &s.Objective
	case SectionResult:
		return &s.Result
	case SectionTimeGoal:
		return &s.TimeGoal
	case SectionGuidelines:
		return &s.Guidelines
	case SectionExample:
		return &s.Example
	case SectionConstraints:
		return &s.Constraints
	case SectionBonus:
		return &s.Bonus
	default:
		return nil
	}
}

func (s *Sections) append(key SectionKey, blocks ...notionapi.Block) {
	if b := s.bucket(key); b != nil {
		*b = append(*b, blocks...)
	}
}
