package enums

import "fmt"

// KnowledgeStatus tracks a submitted learning item through extraction.
type KnowledgeStatus string

const (
	KnowledgeProcessing KnowledgeStatus = "PROCESSING"
	KnowledgeLearned    KnowledgeStatus = "LEARNED"
	KnowledgeError      KnowledgeStatus = "ERROR"
)

var validKnowledgeStatuses = []KnowledgeStatus{
	KnowledgeProcessing,
	KnowledgeLearned,
	KnowledgeError,
}

// String implements fmt.Stringer.
func (s KnowledgeStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s KnowledgeStatus) IsValid() bool {
	for _, candidate := range validKnowledgeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseKnowledgeStatus converts raw input into a KnowledgeStatus.
func ParseKnowledgeStatus(value string) (KnowledgeStatus, error) {
	for _, candidate := range validKnowledgeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid knowledge status %q", value)
}

// KnowledgeType is the kind of source material behind a knowledge item.
type KnowledgeType string

const (
	KnowledgeTypeVideo KnowledgeType = "VIDEO"
	KnowledgeTypeDocx  KnowledgeType = "DOCX"
	KnowledgeTypeText  KnowledgeType = "TEXT"
)

var validKnowledgeTypes = []KnowledgeType{
	KnowledgeTypeVideo,
	KnowledgeTypeDocx,
	KnowledgeTypeText,
}

// String implements fmt.Stringer.
func (t KnowledgeType) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t KnowledgeType) IsValid() bool {
	for _, candidate := range validKnowledgeTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseKnowledgeType converts raw input into a KnowledgeType.
func ParseKnowledgeType(value string) (KnowledgeType, error) {
	for _, candidate := range validKnowledgeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid knowledge type %q", value)
}
