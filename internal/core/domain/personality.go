package domain

import "time"

// PersonalityResult is a completed MBTI assessment for a user. The type code
// arrives already computed; this service only persists and serves results.
type PersonalityResult struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	MbtiType          string    `json:"mbti_type"`
	AIDescription     string    `json:"ai_description,omitempty"`
	StaticDescription string    `json:"static_description"`
	CreatedAt         time.Time `json:"created_at"`
}

// validMbtiTypes is the closed set of 16 four-letter type codes.
var validMbtiTypes = map[string]struct{}{
	"ISTJ": {}, "ISFJ": {}, "INFJ": {}, "INTJ": {},
	"ISTP": {}, "ISFP": {}, "INFP": {}, "INTP": {},
	"ESTP": {}, "ESFP": {}, "ENFP": {}, "ENTP": {},
	"ESTJ": {}, "ESFJ": {}, "ENFJ": {}, "ENTJ": {},
}

// IsValidMbtiType reports whether code is one of the 16 MBTI type codes.
func IsValidMbtiType(code string) bool {
	_, ok := validMbtiTypes[code]
	return ok
}
