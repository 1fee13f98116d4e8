package game

import "time"

// Rules are the tunable constants of a playthrough.
type Rules struct {
	QuestionTime time.Duration
	SectionSize  int
	Points       int
	TargetCap    int
	AnswerDelay  time.Duration
	TargetDelay  time.Duration
	TimeoutDelay time.Duration
}

// DefaultRules returns a 60 second countdown, sections of 4 and 10 points per hit.
func DefaultRules() Rules {
	return Rules{
		QuestionTime: 60 * time.Second,
		SectionSize:  4,
		Points:       10,
		TargetCap:    10,
		AnswerDelay:  2 * time.Second,
		TargetDelay:  3 * time.Second,
		TimeoutDelay: time.Second,
	}
}
