package domain

import (
	"fmt"
	"strings"
)

// QuestionKind tells the host which input the current question expects.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multipleChoice"
	KindImageTarget    QuestionKind = "imageTarget"
)

// ImageTargetQuestion asks the player to find a physical marker with the camera.
type ImageTargetQuestion struct {
	Prompt    string `json:"prompt" yaml:"prompt"`
	TargetRef string `json:"targetRef" yaml:"targetRef"`
}

// MultipleChoiceQuestion has exactly one correct alternative.
type MultipleChoiceQuestion struct {
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Alternatives []string `json:"alternatives" yaml:"alternatives"`
	CorrectIndex int      `json:"correctIndex" yaml:"correctIndex"`
}

// Content is the immutable question set of one game.
// Each section is one image target followed by sectionSize multiple-choice questions.
type Content struct {
	ID             string                   `json:"id" yaml:"id"`
	Targets        []ImageTargetQuestion    `json:"targets" yaml:"targets"`
	MultipleChoice []MultipleChoiceQuestion `json:"multipleChoice" yaml:"multipleChoice"`
}

// TotalQuestions counts every slot a session will visit.
func (c Content) TotalQuestions() int {
	return len(c.Targets) + len(c.MultipleChoice)
}

// Validate checks that the content fits the target-then-section layout.
func (c Content) Validate(sectionSize int) error {
	if sectionSize <= 0 {
		return fmt.Errorf("%w: section size must be positive, got %d", ErrInvalidContent, sectionSize)
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("%w: content %q has no image targets", ErrInvalidContent, c.ID)
	}
	if want := sectionSize * len(c.Targets); len(c.MultipleChoice) != want {
		return fmt.Errorf("%w: content %q needs %d multiple-choice questions for %d targets, has %d",
			ErrInvalidContent, c.ID, want, len(c.Targets), len(c.MultipleChoice))
	}
	for i, t := range c.Targets {
		if strings.TrimSpace(t.Prompt) == "" {
			return fmt.Errorf("%w: target %d has an empty prompt", ErrInvalidContent, i)
		}
	}
	for i, q := range c.MultipleChoice {
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("%w: question %d has an empty prompt", ErrInvalidContent, i)
		}
		if len(q.Alternatives) == 0 {
			return fmt.Errorf("%w: question %d has no alternatives", ErrInvalidContent, i)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Alternatives) {
			return fmt.Errorf("%w: question %d correct index %d out of range", ErrInvalidContent, i, q.CorrectIndex)
		}
	}
	return nil
}
