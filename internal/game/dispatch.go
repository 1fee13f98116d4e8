package game

import "arquiz-service/internal/domain"

// dispatcher maps a session position to the question shown there.
// Position 0 of every stride is an image target; the rest walk a shuffled section.
type dispatcher struct {
	content     domain.Content
	sectionSize int
	orders      [][]int
}

func (d dispatcher) stride() int {
	return d.sectionSize + 1
}

func (d dispatcher) kindAt(index int) domain.QuestionKind {
	if index%d.stride() != 0 {
		return domain.KindMultipleChoice
	}
	return domain.KindImageTarget
}

// multipleChoiceAt resolves index through the section ordering. ok is false on any bounds miss.
func (d dispatcher) multipleChoiceAt(index int) (domain.MultipleChoiceQuestion, bool) {
	if index < 0 {
		return domain.MultipleChoiceQuestion{}, false
	}
	section := index / d.stride()
	slot := index%d.stride() - 1
	if slot < 0 || slot >= d.sectionSize || section >= len(d.orders) || slot >= len(d.orders[section]) {
		return domain.MultipleChoiceQuestion{}, false
	}
	picked := d.orders[section][slot]
	if picked < 0 || picked >= len(d.content.MultipleChoice) {
		return domain.MultipleChoiceQuestion{}, false
	}
	return d.content.MultipleChoice[picked], true
}

// targetAt returns the image-target question and its slot in the per-target points table.
func (d dispatcher) targetAt(index int) (domain.ImageTargetQuestion, int, bool) {
	if index < 0 {
		return domain.ImageTargetQuestion{}, 0, false
	}
	target := index / d.stride()
	if target >= len(d.content.Targets) {
		return domain.ImageTargetQuestion{}, 0, false
	}
	return d.content.Targets[target], target, true
}

func (d dispatcher) view(index int) *domain.QuestionView {
	switch d.kindAt(index) {
	case domain.KindMultipleChoice:
		q, ok := d.multipleChoiceAt(index)
		if !ok {
			return nil
		}
		return &domain.QuestionView{
			Index:        index,
			Kind:         domain.KindMultipleChoice,
			Prompt:       q.Prompt,
			Alternatives: append([]string(nil), q.Alternatives...),
		}
	default:
		q, _, ok := d.targetAt(index)
		if !ok {
			return nil
		}
		return &domain.QuestionView{
			Index:     index,
			Kind:      domain.KindImageTarget,
			Prompt:    q.Prompt,
			TargetRef: q.TargetRef,
		}
	}
}
