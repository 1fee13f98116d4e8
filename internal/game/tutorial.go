package game

// Tutorial pages through the how-to-play screens. It never moves past either end.
type Tutorial struct {
	pages []string
	index int
}

func NewTutorial(pages []string) *Tutorial {
	return &Tutorial{pages: append([]string(nil), pages...)}
}

// Next moves forward one page and reports whether it moved.
func (t *Tutorial) Next() bool {
	if t.index >= len(t.pages)-1 {
		return false
	}
	t.index++
	return true
}

// Prev moves back one page and reports whether it moved.
func (t *Tutorial) Prev() bool {
	if t.index <= 0 {
		return false
	}
	t.index--
	return true
}

// Current returns the page index and content, or -1 when there are no pages.
func (t *Tutorial) Current() (int, string) {
	if len(t.pages) == 0 {
		return -1, ""
	}
	return t.index, t.pages[t.index]
}

func (t *Tutorial) Len() int {
	return len(t.pages)
}
