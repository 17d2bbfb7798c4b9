package gallery

import "fmt"

// Cards renders a count with the right noun: "1 card", "3 cards".
func Cards(n int) string {
	return fmt.Sprintf("%d %s", n, noun(n))
}

func noun(n int) string {
	if n == 1 {
		return "card"
	}
	return "cards"
}

// Message is the body of the regeneration warning.
func (s RegenerateSummary) Message() string {
	if s.Locked > 0 {
		return fmt.Sprintf("This will replace %d unlocked %s with new ones. Your %d locked %s will be preserved.",
			s.Unlocked, noun(s.Unlocked), s.Locked, noun(s.Locked))
	}
	return fmt.Sprintf("This will replace all %s with new ones. Deleted cards can be restored from the Archived tab.",
		Cards(s.Total))
}

// PageLabel renders "Page 2 of 5".
func (o *Overlay) PageLabel() string {
	return fmt.Sprintf("Page %d of %d", o.page+1, max(o.TotalPages(), 1))
}
