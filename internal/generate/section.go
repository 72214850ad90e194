package generate

import "strings"

type placement int

const (
	placeAppend placement = iota
	placePrepend
)

type line struct {
	text  string
	place placement
}

// section is one blank-line-delimited block of the entry point. Lines marked
// prepend render ahead of every appended line, in the order they were added.
type section struct {
	name  string
	lines []line
}

func newSection(name string, lines ...string) *section {
	s := &section{name: name}
	for _, l := range lines {
		s.add(l)
	}
	return s
}

func (s *section) add(text string) {
	s.lines = append(s.lines, line{text: text, place: placeAppend})
}

func (s *section) prepend(text string) {
	s.lines = append(s.lines, line{text: text, place: placePrepend})
}

func (s *section) render() []string {
	out := make([]string, 0, len(s.lines))
	for _, l := range s.lines {
		if l.place == placePrepend {
			out = append(out, l.text)
		}
	}
	for _, l := range s.lines {
		if l.place == placeAppend {
			out = append(out, l.text)
		}
	}
	return out
}

// renderSections joins sections in order, separated by exactly one blank
// line. The result has no trailing newline.
func renderSections(sections ...*section) string {
	blocks := make([]string, 0, len(sections))
	for _, s := range sections {
		blocks = append(blocks, strings.Join(s.render(), "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
