package ntro

import "strings"

// Writer accumulates tab-indented text. Indentation is emitted lazily at the
// start of each line, so a value written after a label stays on its line.
// The zero value is ready to use.
type Writer struct {
	buf     strings.Builder
	Indent  int
	midLine bool
}

func (w *Writer) tabs() {
	if !w.midLine {
		for i := 0; i < w.Indent; i++ {
			w.buf.WriteByte('\t')
		}
		w.midLine = true
	}
}

// Write appends s to the current line.
func (w *Writer) Write(s string) {
	w.tabs()
	w.buf.WriteString(s)
}

// WriteLine appends s and ends the line. On a fresh line WriteLine("")
// writes an indented blank line.
func (w *Writer) WriteLine(s string) {
	w.tabs()
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
	w.midLine = false
}

func (w *Writer) String() string {
	return w.buf.String()
}
