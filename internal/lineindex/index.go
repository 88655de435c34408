package lineindex

import (
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Surface is the editing surface holding the live buffer.
type Surface interface {
	Text() string
	SetText(text string)
}

// TextEditor is implemented by surfaces that can apply a read-modify-write
// of their text atomically. Line edits prefer it over Text and SetText.
type TextEditor interface {
	EditText(fn func(text string) (string, bool)) bool
}

// CursorProvider exposes the surface's cursor as a flat character offset.
type CursorProvider interface {
	Offset() int
	SetOffset(offset int)
}

// Index answers line queries against a Surface and applies line-level edits
// to it.
type Index struct {
	surface  Surface
	cursor   CursorProvider
	onChange func(text string)

	mu     sync.Mutex
	cached string
	lines  []Line
}

// Option configures an Index.
type Option func(*Index)

// WithChangeHandler registers fn to be called with the new buffer after every
// line edit has been written to the surface.
func WithChangeHandler(fn func(text string)) Option {
	return func(x *Index) {
		x.onChange = fn
	}
}

// New creates an Index over surface. cursor may be nil, in which case the
// cursor methods report position 1:1 and ignore moves.
func New(surface Surface, cursor CursorProvider, opts ...Option) *Index {
	x := &Index{surface: surface, cursor: cursor}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Lines returns the lines of the current buffer.
func (x *Index) Lines() []Line {
	return append([]Line(nil), x.derive()...)
}

// Count returns the number of lines; it is always at least one.
func (x *Index) Count() int {
	return len(x.derive())
}

// LineByNumber returns line n (1-based); ok is false outside 1..Count.
func (x *Index) LineByNumber(n int) (Line, bool) {
	return byNumber(x.derive(), n)
}

// LineByOffset returns the line containing character offset o; ok is false
// when o lies outside the buffer.
func (x *Index) LineByOffset(o int) (Line, bool) {
	return lineAt(x.derive(), o)
}

// LineContent returns the content of line n, or "" if there is no such line.
func (x *Index) LineContent(n int) string {
	l, _ := x.LineByNumber(n)
	return l.Content
}

// InsertLine inserts content as a new line after line after. after is
// clamped to [0, Count]; 0 inserts at the top.
func (x *Index) InsertLine(after int, content string) bool {
	return x.edit(func(lines []string) ([]string, bool) {
		after = clamp(after, 0, len(lines))
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:after]...)
		out = append(out, content)
		out = append(out, lines[after:]...)
		return out, true
	})
}

// DeleteLine removes line n. It does nothing when n is out of range or when
// the buffer has a single line.
func (x *Index) DeleteLine(n int) bool {
	return x.edit(func(lines []string) ([]string, bool) {
		if len(lines) <= 1 || n < 1 || n > len(lines) {
			return nil, false
		}
		return append(lines[:n-1], lines[n:]...), true
	})
}

// UpdateLine replaces the content of line n.
func (x *Index) UpdateLine(n int, content string) bool {
	return x.edit(func(lines []string) ([]string, bool) {
		if n < 1 || n > len(lines) {
			return nil, false
		}
		lines[n-1] = content
		return lines, true
	})
}

// SplitLine divides line n at character offset into two lines. offset is
// clamped to [0, line length].
func (x *Index) SplitLine(n, offset int) bool {
	return x.edit(func(lines []string) ([]string, bool) {
		if n < 1 || n > len(lines) {
			return nil, false
		}
		r := []rune(lines[n-1])
		offset = clamp(offset, 0, len(r))
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:n-1]...)
		out = append(out, string(r[:offset]), string(r[offset:]))
		out = append(out, lines[n:]...)
		return out, true
	})
}

// MergeLines joins line n with the line after it.
func (x *Index) MergeLines(n int) bool {
	return x.edit(func(lines []string) ([]string, bool) {
		if n < 1 || n >= len(lines) {
			return nil, false
		}
		lines[n-1] += lines[n]
		return append(lines[:n], lines[n+1:]...), true
	})
}

// CursorLine returns the 1-based line of the cursor.
func (x *Index) CursorLine() int {
	l, _ := x.cursorLine()
	return l.Number
}

// CursorColumn returns the 1-based column of the cursor.
func (x *Index) CursorColumn() int {
	l, o := x.cursorLine()
	return o - l.StartOffset + 1
}

// SetCursorPosition moves the cursor to line, col (both 1-based). col is
// clamped to the line's length. It returns false for an unknown line.
func (x *Index) SetCursorPosition(line, col int) bool {
	l, ok := x.LineByNumber(line)
	if !ok || x.cursor == nil {
		return false
	}
	x.cursor.SetOffset(l.StartOffset + clamp(col-1, 0, l.Length))
	return true
}

// cursorLine returns the line under the cursor and the cursor offset clamped
// to the buffer.
func (x *Index) cursorLine() (Line, int) {
	lines := x.derive()
	o := 0
	if x.cursor != nil {
		o = clamp(x.cursor.Offset(), 0, lines[len(lines)-1].EndOffset)
	}
	l, _ := lineAt(lines, o)
	return l, o
}

// derive returns the cached lines, re-deriving when the surface text changed.
func (x *Index) derive() []Line {
	text := x.surface.Text()
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.lines == nil || text != x.cached {
		x.cached = text
		x.lines = Derive(text)
	}
	return x.lines
}

// edit rebuilds the whole buffer from its lines, applies fn and writes the
// result back to the surface.
func (x *Index) edit(fn func(lines []string) ([]string, bool)) bool {
	var text string
	apply := func(raw string) (string, bool) {
		out, ok := fn(contents(Derive(raw)))
		if !ok {
			return "", false
		}
		text = Render(out)
		return text, true
	}

	var ok bool
	if e, atomic := x.surface.(TextEditor); atomic {
		ok = e.EditText(apply)
	} else if _, ok = apply(x.surface.Text()); ok {
		x.surface.SetText(text)
	}
	if ok && x.onChange != nil {
		x.onChange(text)
	}
	return ok
}

// Render joins plain-text lines into buffer content. Each line is escaped so
// that deriving the result yields the same lines again.
func Render(lines []string) string {
	escaped := make([]string, len(lines))
	for i, l := range lines {
		escaped[i] = html.EscapeString(l)
	}
	return strings.Join(escaped, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
