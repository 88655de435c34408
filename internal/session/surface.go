package session

// surface exposes the current document's content as a lineindex.Surface.
type surface struct {
	c *Controller
}

func (s surface) Text() string {
	doc, ok := s.c.Current()
	if !ok {
		return ""
	}
	return doc.Content
}

func (s surface) SetText(text string) {
	s.c.UpdateContent(text)
}

// EditText applies fn to the content of whichever document is current when
// the controller lock is taken, so a concurrent switch cannot redirect it.
func (s surface) EditText(fn func(text string) (string, bool)) bool {
	return s.c.EditContent(fn)
}

// cursor maps the caret to the end of the selection.
type cursor struct {
	c *Controller
}

func (k cursor) Offset() int {
	k.c.mu.Lock()
	defer k.c.mu.Unlock()
	return k.c.selection.End
}

func (k cursor) SetOffset(offset int) {
	k.c.UpdateSelection(offset, offset)
}
