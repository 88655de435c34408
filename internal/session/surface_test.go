package session

import "testing"

func TestLines_FollowCurrentDocument(t *testing.T) {
	c, _ := newController(t)
	if c.Lines().Count() != 1 {
		t.Error("no document should still yield one line")
	}
	c.CreateNewDocument(nil)
	c.UpdateContent("line1\nline2\n\nline4")

	lines := c.Lines().Lines()
	if len(lines) != 4 || lines[3].Content != "line4" {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestLines_EditsGoThroughHistory(t *testing.T) {
	c, _ := newController(t)
	c.CreateNewDocument(nil)
	c.UpdateContent("a\nb")
	c.SaveDocument()

	if !c.Lines().InsertLine(1, "inserted") {
		t.Fatal("InsertLine failed")
	}
	if got := currentContent(t, c); got != "a\ninserted\nb" {
		t.Errorf("content = %q", got)
	}
	if !c.State().IsDirty {
		t.Error("line edit should mark dirty")
	}
	c.Undo()
	if got := currentContent(t, c); got != "a\nb" {
		t.Errorf("after undo = %q", got)
	}
}

func TestLines_CursorUsesSelection(t *testing.T) {
	c, _ := newController(t)
	c.CreateNewDocument(nil)
	c.UpdateContent("line1\nline2")

	c.UpdateSelection(0, 8)
	idx := c.Lines()
	if idx.CursorLine() != 2 || idx.CursorColumn() != 3 {
		t.Errorf("cursor = %d:%d, want 2:3", idx.CursorLine(), idx.CursorColumn())
	}
	idx.SetCursorPosition(1, 4)
	if sel := c.State().Selection; sel.Start != 3 || sel.End != 3 {
		t.Errorf("selection = %+v", sel)
	}
}
