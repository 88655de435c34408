package editor

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/docstore"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/lineindex"
	"github.com/starford/quire/internal/session"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/templates"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newService(t *testing.T) *Service {
	t.Helper()
	store := docstore.New(storage.NewMemory(), docstore.WithLogger(discard))
	ctrl := session.New(store, session.WithLogger(discard))
	tpls := templates.NewSet(templates.Template{Name: "memo", Title: "Memo", Content: "<p>memo body</p>"})
	return New(ctrl, nil, tpls)
}

func TestCreateDocument(t *testing.T) {
	s := newService(t)
	doc, err := s.CreateDocument("memo")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if doc.Title != "Memo" {
		t.Errorf("title = %q", doc.Title)
	}
	if _, err := s.CreateDocument("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown template err = %v", err)
	}
	if st := s.State(); len(st.Documents) != 1 {
		t.Errorf("documents = %d", len(st.Documents))
	}
}

func TestNoCurrentDocument(t *testing.T) {
	s := newService(t)
	if _, err := s.UpdateContent("x", ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateContent err = %v", err)
	}
	if _, err := s.UpdateTitle("x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateTitle err = %v", err)
	}
	if _, err := s.Save(); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Save err = %v", err)
	}
	if _, err := s.EditLines(func(x *lineindex.Index) bool { return x.UpdateLine(1, "x") }); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("EditLines err = %v", err)
	}
	// Undo with nothing open is a quiet no-op.
	if st := s.Undo(); st.CurrentDocument != nil {
		t.Errorf("state = %+v", st)
	}
}

func TestUpdateContent_IfMatch(t *testing.T) {
	s := newService(t)
	s.CreateDocument("")
	snap, err := s.UpdateContent("v1", "")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Checksum != checksum.String("v1") {
		t.Errorf("checksum = %q", snap.Checksum)
	}

	if _, err := s.UpdateContent("v2", checksum.String("stale")); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale If-Match err = %v", err)
	}
	if got := s.State().CurrentDocument.Content; got != "v1" {
		t.Errorf("content changed on conflict: %q", got)
	}
	if _, err := s.UpdateContent("v2", snap.Checksum); err != nil {
		t.Errorf("matching If-Match: %v", err)
	}
}

func TestSwitchAndDelete(t *testing.T) {
	s := newService(t)
	a, _ := s.CreateDocument("")
	s.CreateDocument("")

	if _, err := s.Switch("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Switch err = %v", err)
	}
	snap, err := s.Switch(a.ID)
	if err != nil || snap.CurrentDocument.ID != a.ID {
		t.Fatalf("Switch = %+v, %v", snap.CurrentDocument, err)
	}
	if err := s.DeleteDocument(a.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if err := s.DeleteDocument(a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if _, err := s.GetDocument(a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetDocument err = %v", err)
	}
}

func TestMetadata(t *testing.T) {
	s := newService(t)
	doc, _ := s.CreateDocument("")
	got, err := s.SetFavorite(doc.ID, true)
	if err != nil || !got.IsFavorite {
		t.Errorf("SetFavorite = %+v, %v", got, err)
	}
	got, err = s.SetCategory(doc.ID, "Work")
	if err != nil || got.Category != "Work" {
		t.Errorf("SetCategory = %+v, %v", got, err)
	}
	if _, err := s.SetFavorite("nope", true); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestListAndSearchWithoutIndex(t *testing.T) {
	s := newService(t)
	a, _ := s.CreateDocument("")
	s.UpdateContent("<p>Alpha plan</p>", "")
	s.UpdateTitle("zebra")
	b, _ := s.CreateDocument("memo")
	s.SetCategory(b.ID, "Work")
	s.SetFavorite(b.ID, true)

	rows, total, err := s.ListDocuments(index.ListFilter{})
	if err != nil || total != 2 {
		t.Fatalf("ListDocuments = %d, %v", total, err)
	}
	if rows[0].ID != b.ID {
		t.Errorf("newest first: got %q", rows[0].ID)
	}
	rows, _, _ = s.ListDocuments(index.ListFilter{Sort: index.SortTitle})
	if rows[0].ID != b.ID || rows[1].ID != a.ID {
		t.Errorf("title order: %+v", rows)
	}
	rows, total, _ = s.ListDocuments(index.ListFilter{Favorites: true})
	if total != 1 || rows[0].ID != b.ID {
		t.Errorf("favorites: %+v", rows)
	}
	rows, total, _ = s.ListDocuments(index.ListFilter{Limit: 1, Offset: 5})
	if total != 2 || len(rows) != 0 {
		t.Errorf("past end: %d rows, total %d", len(rows), total)
	}

	res, _ := s.Search("alpha", 10)
	if len(res) != 1 || res[0].ID != a.ID || res[0].Snippet != "Alpha plan" {
		t.Errorf("search = %+v", res)
	}
	if res, _ := s.Search("<p>", 10); len(res) != 0 {
		t.Errorf("markup matched: %+v", res)
	}

	cats, _ := s.Categories()
	if len(cats) != 2 || cats[0].Name != "General" || cats[1].Name != "Work" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestEditLines(t *testing.T) {
	s := newService(t)
	s.CreateDocument("")
	s.UpdateContent("one\ntwo", "")

	ok, err := s.EditLines(func(x *lineindex.Index) bool { return x.MergeLines(1) })
	if err != nil || !ok {
		t.Fatalf("EditLines = %v, %v", ok, err)
	}
	if got := s.State().CurrentDocument.Content; got != "onetwo" {
		t.Errorf("content = %q", got)
	}
}

func TestCreateDocumentWith(t *testing.T) {
	s := newService(t)
	doc, err := s.CreateDocumentWith("memo", templates.Template{Content: "<p>custom</p>"})
	if err != nil {
		t.Fatalf("CreateDocumentWith: %v", err)
	}
	if doc.Title != "Memo" || doc.Content != "<p>custom</p>" || doc.WordCount != 1 {
		t.Errorf("document = %+v", doc)
	}

	doc, err = s.CreateDocumentWith("", templates.Template{Title: "Loose"})
	if err != nil || doc.Title != "Loose" || doc.Content != "" {
		t.Errorf("overlay only = %+v, %v", doc, err)
	}
	if st := s.State(); st.CanUndo || st.IsDirty {
		t.Errorf("new document has history: %+v", st.State)
	}
	if _, err := s.CreateDocumentWith("missing", templates.Template{Title: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown template err = %v", err)
	}
}
