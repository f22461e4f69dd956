package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// recorder is an engine that records every call as "op:id,id".
type recorder struct {
	calls []string
	fail  map[string]int // op -> number of upcoming calls that fail

	onRemove func([]*Element)
}

func newRecorder() *recorder {
	return &recorder{fail: make(map[string]int)}
}

func (r *recorder) record(op string, items []*Element) error {
	ids := make([]string, len(items))
	for i, el := range items {
		ids[i] = fmt.Sprint(el.TileID)
	}
	call := op
	if items != nil {
		call += ":" + strings.Join(ids, ",")
	}
	r.calls = append(r.calls, call)
	if r.fail[op] > 0 {
		r.fail[op]--
		return fmt.Errorf("%s rejected", op)
	}
	return nil
}

func (r *recorder) Add(items []*Element) error { return r.record("add", items) }
func (r *recorder) Remove(items []*Element) error {
	if r.onRemove != nil {
		r.onRemove(items)
	}
	return r.record("remove", items)
}
func (r *recorder) RefreshItems() error { return r.record("refresh", nil) }
func (r *recorder) Layout() error       { return r.record("layout", nil) }

func (r *recorder) reset() { r.calls = nil }

func quietLogger() *log.Logger {
	return log.NewWithOptions(&strings.Builder{}, log.Options{Level: log.FatalLevel})
}

func newTestAdapter(t *testing.T) (*Adapter, *recorder) {
	t.Helper()
	rec := newRecorder()
	return NewAdapter(rec, geometry.Default(), quietLogger()), rec
}

func tile(id, w, h int) grid.Tile {
	return grid.Tile{ID: id, WidthUnits: w, HeightUnits: h}
}

func TestAdapterAdded(t *testing.T) {
	a, rec := newTestAdapter(t)

	for id := 1; id <= 3; id++ {
		if err := a.Added(tile(id, 1, 1)); err != nil {
			t.Fatalf("Added(%d): %v", id, err)
		}
	}

	want := []string{"add:1", "layout", "add:2", "layout", "add:3", "layout"}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("engine calls (-want +got):\n%s", diff)
	}

	els := a.Elements()
	if len(els) != 3 {
		t.Fatalf("Elements() len = %d, want 3", len(els))
	}
	for i, el := range els {
		if el.TileID != i+1 {
			t.Errorf("element %d TileID = %d, want %d", i, el.TileID, i+1)
		}
		if !el.Registered() {
			t.Errorf("element %d not registered", i)
		}
		if el.Width != 100 || el.Height != 100 {
			t.Errorf("element %d size = %dx%d, want 100x100", i, el.Width, el.Height)
		}
	}
	if els[0].Key == els[1].Key {
		t.Error("elements share a key")
	}
}

func TestAdapterRemovedBeforeDetach(t *testing.T) {
	a, rec := newTestAdapter(t)
	for id := 1; id <= 2; id++ {
		if err := a.Added(tile(id, 1, 1)); err != nil {
			t.Fatal(err)
		}
	}
	rec.reset()

	var attached bool
	rec.onRemove = func(items []*Element) {
		_, attached = a.Element(items[0].TileID)
	}

	if err := a.Removed(1); err != nil {
		t.Fatalf("Removed: %v", err)
	}
	if !attached {
		t.Error("element was detached before engine.Remove")
	}
	if _, ok := a.Element(1); ok {
		t.Error("element still present after Removed")
	}
	if diff := cmp.Diff([]string{"remove:1", "layout"}, rec.calls); diff != "" {
		t.Errorf("engine calls (-want +got):\n%s", diff)
	}
}

func TestAdapterRemovedUnknown(t *testing.T) {
	a, rec := newTestAdapter(t)
	if err := a.Removed(9); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Removed(9) = %v, want NOT_FOUND", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("engine called: %v", rec.calls)
	}
}

func TestAdapterResized(t *testing.T) {
	a, rec := newTestAdapter(t)
	if err := a.Added(tile(1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	rec.reset()

	if err := a.Resized(tile(1, 1, 2)); err != nil {
		t.Fatalf("Resized: %v", err)
	}
	if diff := cmp.Diff([]string{"refresh", "layout"}, rec.calls); diff != "" {
		t.Errorf("engine calls (-want +got):\n%s", diff)
	}
	el, _ := a.Element(1)
	if el.Height != 210 {
		t.Errorf("Height = %d, want 210", el.Height)
	}
}

func TestAdapterUpdatedSkipsEngine(t *testing.T) {
	a, rec := newTestAdapter(t)
	if err := a.Added(tile(1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	rec.reset()

	link := "https://go.dev"
	updated := tile(1, 1, 1)
	updated.Link = &link
	if err := a.Updated(updated); err != nil {
		t.Fatalf("Updated: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("engine called: %v", rec.calls)
	}
	el, _ := a.Element(1)
	if el.Tile.LinkURL() != link {
		t.Errorf("element link = %q, want %q", el.Tile.LinkURL(), link)
	}
}

func TestAdapterResync(t *testing.T) {
	a, rec := newTestAdapter(t)
	for id := 1; id <= 2; id++ {
		if err := a.Added(tile(id, 1, 1)); err != nil {
			t.Fatal(err)
		}
	}
	before := a.Elements()
	rec.reset()

	tiles := []grid.Tile{tile(7, 2, 1), tile(3, 1, 1), tile(5, 1, 3)}
	if err := a.Resync(tiles); err != nil {
		t.Fatalf("Resync: %v", err)
	}

	want := []string{"remove:1,2", "add:7,3,5", "layout"}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("engine calls (-want +got):\n%s", diff)
	}
	for _, el := range before {
		if el.Registered() {
			t.Errorf("old element %d still registered", el.TileID)
		}
	}

	var ids []int
	for _, el := range a.Elements() {
		ids = append(ids, el.TileID)
	}
	if diff := cmp.Diff([]int{7, 3, 5}, ids); diff != "" {
		t.Errorf("element order (-want +got):\n%s", diff)
	}
}

func TestAdapterResyncEmpty(t *testing.T) {
	a, rec := newTestAdapter(t)
	if err := a.Resync(nil); err != nil {
		t.Fatalf("Resync(nil): %v", err)
	}
	if diff := cmp.Diff([]string{"layout"}, rec.calls); diff != "" {
		t.Errorf("engine calls (-want +got):\n%s", diff)
	}
}

func TestAdapterFailureMarksStale(t *testing.T) {
	a, rec := newTestAdapter(t)
	if err := a.Added(tile(1, 1, 1)); err != nil {
		t.Fatal(err)
	}

	rec.fail["refresh"] = 1
	err := a.Resized(tile(1, 2, 1))
	if !errors.Is(err, errors.ErrCodeLayoutSync) {
		t.Fatalf("Resized error = %v, want LAYOUT_SYNC", err)
	}
	if !a.Stale() {
		t.Fatal("adapter not stale after failed engine call")
	}

	// The next sync retries with a full resync that includes the new tile.
	rec.reset()
	if err := a.Added(tile(2, 1, 1)); err != nil {
		t.Fatalf("Added after failure: %v", err)
	}
	want := []string{"remove:1", "add:1,2", "layout"}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("engine calls (-want +got):\n%s", diff)
	}
	if a.Stale() {
		t.Error("adapter still stale after successful resync")
	}
	el, _ := a.Element(1)
	if el.Width != 210 {
		t.Errorf("resynced width = %d, want 210", el.Width)
	}
}

func TestAdapterFailedRemoveIsRetried(t *testing.T) {
	a, rec := newTestAdapter(t)
	for id := 1; id <= 2; id++ {
		if err := a.Added(tile(id, 1, 1)); err != nil {
			t.Fatal(err)
		}
	}

	rec.fail["remove"] = 1
	if err := a.Removed(1); !errors.Is(err, errors.ErrCodeLayoutSync) {
		t.Fatalf("Removed error = %v, want LAYOUT_SYNC", err)
	}
	if _, ok := a.Element(1); ok {
		t.Error("removed tile still rendered")
	}

	rec.reset()
	if err := a.Resized(tile(2, 1, 2)); err != nil {
		t.Fatalf("Resized: %v", err)
	}
	// The orphaned element is unregistered along with the live one.
	want := []string{"remove:1,2", "add:2", "layout"}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("engine calls (-want +got):\n%s", diff)
	}
}

func TestAdapterFailedAddIsNotRemoved(t *testing.T) {
	a, rec := newTestAdapter(t)

	rec.fail["add"] = 1
	if err := a.Added(tile(1, 1, 1)); err == nil {
		t.Fatal("expected error")
	}
	rec.reset()

	if err := a.Added(tile(2, 1, 1)); err != nil {
		t.Fatalf("Added: %v", err)
	}
	// Element 1 was never registered, so nothing is removed.
	want := []string{"add:1,2", "layout"}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("engine calls (-want +got):\n%s", diff)
	}
}
