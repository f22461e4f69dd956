package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/bentogrid/pkg/codec"
	"github.com/matzehuels/bentogrid/pkg/controller"
	bentoerr "github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/kv"
)

// isolate points the config and data directories at fresh temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func quietCLI() *CLI {
	return New(io.Discard, log.FatalLevel)
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	root := quietCLI().RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func mustRun(t *testing.T, args ...string) {
	t.Helper()
	if err := runCLI(t, args...); err != nil {
		t.Fatalf("bento %s: %v", strings.Join(args, " "), err)
	}
}

// savedTiles opens the named grid the way a command would.
func savedTiles(t *testing.T, name string) []grid.Tile {
	t.Helper()
	c := quietCLI()
	c.gridName = name
	ws, err := c.open(context.Background(), nil)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	defer ws.Close()
	return ws.ctrl.Tiles()
}

func ptr(s string) *string { return &s }

func TestTileCommands(t *testing.T) {
	isolate(t)

	mustRun(t, "add", "-n", "3")
	mustRun(t, "resize", "1", "down")
	mustRun(t, "resize", "2", "right", "--step", "2")
	mustRun(t, "link", "2", "example.com")
	mustRun(t, "mv", "3", "0")
	mustRun(t, "rm", "1")

	want := []grid.Tile{
		{ID: 3, WidthUnits: 1, HeightUnits: 1},
		{ID: 2, WidthUnits: 3, HeightUnits: 1, Link: ptr("http://example.com")},
	}
	if diff := cmp.Diff(want, savedTiles(t, kv.DefaultGrid)); diff != "" {
		t.Errorf("tiles mismatch (-want +got):\n%s", diff)
	}

	mustRun(t, "add")
	tiles := savedTiles(t, kv.DefaultGrid)
	if got := tiles[len(tiles)-1].ID; got != 4 {
		t.Errorf("new tile id = %d, want 4 (ids are not reused)", got)
	}
}

func TestTileCommandErrors(t *testing.T) {
	isolate(t)
	mustRun(t, "add")

	tests := []struct {
		name string
		args []string
		code bentoerr.Code
	}{
		{"unknown tile", []string{"rm", "9"}, bentoerr.ErrCodeNotFound},
		{"bad id", []string{"resize", "x", "up"}, bentoerr.ErrCodeInvalidInput},
		{"bad direction", []string{"resize", "1", "sideways"}, bentoerr.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, tt.args...)
			if !bentoerr.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}

	if got := len(savedTiles(t, kv.DefaultGrid)); got != 1 {
		t.Errorf("failed commands changed the grid: %d tiles", got)
	}
}

func TestClearLink(t *testing.T) {
	isolate(t)
	mustRun(t, "add")
	mustRun(t, "link", "1", "https://a.example")
	mustRun(t, "link", "1")

	if tiles := savedTiles(t, kv.DefaultGrid); tiles[0].Link != nil {
		t.Errorf("link = %q, want nil", *tiles[0].Link)
	}
}

func TestGridsAreSeparate(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "-n", "2")
	mustRun(t, "-g", "other", "add")

	if got := len(savedTiles(t, kv.DefaultGrid)); got != 2 {
		t.Errorf("default grid has %d tiles, want 2", got)
	}
	if got := len(savedTiles(t, "other")); got != 1 {
		t.Errorf("other grid has %d tiles, want 1", got)
	}
}

func TestExportImport(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	doc := filepath.Join(dir, "grid.json")

	mustRun(t, "add", "-n", "2")
	mustRun(t, "resize", "2", "down")
	mustRun(t, "export", "-o", doc)
	mustRun(t, "-g", "copy", "import", doc)

	if diff := cmp.Diff(savedTiles(t, kv.DefaultGrid), savedTiles(t, "copy")); diff != "" {
		t.Errorf("imported grid differs (-orig +copy):\n%s", diff)
	}

	data, err := os.ReadFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"schemaVersion": 1`) {
		t.Errorf("export is not versioned:\n%s", data)
	}
}

func TestImportLegacyArray(t *testing.T) {
	isolate(t)
	doc := filepath.Join(t.TempDir(), "legacy.json")
	legacy := `[{"id":5,"widthUnits":2,"heightUnits":1,"image":null,"link":"https://example.com"}]`
	if err := os.WriteFile(doc, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	mustRun(t, "import", doc)

	want := []grid.Tile{{ID: 5, WidthUnits: 2, HeightUnits: 1, Link: ptr("https://example.com")}}
	if diff := cmp.Diff(want, savedTiles(t, kv.DefaultGrid)); diff != "" {
		t.Errorf("tiles mismatch (-want +got):\n%s", diff)
	}
}

func TestImportMalformedKeepsGrid(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "-n", "2")
	doc := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(doc, []byte("{not valid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runCLI(t, "import", doc)
	if !bentoerr.Is(err, bentoerr.ErrCodeMalformedDocument) {
		t.Fatalf("error = %v, want MALFORMED_DOCUMENT", err)
	}
	if got := len(savedTiles(t, kv.DefaultGrid)); got != 2 {
		t.Errorf("grid has %d tiles after failed import, want 2", got)
	}
}

func TestRenderCommand(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "-n", "2")
	mustRun(t, "link", "1", "example.com")

	base := filepath.Join(t.TempDir(), "grid")
	mustRun(t, "render", "-f", "svg,json", "-o", base)

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(svg), "<svg") || !strings.Contains(string(svg), "http://example.com") {
		t.Errorf("unexpected svg:\n%s", svg)
	}
	if _, err := os.Stat(base + ".json"); err != nil {
		t.Errorf("json output missing: %v", err)
	}
}

func TestReadOnlyCommands(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{{"ls"}, {"show"}, {"store", "path"}} {
		mustRun(t, args...)
	}
	mustRun(t, "add")
	for _, args := range [][]string{{"ls"}, {"show", "--select", "1"}, {"store", "clear"}} {
		mustRun(t, args...)
	}
	if got := len(savedTiles(t, kv.DefaultGrid)); got != 0 {
		t.Errorf("grid has %d tiles after store clear, want 0", got)
	}
}

func TestConfigFileAndBackendFlag(t *testing.T) {
	isolate(t)
	cfg := filepath.Join(t.TempDir(), "bento.toml")
	if err := os.WriteFile(cfg, []byte("[grid]\ncolumns = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mustRun(t, "--config", cfg, "add")

	// The memory backend forgets everything between commands.
	mustRun(t, "--backend", "memory", "add")
	if got := len(savedTiles(t, kv.DefaultGrid)); got != 1 {
		t.Errorf("file grid has %d tiles, want 1", got)
	}

	if err := runCLI(t, "--backend", "floppy", "ls"); !bentoerr.Is(err, bentoerr.ErrCodeInvalidConfig) {
		t.Errorf("unknown backend error = %v, want INVALID_CONFIG", err)
	}
}

func TestOpenStartsNewGrid(t *testing.T) {
	isolate(t)
	c := quietCLI()
	ws, err := c.open(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()
	if ws.found {
		t.Error("found = true for a grid that was never saved")
	}
	if _, err := ws.ctrl.Dispatch(context.Background(), controller.AddTile{}); err != nil {
		t.Fatal(err)
	}
	if err := ws.save(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, ok, err := ws.store.Get(context.Background(), ws.key)
	if err != nil || !ok {
		t.Fatalf("Get(%q) = %v, %v", ws.key, ok, err)
	}
	tiles, err := codec.Unmarshal(data)
	if err != nil || len(tiles) != 1 {
		t.Errorf("saved document = %s (%v)", data, err)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseID(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	mustRun(t, "add", "-n", "2")

	c := quietCLI()
	cmd := c.RootCommand()
	cmd.SetContext(context.Background())

	ids, _ := c.completeEveryTileID(cmd, nil, "")
	if diff := cmp.Diff([]string{"1", "2"}, ids); diff != "" {
		t.Errorf("tile ids (-want +got):\n%s", diff)
	}
	if got, _ := c.completeTileIDs(cmd, []string{"1"}, ""); len(got) != 0 {
		t.Errorf("second argument completed to %v", got)
	}
	dirs, _ := c.completeResize(cmd, []string{"1"}, "")
	if diff := cmp.Diff([]string{"up", "down", "left", "right"}, dirs); diff != "" {
		t.Errorf("directions (-want +got):\n%s", diff)
	}

	mustRun(t, "completion", "bash")
}
