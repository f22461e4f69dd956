package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/bentogrid/pkg/codec"
	"github.com/matzehuels/bentogrid/pkg/controller"
	bentoerr "github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/kv"
	"github.com/matzehuels/bentogrid/pkg/render"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	ctrl, err := controller.New(controller.Options{
		Store:  kv.NewMemoryStore(),
		Key:    "bento:grid:http",
		Codec:  codec.Codec{Versioned: true},
		Logger: logger,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	loop := controller.NewLoop(ctrl)
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(newServer(loop, geometry.Default(), logger).routes())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func wantStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s = %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, status, body)
	}
}

func TestServerTileLifecycle(t *testing.T) {
	srv := newTestServer(t)

	for want := 1; want <= 3; want++ {
		resp := do(t, srv, http.MethodPost, "/tiles", "")
		wantStatus(t, resp, http.StatusCreated)
		if got := decode[grid.Tile](t, resp); got.ID != want {
			t.Fatalf("added tile %d, want %d", got.ID, want)
		}
	}

	resp := do(t, srv, http.MethodPost, "/tiles/2/resize", `{"direction":"down","step":1}`)
	wantStatus(t, resp, http.StatusOK)
	if got := decode[grid.Tile](t, resp); got.HeightUnits != 2 {
		t.Errorf("height = %d, want 2", got.HeightUnits)
	}

	resp = do(t, srv, http.MethodPut, "/tiles/1/link", `{"link":"example.com"}`)
	wantStatus(t, resp, http.StatusOK)
	if got := decode[grid.Tile](t, resp); got.LinkURL() != "http://example.com" {
		t.Errorf("link = %q", got.LinkURL())
	}

	resp = do(t, srv, http.MethodPost, "/tiles/3/move", `{"index":0}`)
	wantStatus(t, resp, http.StatusOK)

	wantStatus(t, do(t, srv, http.MethodDelete, "/tiles/1", ""), http.StatusNoContent)

	resp = do(t, srv, http.MethodGet, "/tiles", "")
	wantStatus(t, resp, http.StatusOK)
	want := []grid.Tile{
		{ID: 3, WidthUnits: 1, HeightUnits: 1},
		{ID: 2, WidthUnits: 1, HeightUnits: 2},
	}
	if diff := cmp.Diff(want, decode[[]grid.Tile](t, resp)); diff != "" {
		t.Errorf("tiles mismatch (-want +got):\n%s", diff)
	}
}

func TestServerErrorStatus(t *testing.T) {
	srv := newTestServer(t)
	wantStatus(t, do(t, srv, http.MethodPost, "/tiles", ""), http.StatusCreated)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   bentoerr.Code
	}{
		{"unknown tile", http.MethodGet, "/tiles/9", "", http.StatusNotFound, bentoerr.ErrCodeNotFound},
		{"remove unknown", http.MethodDelete, "/tiles/9", "", http.StatusNotFound, bentoerr.ErrCodeNotFound},
		{"bad id", http.MethodGet, "/tiles/abc", "", http.StatusBadRequest, bentoerr.ErrCodeInvalidInput},
		{"bad direction", http.MethodPost, "/tiles/1/resize", `{"direction":"in"}`, http.StatusBadRequest, bentoerr.ErrCodeInvalidInput},
		{"step too large", http.MethodPost, "/tiles/1/resize", `{"direction":"down","step":100000000}`, http.StatusBadRequest, bentoerr.ErrCodeInvalidInput},
		{"oversized document", http.MethodPost, "/load", `[{"id":1,"widthUnits":1,"heightUnits":100000000}]`, http.StatusBadRequest, bentoerr.ErrCodeMalformedDocument},
		{"bad json", http.MethodPut, "/tiles/1/link", `{"link":`, http.StatusBadRequest, bentoerr.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/tiles/1/move", `{"position":2}`, http.StatusBadRequest, bentoerr.ErrCodeInvalidInput},
		{"bad image", http.MethodPut, "/tiles/1/image", "not an image", http.StatusBadRequest, bentoerr.ErrCodeImageDecode},
		{"malformed document", http.MethodPost, "/load", "{not valid json", http.StatusBadRequest, bentoerr.ErrCodeMalformedDocument},
		{"nothing saved", http.MethodPost, "/load", "", http.StatusNotFound, bentoerr.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, tt.method, tt.path, tt.body)
			wantStatus(t, resp, tt.status)
			if got := decode[errorResponse](t, resp); got.Code != string(tt.code) {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}

	resp := do(t, srv, http.MethodGet, "/tiles", "")
	if got := decode[[]grid.Tile](t, resp); len(got) != 1 {
		t.Errorf("failed requests changed the grid: %d tiles", len(got))
	}
}

func TestServerSaveLoad(t *testing.T) {
	srv := newTestServer(t)
	wantStatus(t, do(t, srv, http.MethodPost, "/tiles", ""), http.StatusCreated)
	wantStatus(t, do(t, srv, http.MethodPost, "/save", ""), http.StatusNoContent)
	wantStatus(t, do(t, srv, http.MethodPost, "/tiles", ""), http.StatusCreated)

	resp := do(t, srv, http.MethodPost, "/load", "")
	wantStatus(t, resp, http.StatusOK)
	if got := decode[[]grid.Tile](t, resp); len(got) != 1 {
		t.Errorf("%d tiles after load, want 1", len(got))
	}

	doc := `[{"id":7,"widthUnits":2,"heightUnits":2,"image":null,"link":null}]`
	resp = do(t, srv, http.MethodPost, "/load", doc)
	wantStatus(t, resp, http.StatusOK)
	if got := decode[[]grid.Tile](t, resp); len(got) != 1 || got[0].ID != 7 {
		t.Errorf("tiles after document load = %+v", got)
	}
}

func TestServerImage(t *testing.T) {
	srv := newTestServer(t)
	wantStatus(t, do(t, srv, http.MethodPost, "/tiles", ""), http.StatusCreated)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	resp := do(t, srv, http.MethodPut, "/tiles/1/image", buf.String())
	wantStatus(t, resp, http.StatusOK)
	if got := decode[grid.Tile](t, resp); !strings.HasPrefix(got.ImageData(), "data:image/png;base64,") {
		t.Errorf("image = %.40q", got.ImageData())
	}

	resp = do(t, srv, http.MethodDelete, "/tiles/1/image", "")
	wantStatus(t, resp, http.StatusOK)
	if got := decode[grid.Tile](t, resp); got.HasImage() {
		t.Error("image not cleared")
	}
}

func TestServerLayout(t *testing.T) {
	srv := newTestServer(t)
	wantStatus(t, do(t, srv, http.MethodPost, "/tiles", ""), http.StatusCreated)
	wantStatus(t, do(t, srv, http.MethodPost, "/tiles", ""), http.StatusCreated)
	wantStatus(t, do(t, srv, http.MethodPost, "/tiles/1/resize", `{"direction":"right"}`), http.StatusOK)

	resp := do(t, srv, http.MethodGet, "/layout", "")
	wantStatus(t, resp, http.StatusOK)
	l := decode[render.Layout](t, resp)
	if len(l.Items) != 2 {
		t.Fatalf("%d items, want 2", len(l.Items))
	}
	// 1 unit is 100px, 2 units are 210px; tile 2 packs right of tile 1.
	if l.Items[0].Width != 210 || l.Items[1].X != 220 {
		t.Errorf("items = %+v", l.Items)
	}

	resp = do(t, srv, http.MethodGet, "/layout.svg", "")
	wantStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{bentoerr.NotFound(1), http.StatusNotFound},
		{bentoerr.Malformed(nil, "bad"), http.StatusBadRequest},
		{bentoerr.New(bentoerr.ErrCodeStore, "down"), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
