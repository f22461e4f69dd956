package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/controller"
	bentoerr "github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/render"
	"github.com/matzehuels/bentogrid/pkg/render/svg"
)

// maxBodyBytes bounds JSON request bodies. Image bodies are bounded by the
// upload decoder instead.
const maxBodyBytes = 1 << 20

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grid over HTTP",
		Long: `Serve exposes the grid as a JSON API. Every request is applied by a single
controller loop, so concurrent clients never interleave inside one intent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.open(ctx, nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			if addr == "" {
				addr = ws.cfg.Server.Addr
			}
			return c.runServer(ctx, ws, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (c *CLI) runServer(ctx context.Context, ws *workspace, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := controller.NewLoop(ws.ctrl)
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(loop, ws.cfg.Converter(), c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()

	printSuccess("Serving grid %s on %s", StyleHighlight.Render(c.gridName), StyleLink.Render("http://"+addr))
	printDetail("Press Ctrl+C to stop")

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.Logger.Warn("shutdown", "err", err)
		}
	}
	cancel()
	<-loopDone
	return nil
}

// =============================================================================
// HTTP Server
// =============================================================================

// server maps HTTP requests to controller intents.
type server struct {
	loop   *controller.Loop
	conv   geometry.Converter
	logger *log.Logger
}

func newServer(loop *controller.Loop, conv geometry.Converter, logger *log.Logger) *server {
	return &server{loop: loop, conv: conv, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/tiles", s.listTiles)
	r.Post("/tiles", s.addTile)
	r.Route("/tiles/{id}", func(r chi.Router) {
		r.Get("/", s.getTile)
		r.Delete("/", s.removeTile)
		r.Post("/resize", s.resizeTile)
		r.Post("/move", s.moveTile)
		r.Put("/link", s.setLink)
		r.Put("/image", s.setImage)
		r.Delete("/image", s.clearImage)
	})
	r.Post("/save", s.save)
	r.Post("/load", s.load)
	r.Get("/layout", s.layout)
	r.Get("/layout.svg", s.layoutSVG)
	return r
}

// logRequests attaches a request-scoped logger and logs each request.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With("req", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), logger)))

		logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "elapsed", time.Since(start).Round(time.Microsecond))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) listTiles(w http.ResponseWriter, r *http.Request) {
	var tiles []grid.Tile
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		tiles = c.Tiles()
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tiles)
}

func (s *server) getTile(w http.ResponseWriter, r *http.Request) {
	id, ok := tileID(w, r)
	if !ok {
		return
	}
	var t grid.Tile
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		var err error
		t, err = c.Tile(id)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *server) addTile(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, http.StatusCreated, controller.AddTile{})
}

func (s *server) removeTile(w http.ResponseWriter, r *http.Request) {
	id, ok := tileID(w, r)
	if !ok {
		return
	}
	if _, err := s.loop.Submit(r.Context(), controller.RemoveTile{ID: id}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resizeRequest struct {
	Direction string `json:"direction"`
	Step      int    `json:"step"`
}

func (s *server) resizeTile(w http.ResponseWriter, r *http.Request) {
	id, ok := tileID(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if !readJSON(w, r, &req) {
		return
	}
	dir, err := grid.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Step > grid.MaxUnits {
		writeError(w, r, bentoerr.New(bentoerr.ErrCodeInvalidInput, "step must be at most %d", grid.MaxUnits))
		return
	}
	s.submit(w, r, http.StatusOK, controller.ResizeTile{ID: id, Direction: dir, Step: req.Step})
}

type moveRequest struct {
	Index int `json:"index"`
}

func (s *server) moveTile(w http.ResponseWriter, r *http.Request) {
	id, ok := tileID(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := s.loop.Submit(r.Context(), controller.MoveTile{ID: id, Index: req.Index})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.warnSync(r, res)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "index": res.Index, "tiles": res.Tiles})
}

type linkRequest struct {
	Link string `json:"link"`
}

func (s *server) setLink(w http.ResponseWriter, r *http.Request) {
	id, ok := tileID(w, r)
	if !ok {
		return
	}
	var req linkRequest
	if !readJSON(w, r, &req) {
		return
	}
	s.submit(w, r, http.StatusOK, controller.SetLink{ID: id, Text: req.Link})
}

func (s *server) setImage(w http.ResponseWriter, r *http.Request) {
	id, ok := tileID(w, r)
	if !ok {
		return
	}
	res, err := s.loop.Upload(r.Context(), id, r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.warnSync(r, res)
	writeJSON(w, http.StatusOK, res.Tile)
}

func (s *server) clearImage(w http.ResponseWriter, r *http.Request) {
	id, ok := tileID(w, r)
	if !ok {
		return
	}
	s.submit(w, r, http.StatusOK, controller.SetImage{ID: id})
}

func (s *server) save(w http.ResponseWriter, r *http.Request) {
	if _, err := s.loop.Submit(r.Context(), controller.Save{}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load reloads the saved grid, or replaces the grid with the request body
// when one is sent.
func (s *server) load(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, bentoerr.Wrap(bentoerr.ErrCodeInvalidInput, err, "read body"))
		return
	}
	var intent controller.Intent = controller.Load{}
	if len(body) > 0 {
		intent = controller.LoadDocument{Data: body}
	}
	res, err := s.loop.Submit(r.Context(), intent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.warnSync(r, res)
	writeJSON(w, http.StatusOK, res.Tiles)
}

func (s *server) layout(w http.ResponseWriter, r *http.Request) {
	var l render.Layout
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		els := c.Adapter().Elements()
		l = render.NewLayout(els, bounds(c.Engine(), els), s.conv)
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) layoutSVG(w http.ResponseWriter, r *http.Request) {
	var data []byte
	err := s.loop.Do(r.Context(), func(c *controller.Controller) error {
		els := c.Adapter().Elements()
		data = svg.Render(els, bounds(c.Engine(), els), svg.WithLabels())
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(data)
}

// submit dispatches intent and answers with the affected tile.
func (s *server) submit(w http.ResponseWriter, r *http.Request, status int, intent controller.Intent) {
	res, err := s.loop.Submit(r.Context(), intent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.warnSync(r, res)
	writeJSON(w, status, res.Tile)
}

// warnSync reports a non-fatal layout failure. The response still succeeds.
func (s *server) warnSync(r *http.Request, res controller.Result) {
	if res.SyncErr != nil {
		loggerFromContext(r.Context()).Warn("layout out of date", "err", res.SyncErr)
	}
}

// =============================================================================
// Request and Response Helpers
// =============================================================================

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func tileID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return 0, false
	}
	return id, true
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, bentoerr.Wrap(bentoerr.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "err", err)
	}
	code := bentoerr.GetCode(err)
	if code == "" {
		code = bentoerr.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: bentoerr.UserMessage(err)})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch bentoerr.GetCode(err) {
	case bentoerr.ErrCodeNotFound:
		return http.StatusNotFound
	case bentoerr.ErrCodeMalformedDocument, bentoerr.ErrCodeInvalidInput, bentoerr.ErrCodeImageDecode:
		return http.StatusBadRequest
	}
	if errors.Is(err, context.Canceled) {
		return 499
	}
	return http.StatusInternalServerError
}
