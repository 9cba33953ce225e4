package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zeusync/robosim/internal/core/observability/log"
	"github.com/zeusync/robosim/internal/core/render"
	"github.com/zeusync/robosim/internal/core/render/raster"
	"github.com/zeusync/robosim/pkg/generic"
)

// maxImageSide bounds rendered images in pixels.
const maxImageSide = 4096

var pngBuffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/step", s.handleStep).Methods(http.MethodPost)
	r.HandleFunc("/world.png", s.handleWorldPNG).Methods(http.MethodGet)
	r.HandleFunc("/world/ops", s.handleWorldOps).Methods(http.MethodGet)
	r.HandleFunc("/robots/{robot}/command", s.handleCommand).Methods(http.MethodPost)
	r.HandleFunc("/robots/{robot}/cameras/{camera:[0-9]+}.png", s.handleCameraPNG).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket)
	return r
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.State())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.GetStats())
}

func (s *Server) handleStep(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Step())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode command: %w", err))
		return
	}
	cmd.Robot = mux.Vars(r)["robot"]
	if err := s.Apply(cmd); err != nil {
		s.writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWorldPNG renders the world; ?scale= sets pixels per world unit.
func (s *Server) handleWorldPNG(w http.ResponseWriter, r *http.Request) {
	scale, err := floatParam(r, "scale", 1)
	if err != nil || scale <= 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid scale %q", r.URL.Query().Get("scale")))
		return
	}

	s.mu.Lock()
	width := int(math.Ceil(s.world.Width() * scale))
	height := int(math.Ceil(s.world.Height() * scale))
	if width > maxImageSide || height > maxImageSide {
		s.mu.Unlock()
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("image %dx%d too large", width, height))
		return
	}
	c := raster.New(width, height, scale)
	s.world.Draw(c)
	s.mu.Unlock()

	s.writePNG(w, c)
}

// handleWorldOps returns the draw calls of one frame for remote replay.
func (s *Server) handleWorldOps(w http.ResponseWriter, _ *http.Request) {
	rec := render.NewRecorder()
	s.mu.Lock()
	s.world.Draw(rec)
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, rec.Ops)
}

// handleCameraPNG serves the latest picture of one camera. The ETag is the
// picture digest so unchanged frames answer 304.
func (s *Server) handleCameraPNG(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, _ := strconv.Atoi(vars["camera"])
	scale, err := intParam(r, "scale", s.config.CameraScale)
	if err != nil || scale < 1 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid scale %q", r.URL.Query().Get("scale")))
		return
	}

	s.mu.Lock()
	robot, ok := s.world.Robot(vars["robot"])
	if !ok {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", ErrRobotNotFound, vars["robot"]))
		return
	}
	cameras := robot.Cameras()
	if index >= len(cameras) {
		s.mu.Unlock()
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %d", ErrCameraNotFound, index))
		return
	}
	pic := cameras[index].TakePicture()
	s.mu.Unlock()

	etag := fmt.Sprintf(`"%016x"`, pic.Digest())
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if pic.Width*scale > maxImageSide || pic.Height*scale > maxImageSide {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("image too large at scale %d", scale))
		return
	}

	c := raster.New(pic.Width*scale, pic.Height*scale, 1)
	c.Picture(pic, 0, 0, scale)
	s.writePNG(w, c)
}

// writePNG buffers the whole image; encode failures answer 500.
func (s *Server) writePNG(w http.ResponseWriter, c *raster.Canvas) {
	buf := pngBuffers.Get()
	defer pngBuffers.Put(buf)

	if err := c.EncodePNG(buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("encode png: %w", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("write png", log.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", log.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrRobotNotFound), errors.Is(err, ErrCameraNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
