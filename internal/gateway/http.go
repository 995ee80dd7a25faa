package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/movihq/movi/internal/orchestrator"
	"github.com/movihq/movi/internal/speech"
	"github.com/movihq/movi/internal/transport"
)

// Server exposes the operations dashboard API and the conversational
// ingest endpoint over HTTP.
type Server struct {
	echo        *echo.Echo
	port        int
	orch        *orchestrator.Orchestrator
	store       *transport.Store
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	dataDir     string
	audioDir    string
}

func NewServer(port int, orch *orchestrator.Orchestrator, store *transport.Store, transcriber speech.Transcriber, synthesizer speech.Synthesizer, dataDir string) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:        e,
		port:        port,
		orch:        orch,
		store:       store,
		transcriber: transcriber,
		synthesizer: synthesizer,
		dataDir:     dataDir,
		audioDir:    filepath.Join(dataDir, "audio"),
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	api := s.echo.Group("/api")

	api.POST("/movi", s.ingest)

	api.GET("/stops", s.getStops)
	api.GET("/paths", s.getPaths)
	api.GET("/routes", s.getRoutes)
	api.POST("/routes", s.createRoute)
	api.PUT("/routes/:route_id", s.updateRoute)
	api.DELETE("/routes/:route_id", s.deleteRoute)
	api.GET("/vehicles", s.getVehicles)
	api.GET("/drivers", s.getDrivers)
	api.GET("/daily-trips", s.getDailyTrips)
	api.GET("/deployments", s.getDeployments)
	api.PUT("/deployments/:deployment_id", s.updateDeployment)
	api.DELETE("/deployments/:deployment_id", s.deleteDeployment)
	api.GET("/stats", s.getStats)

	s.echo.GET("/src/audio/:filename", s.getAudio)
}

// Start begins serving in the background. Use Shutdown to stop.
func (s *Server) Start() {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ingest is the conversational entry point. It accepts multipart form
// data with text, an optional voice note, and the dashboard page the
// user is looking at, and routes the turn through the orchestrator.
func (s *Server) ingest(c echo.Context) error {
	saved := map[string]string{}

	threadID := c.FormValue("thread_id")
	text := c.FormValue("text")
	currentPage := c.FormValue("currentPage")
	if currentPage == "" {
		currentPage = "busDashboard"
	}

	// A voice note replaces typed text.
	if file, err := c.FormFile("audio"); err == nil && file != nil {
		transcript, name, err := s.transcribeUpload(c.Request().Context(), file)
		if err != nil {
			log.Printf("audio transcription failed: %v", err)
			return c.JSON(http.StatusOK, map[string]any{
				"success":            true,
				"saved":              saved,
				"response":           "Sorry, I couldn't understand the audio. Please try again.",
				"needs_confirmation": false,
				"thread_id":          threadID,
			})
		}
		saved["audio"] = name
		text = transcript
	}

	// Images are stored alongside the thread for later reference; the
	// workflow itself is text-driven.
	if file, err := c.FormFile("image"); err == nil && file != nil {
		if name, err := s.saveUpload(file, "images", ".png"); err == nil {
			saved["image"] = name
		} else {
			log.Printf("image upload failed: %v", err)
		}
	}

	result, err := s.orch.Run(c.Request().Context(), threadID, text, currentPage)
	if err != nil {
		log.Printf("ingest failed: %v", err)
		return c.JSON(http.StatusOK, map[string]any{
			"success":            true,
			"saved":              saved,
			"response":           "I encountered an error. Please try again.",
			"needs_confirmation": false,
			"thread_id":          threadID,
		})
	}

	var audioURL any
	if s.synthesizer != nil {
		if name, err := s.synthesizeReply(c.Request().Context(), result.ResponseText); err == nil {
			audioURL = "/src/audio/" + name
			saved["tts_audio"] = name
		} else {
			log.Printf("speech synthesis failed: %v", err)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":            true,
		"saved":              saved,
		"response":           result.ResponseText,
		"needs_confirmation": result.NeedsConfirmation,
		"audio_url":          audioURL,
		"thread_id":          result.ThreadID,
	})
}

func (s *Server) transcribeUpload(ctx context.Context, file *multipart.FileHeader) (string, string, error) {
	name, err := s.saveUpload(file, "audio", ".wav")
	if err != nil {
		return "", "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	audio, err := io.ReadAll(src)
	if err != nil {
		return "", "", err
	}

	text, err := s.transcriber.Transcribe(ctx, name, audio)
	return text, name, err
}

func (s *Server) synthesizeReply(ctx context.Context, text string) (string, error) {
	audio, err := s.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("reply_%s.mp3", time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(s.audioDir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.audioDir, name), audio, 0644); err != nil {
		return "", err
	}
	return name, nil
}

// saveUpload writes a form file under the data dir with a timestamped
// name and returns the stored filename.
func (s *Server) saveUpload(file *multipart.FileHeader, subdir, defaultExt string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s%s",
		strippedName(file.Filename), time.Now().Format("20060102_150405"), extOrDefault(file.Filename, defaultExt))
	dir := filepath.Join(s.dataDir, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", err
	}
	return name, nil
}

func strippedName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extOrDefault(filename, fallback string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	return fallback
}

func (s *Server) getAudio(c echo.Context) error {
	name := filepath.Base(c.Param("filename"))
	path := filepath.Join(s.audioDir, name)
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Audio file not found"})
	}
	return c.File(path)
}

// Dashboard CRUD handlers. These mirror the operational store directly
// and never pass through the confirmation workflow.

func (s *Server) getStops(c echo.Context) error {
	stops, err := s.store.ListStops(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, stops)
}

func (s *Server) getPaths(c echo.Context) error {
	paths, err := s.store.ListPaths(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, paths)
}

func (s *Server) getRoutes(c echo.Context) error {
	routes, err := s.store.ListRoutes(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, routes)
}

func (s *Server) createRoute(c echo.Context) error {
	var route transport.Route
	if err := c.Bind(&route); err != nil {
		return c.JSON(http.StatusBadRequest, fail("Invalid route payload"))
	}
	if err := s.store.CreateRoute(c.Request().Context(), route); err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, ok("Route created successfully"))
}

func (s *Server) updateRoute(c echo.Context) error {
	patch := map[string]any{}
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, fail("Invalid route payload"))
	}
	if err := s.store.UpdateRoute(c.Request().Context(), c.Param("route_id"), patch); err != nil {
		if err.Error() == "no fields to update" {
			return c.JSON(http.StatusBadRequest, fail("No fields to update"))
		}
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, ok("Route updated successfully"))
}

func (s *Server) deleteRoute(c echo.Context) error {
	if err := s.store.DeleteRoute(c.Request().Context(), c.Param("route_id")); err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, ok("Route deleted successfully"))
}

func (s *Server) getVehicles(c echo.Context) error {
	vehicles, err := s.store.ListVehicles(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, vehicles)
}

func (s *Server) getDrivers(c echo.Context) error {
	drivers, err := s.store.ListDrivers(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, drivers)
}

func (s *Server) getDailyTrips(c echo.Context) error {
	trips, err := s.store.ListTripDetails(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, trips)
}

func (s *Server) getDeployments(c echo.Context) error {
	deployments, err := s.store.ListDeployments(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, deployments)
}

func (s *Server) updateDeployment(c echo.Context) error {
	var body struct {
		VehicleID *string `json:"vehicle_id"`
		DriverID  *string `json:"driver_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, fail("Invalid deployment payload"))
	}
	if err := s.store.AssignDeployment(c.Request().Context(), c.Param("deployment_id"), body.VehicleID, body.DriverID); err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, ok("Deployment updated successfully"))
}

func (s *Server) deleteDeployment(c echo.Context) error {
	if err := s.store.ClearDeployment(c.Request().Context(), c.Param("deployment_id")); err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, ok("Deployment removed successfully"))
}

func (s *Server) getStats(c echo.Context) error {
	stats, err := s.store.GetStats(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func ok(msg string) map[string]any {
	return map[string]any{"success": true, "message": msg}
}

func fail(msg string) map[string]any {
	return map[string]any{"success": false, "message": msg}
}

func dbError(c echo.Context, err error) error {
	log.Printf("database error: %v", err)
	return c.JSON(http.StatusInternalServerError, fail("Database error"))
}
