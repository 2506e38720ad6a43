// Package api exposes the extraction engine over HTTP.
package api

import (
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-extractor/internal/engine"
)

// ExtractResponse is the JSON response from POST /api/extract.
type ExtractResponse struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	DocumentType string        `json:"documentType,omitempty"`
	Items        []engine.Item `json:"items"`
	Count        int           `json:"count"`
	Failed       int           `json:"failed"`
}

// Server wires the engine registry into fiber handlers.
type Server struct {
	registry *engine.Registry
	log      zerolog.Logger
}

func NewServer(registry *engine.Registry, log zerolog.Logger) *Server {
	return &Server{registry: registry, log: log}
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "statement-extractor",
		BodyLimit: 32 << 20, // statements are small; anything bigger is not one
	})

	app.Use(s.requestLogger)
	app.Get("/api/health", s.handleHealth)
	app.Post("/api/extract", s.handleExtract)
	return app
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("request")
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

// handleExtract accepts the decoded statement text in the request body
// ("text/plain") or as a multipart "text" field and returns the extracted
// items. PDF decoding stays in the CLI; the API works on text so it can
// sit behind whatever PDF pipeline the caller already has.
func (s *Server) handleExtract(c *fiber.Ctx) error {
	text, err := statementText(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ExtractResponse{
			Error: err.Error(),
		})
	}

	doc := engine.NewDocument(text)

	dt, err := s.registry.Classify(doc)
	if err != nil {
		var unrec *engine.UnrecognizedDocumentError
		status := fiber.StatusInternalServerError
		if errors.As(err, &unrec) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(ExtractResponse{Error: err.Error()})
	}

	items, err := dt.Parse(doc)
	if err != nil {
		// Missing document context: definition/document mismatch, the
		// whole document is rejected.
		s.log.Warn().Err(err).Str("document_type", dt.Label()).Msg("document rejected")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ExtractResponse{
			DocumentType: dt.Label(),
			Error:        err.Error(),
		})
	}

	failed := 0
	for _, item := range items {
		if item.Failed() {
			failed++
		}
	}

	s.log.Info().
		Str("document_type", dt.Label()).
		Int("items", len(items)).
		Int("failed", failed).
		Msg("document extracted")

	return c.JSON(ExtractResponse{
		Success:      true,
		DocumentType: dt.Label(),
		Items:        items,
		Count:        len(items),
		Failed:       failed,
	})
}

// statementText pulls the statement text from a multipart "text" file
// field when present, otherwise from the raw request body.
func statementText(c *fiber.Ctx) (string, error) {
	if fh, err := c.FormFile("text"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return "", errors.New("uploaded file could not be opened")
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return "", errors.New("uploaded file could not be read")
		}
		return string(b), nil
	}

	body := c.Body()
	if len(body) == 0 {
		return "", errors.New("no statement text: send it as the request body or a multipart \"text\" field")
	}
	return string(body), nil
}
