package compare

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"

	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/logger"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/sheet"
	"asset-reconciler/feature/report"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Response is the JSON body of a comparison.
type Response struct {
	report.Document
	ReportObject string `json:"report_object,omitempty"`
	ElapsedMs    int64  `json:"elapsed_ms"`
}

// RulesResponse describes a parsed rule book.
type RulesResponse struct {
	Source   string       `json:"source"`
	Rules    []rules.Rule `json:"rules"`
	Warnings []string     `json:"warnings"`
}

// Handler handles HTTP requests for comparisons.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the compare routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/compare")
	group.Post("", h.HandleCompare)
	group.Post("/upload", h.HandleUpload)
	group.Get("/rules", h.HandleGetRules)
	group.Delete("/rules/cache", h.HandleInvalidateRules)
	group.Get("/inputs", h.HandleListInputs)
}

// HandleCompare compares two tables stored in the bucket.
// @Summary Compare Tables
// @Description Compare a platform table with an ERP table stored in the bucket. Use format=xlsx to download the report workbook.
// @Tags compare
// @Accept json
// @Produce json
// @Param request body Request true "Input objects"
// @Param format query string false "Response format (json, xlsx)"
// @Success 200 {object} Response "Comparison result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} map[string]string "Rule book or input tables unusable"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /compare [post]
func (h *Handler) HandleCompare(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	out, err := h.service.Compare(c.Context(), req)
	if err != nil {
		l.Error("Comparison failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return h.respond(c, out)
}

// HandleUpload compares two uploaded tables.
// @Summary Compare Uploaded Tables
// @Description Compare uploaded platform and ERP tables (xlsx or csv). An uploaded rule book replaces the configured one.
// @Tags compare
// @Accept multipart/form-data
// @Produce json
// @Param platform formData file true "Platform table"
// @Param reference formData file true "ERP table"
// @Param rules formData file false "Rule book (xlsx or yaml)"
// @Param platform_sheet formData string false "Platform worksheet"
// @Param reference_sheet formData string false "ERP worksheet"
// @Param format query string false "Response format (json, xlsx)"
// @Success 200 {object} Response "Comparison result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} map[string]string "Rule book or input tables unusable"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /compare/upload [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	cfg := h.service.cfg

	platform, err := formSource(c, "platform", cfg.PlatformOptions(c.FormValue("platform_sheet")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	reference, err := formSource(c, "reference", cfg.ReferenceOptions(c.FormValue("reference_sheet")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var book *rules.Book
	if fh, ferr := c.FormFile("rules"); ferr == nil {
		data, err := readForm(fh)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		book, err = rules.LoadNamed(fh.Filename, bytes.NewReader(data), cfg.Sheets())
		if err != nil {
			l.Error("Uploaded rule book rejected", zap.Error(err))
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
	} else {
		book, err = h.service.Book(c.Context(), "")
		if err != nil {
			l.Error("Failed to load rule book", zap.Error(err))
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
	}

	out, err := h.service.Run(c.Context(), book, platform, reference, false)
	if err != nil {
		l.Error("Comparison failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return h.respond(c, out)
}

// HandleGetRules returns a parsed rule book.
// @Summary Get Rules
// @Description Parse a rule book from the bucket and list its rules.
// @Tags compare
// @Produce json
// @Param object query string false "Rule book object (defaults to the configured one)"
// @Success 200 {object} RulesResponse "Rules"
// @Failure 422 {object} map[string]string "Rule book unusable"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /compare/rules [get]
func (h *Handler) HandleGetRules(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	book, err := h.service.Book(c.Context(), c.Query("object"))
	if err != nil {
		l.Error("Failed to load rule book", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	warnings := book.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return c.JSON(RulesResponse{Source: book.Source, Rules: book.Rules.All(), Warnings: warnings})
}

// HandleInvalidateRules drops a cached rule book.
// @Summary Invalidate Rules
// @Description Drop a cached rule book so the next comparison reads it again.
// @Tags compare
// @Param object query string false "Rule book object (defaults to the configured one)"
// @Success 204 "No Content"
// @Router /compare/rules/cache [delete]
func (h *Handler) HandleInvalidateRules(c *fiber.Ctx) error {
	h.service.InvalidateRules(c.Query("object"))
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListInputs lists the input tables in the bucket.
// @Summary List Inputs
// @Description List xlsx and csv objects under the input prefix.
// @Tags compare
// @Produce json
// @Success 200 {object} map[string][]string "Objects"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /compare/inputs [get]
func (h *Handler) HandleListInputs(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	names, err := h.service.ListInputs(c.Context())
	if err != nil {
		l.Error("Failed to list inputs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(fiber.Map{"objects": names})
}

func (h *Handler) respond(c *fiber.Ctx, out *Outcome) error {
	if c.Query("format") == "xlsx" {
		var buf bytes.Buffer
		if err := report.WriteWorkbook(&buf, out.Result, out.Rules, h.service.cfg.Report); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Attachment(out.Result.RunID + ".xlsx")
		return c.Send(buf.Bytes())
	}
	return c.JSON(Response{
		Document:     report.NewDocument(out.Result),
		ReportObject: out.ReportObject,
		ElapsedMs:    out.Elapsed.Milliseconds(),
	})
}

func formSource(c *fiber.Ctx, field string, opts sheet.Options) (sheet.BytesSource, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return sheet.BytesSource{}, errors.New("missing file field " + field)
	}
	data, err := readForm(fh)
	if err != nil {
		return sheet.BytesSource{}, err
	}
	return sheet.BytesSource{Filename: fh.Filename, Data: data, Options: opts}, nil
}

func readForm(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// statusFor maps run errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, apperrors.ErrUnsupportedExt):
		return fiber.StatusBadRequest
	case apperrors.IsFatal(err), errors.Is(err, apperrors.ErrFieldNotFound), errors.Is(err, apperrors.ErrEvaluation):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
