package integrity

import (
	"asset-reconciler/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/rules", h.HandleRuleBookCheck)
	group.Get("/staging", h.HandleStagingCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Checks the bucket layout, the configured rule book and the staging table.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]interface{})

	if missing, err := h.service.CheckStructure(ctx); err != nil {
		report["structure"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["structure"] = map[string]interface{}{"status": "ok", "missing": missing}
	}

	if book, err := h.service.CheckRuleBook(ctx, ""); err != nil {
		report["rules"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["rules"] = book
	}

	if stg, err := h.service.CheckStaging(); err != nil {
		report["staging"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["staging"] = stg
	}

	return c.JSON(report)
}

// HandleStructureCheck checks and optionally fixes structure.
// @Summary Check Structure
// @Description Checks that the rules, inputs and reports folders exist in the bucket. Optionally creates missing folders.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Fix missing folders"
// @Success 200 {object} map[string]interface{} "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	missing, err := h.service.CheckStructure(c.Context())
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(missing) > 0 {
		l.Warn("Missing folders detected", zap.Strings("missing", missing))

		if fix {
			l.Info("Attempting to fix missing folders")
			if err := h.service.FixStructure(c.Context(), missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix structure",
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleRuleBookCheck validates a rule book.
// @Summary Check Rule Book
// @Description Loads a rule book from the bucket and reports parse errors, warnings and key fields.
// @Tags integrity
// @Accept json
// @Produce json
// @Param object query string false "Rule book object (defaults to the configured one)"
// @Success 200 {object} checks.RuleBookReport "Rule Book Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/rules [get]
func (h *Handler) HandleRuleBookCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckRuleBook(c.Context(), c.Query("object"))
	if err != nil {
		l.Error("Rule book check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if report.Status != "ok" {
		l.Warn("Rule book check found problems",
			zap.String("object", report.Object),
			zap.Strings("errors", report.Errors),
			zap.Int("warnings", len(report.Warnings)))
	}
	return c.JSON(report)
}

// HandleStagingCheck checks the staging table schema.
// @Summary Check Staging Schema
// @Description Checks that the staging table carries the columns staged runs use.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.StagingReport "Staging Check Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/staging [get]
func (h *Handler) HandleStagingCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting staging schema check")

	report, err := h.service.CheckStaging()
	if err != nil {
		l.Error("Staging schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
