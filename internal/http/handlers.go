package http

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/service"
)

type handlers struct {
	svcs      *service.Services
	maxUpload int64
}

// Register mounts the API routes. maxUpload caps the size of an uploaded
// file in bytes.
func Register(app *fiber.App, svcs *service.Services, maxUpload int64) {
	h := &handlers{svcs: svcs, maxUpload: maxUpload}

	app.Use(Middleware(svcs.Metrics)...)
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(svcs.Metrics.Handler()))

	api := app.Group("/api")
	api.Post("/upload/", h.upload)
	api.Get("/summary/", h.latestSummary)
	api.Get("/history/", h.history)
	api.Get("/report/:id/", h.report)
	api.Get("/datasets/:id/summary/", h.datasetSummary)
	api.Delete("/datasets/:id/", h.deleteDataset)
}

func (h *handlers) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}
	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUpload),
		})
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, fmt.Errorf("open upload: %w", err), "")
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, fmt.Errorf("read upload: %w", err), "")
	}

	ds, err := h.svcs.Datasets.Ingest(c.UserContext(), fh.Filename, raw)
	if err != nil {
		return respondError(c, err, "")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Upload successful", "id": ds.ID})
}

func (h *handlers) latestSummary(c *fiber.Ctx) error {
	s, err := h.svcs.Summaries.Latest(c.UserContext())
	if err != nil {
		return respondError(c, err, "No data available")
	}
	return c.JSON(s)
}

func (h *handlers) history(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	list, err := h.svcs.Summaries.History(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(list)
}

func (h *handlers) datasetSummary(c *fiber.Ctx) error {
	id, ok := datasetID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid dataset id"})
	}
	s, err := h.svcs.Summaries.ForDataset(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Dataset not found")
	}
	return c.JSON(s)
}

func (h *handlers) report(c *fiber.Ctx) error {
	id, ok := datasetID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid dataset id"})
	}
	rep, err := h.svcs.Reports.Generate(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Dataset not found")
	}

	c.Set(fiber.HeaderContentType, rep.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(rep.Filename, `"`, "'")))
	if rep.URL != "" {
		c.Set("X-Report-URL", rep.URL)
	}
	return c.Send(rep.Body)
}

func (h *handlers) deleteDataset(c *fiber.Ctx) error {
	id, ok := datasetID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid dataset id"})
	}
	if err := h.svcs.Datasets.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err, "Dataset not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func datasetID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// ErrorHandler renders errors that escape the handlers as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err, "")
}

// respondError maps domain errors to status codes. Unexpected errors are
// logged and hidden from the client.
func respondError(c *fiber.Ctx, err error, notFound string) error {
	var mc *domain.MissingColumnsError
	var rp *domain.RowParseError
	switch {
	case errors.As(err, &mc):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "missing_columns": mc.Columns})
	case errors.As(err, &rp):
		body := fiber.Map{"error": err.Error(), "row": rp.Row}
		if rp.Column != "" {
			body["column"] = rp.Column
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case domain.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound})
	}

	ev := log.Error().Err(err).Str("path", c.Path()).Interface("request_id", c.Locals("requestid"))
	var re *domain.RenderError
	if errors.As(err, &re) {
		ev = ev.Str("stage", re.Stage)
	}
	if id := c.Params("id"); id != "" {
		ev = ev.Str("dataset_id", id)
	}
	ev.Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
