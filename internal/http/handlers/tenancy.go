package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"tenancypack/internal/config"
	"tenancypack/internal/document"
	"tenancypack/internal/domain"
	"tenancypack/internal/infra/logging"
	"tenancypack/internal/metrics"
	"tenancypack/internal/pack"
)

// PackService serves tenancy pack generation.
type PackService struct {
	Builder *pack.Builder
	Strict  bool
}

// NewPackService wires a pack builder for the given renderer.
func NewPackService(cfg config.Config, renderer document.Renderer, now func() time.Time) *PackService {
	return &PackService{
		Builder: &pack.Builder{
			Renderer:         renderer,
			ScratchDir:       cfg.Pack.ScratchDir,
			ReflectDocuments: cfg.Pack.ChecklistReflectsDocuments,
			Now:              now,
		},
		Strict: cfg.Strict(),
	}
}

// HandleGenerate builds a pack from the JSON body and streams it back as a
// zip attachment. The scratch workspace is removed once the body is sent.
func (svc *PackService) HandleGenerate(c *fiber.Ctx) error {
	start := time.Now()
	requestID := c.GetRespHeader(fiber.HeaderXRequestID)

	req, err := domain.DecodeRequest(c.Body(), svc.Strict)
	if err != nil {
		return svc.fail(err, requestID)
	}

	p, err := svc.Builder.Build(c.UserContext(), req)
	if err != nil {
		return svc.fail(domain.Internal(err), requestID)
	}
	body, err := p.Open()
	if err != nil {
		return svc.fail(domain.Internal(err), requestID)
	}

	elapsed := time.Since(start)
	metrics.ObserveBuild(elapsed, p.Size, len(p.Entries))
	logging.Info("Tenancy pack generated",
		"pack_id", p.ID,
		"filename", p.Filename,
		"entries", len(p.Entries),
		"bytes", p.Size,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestID,
	)

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+p.Filename+`"`)
	return c.SendStream(body, int(p.Size))
}

func (svc *PackService) fail(err error, requestID string) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		metrics.ObserveFailure(metrics.ResultValidationError)
		logging.Warn("Tenancy pack rejected", "error", err, "request_id", requestID)
		return err
	}
	metrics.ObserveFailure(metrics.ResultInternalError)
	logging.Error("Tenancy pack generation failed", "error", err, "request_id", requestID)
	return domain.Internal(err)
}
