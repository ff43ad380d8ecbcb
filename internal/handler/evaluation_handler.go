package handler

import (
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eval-lab-api/internal/dto"
	"github.com/noah-isme/eval-lab-api/internal/judge"
	"github.com/noah-isme/eval-lab-api/internal/prompts"
	"github.com/noah-isme/eval-lab-api/internal/service"
	"github.com/noah-isme/eval-lab-api/internal/utils"
)

// EvaluationHandler exposes the evaluation endpoints.
type EvaluationHandler struct {
	service   service.EvaluationService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service service.EvaluationService, validator *validator.Validate, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("", h.evaluate)
	router.Post("/batch", h.evaluateBatch)
	router.Get("/history", h.history)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Evaluate(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation complete", response)
}

func (h *EvaluationHandler) evaluateBatch(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "missing 'file' upload")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cannot open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "cannot read uploaded file")
	}

	response, err := h.service.EvaluateBatch(c.Context(), data)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "batch evaluation complete", response)
}

func (h *EvaluationHandler) history(c *fiber.Ctx) error {
	response, err := h.service.History(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "history retrieved", response)
}

func (h *EvaluationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, prompts.ErrUnknownKind),
		errors.Is(err, prompts.ErrUnknownAreaCode),
		errors.Is(err, service.ErrInvalidInputRecord),
		errors.Is(err, service.ErrBatchColumns),
		errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, judge.ErrInvalidBatchSize):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProviderCall):
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("evaluation operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
