package fiber

import (
	"context"
	"errors"
	"net/http"

	"chat-stats-service/internal/messages/core/domain"
	"chat-stats-service/internal/messages/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type IngestMessageUseCase interface {
	Execute(ctx context.Context, in usecase.IngestMessageInput) (*domain.Message, error)
	BulkIngest(ctx context.Context, in usecase.BulkIngestInput) (usecase.BulkIngestResult, error)
}

type MessageHandler struct {
	ingestUC IngestMessageUseCase
}

func NewMessageHandler(ingestUC IngestMessageUseCase) *MessageHandler {
	return &MessageHandler{ingestUC: ingestUC}
}

// IngestMessage godoc
// @Summary Ingest a chat message
// @Description Stores the raw message and updates activity counters
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body IngestMessageRequest true "Message payload"
// @Success 201 {object} IngestMessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /messages [post]
func (h *MessageHandler) IngestMessage(c *fiber.Ctx) error {
	var req IngestMessageRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	input := usecase.IngestMessageInput{
		ChatID:    req.ChatID,
		UserID:    req.UserID,
		Username:  req.Username,
		Text:      req.Text,
		Timestamp: req.Timestamp,
	}

	m, err := h.ingestUC.Execute(c.UserContext(), input)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidMessage),
			errors.Is(err, usecase.ErrFutureTime):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_message",
				Message: err.Error(),
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	return c.Status(http.StatusCreated).JSON(IngestMessageResponse{
		Status:    "stored",
		MessageID: m.ID,
	})
}

// BulkIngestMessages godoc
// @Summary Bulk ingest chat messages
// @Description Accepts a delivery batch of messages and ingests them in order
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body BulkIngestRequest true "Bulk message payload"
// @Success 201 {object} BulkIngestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /messages/bulk [post]
func (h *MessageHandler) BulkIngestMessages(c *fiber.Ctx) error {
	var req BulkIngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "messages_list_required",
		})
	}

	inputs := make([]usecase.IngestMessageInput, len(req.Messages))
	for i, m := range req.Messages {
		inputs[i] = usecase.IngestMessageInput{
			ChatID:    m.ChatID,
			UserID:    m.UserID,
			Username:  m.Username,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
	}

	result, err := h.ingestUC.BulkIngest(
		c.UserContext(),
		usecase.BulkIngestInput{Messages: inputs},
	)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidMessage),
			errors.Is(err, usecase.ErrFutureTime):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_message",
				Message: err.Error(),
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(BulkIngestResponse{
		Ingested: result.Ingested,
	})
}
