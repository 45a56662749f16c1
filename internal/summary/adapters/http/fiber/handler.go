package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"chat-stats-service/internal/summary/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type SummarizeChatUseCase interface {
	Execute(ctx context.Context, chatID int64, w usecase.Window) (string, error)
}

type SummaryHandler struct {
	summaryUC SummarizeChatUseCase
}

func NewSummaryHandler(summaryUC SummarizeChatUseCase) *SummaryHandler {
	return &SummaryHandler{summaryUC: summaryUC}
}

// Summarize godoc
// @Summary AI summary of recent chat activity
// @Description Map-reduce summarization of the chat's raw messages for the window
// @Tags Summary
// @Produce json
// @Param chat_id path int true "Chat ID"
// @Param window query string false "weekly or monthly" default(weekly)
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /chats/{chat_id}/summary [post]
func (h *SummaryHandler) Summarize(c *fiber.Ctx) error {
	chatID, err := strconv.ParseInt(c.Params("chat_id"), 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}
	window, err := usecase.ParseWindow(c.Query("window"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_window",
			Message: err.Error(),
		})
	}

	text, err := h.summaryUC.Execute(c.UserContext(), chatID, window)
	if err != nil {
		if errors.Is(err, usecase.ErrNoMessages) {
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{
				Error:   "no_messages",
				Message: "nothing to summarize in the requested window",
			})
		}
		return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "summary_failed",
			Message: "try again later",
		})
	}

	return c.JSON(SummaryResponse{ChatID: chatID, Window: string(window), Summary: text})
}
