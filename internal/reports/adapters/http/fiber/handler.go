package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"chat-stats-service/internal/reports/core/domain"
	"chat-stats-service/internal/reports/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type GetReportUseCase interface {
	Activity(ctx context.Context, chatID int64, w usecase.Window) ([]domain.ChartPoint, error)
	Leaderboard(ctx context.Context, chatID int64, w usecase.Window, limit int) ([]domain.LeaderboardEntry, error)
	TopWords(ctx context.Context, chatID int64, w usecase.Window, limit int) ([]domain.WordEntry, error)
}

type ResetChatUseCase interface {
	Execute(ctx context.Context, chatID int64) (usecase.ResetResult, error)
}

type ReportHandler struct {
	reportUC GetReportUseCase
	resetUC  ResetChatUseCase
}

func NewReportHandler(reportUC GetReportUseCase, resetUC ResetChatUseCase) *ReportHandler {
	return &ReportHandler{reportUC: reportUC, resetUC: resetUC}
}

// GetActivity godoc
// @Summary Activity chart for a chat
// @Description Returns zero-filled chart buckets for the requested window
// @Tags Reports
// @Produce json
// @Param chat_id path int true "Chat ID"
// @Param window query string false "weekly or monthly" default(weekly)
// @Success 200 {object} ActivityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chats/{chat_id}/activity [get]
func (h *ReportHandler) GetActivity(c *fiber.Ctx) error {
	chatID, window, err := h.parseQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	points, err := h.reportUC.Activity(c.UserContext(), chatID, window)
	if err != nil {
		return reportError(c, err)
	}

	dto := make([]ChartPointDTO, len(points))
	for i, p := range points {
		dto[i] = ChartPointDTO{Label: p.Label, Value: p.Value}
	}
	return c.JSON(ActivityResponse{ChatID: chatID, Window: string(window), Points: dto})
}

// GetLeaderboard godoc
// @Summary Most active users for a chat
// @Tags Reports
// @Produce json
// @Param chat_id path int true "Chat ID"
// @Param window query string false "weekly or monthly" default(weekly)
// @Param limit query int false "Entries to return" default(10)
// @Success 200 {object} LeaderboardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chats/{chat_id}/leaderboard [get]
func (h *ReportHandler) GetLeaderboard(c *fiber.Ctx) error {
	chatID, window, err := h.parseQuery(c)
	if err != nil {
		return badRequest(c, err)
	}
	limit := c.QueryInt("limit")

	entries, err := h.reportUC.Leaderboard(c.UserContext(), chatID, window, limit)
	if err != nil {
		return reportError(c, err)
	}

	dto := make([]LeaderboardEntryDTO, len(entries))
	for i, e := range entries {
		dto[i] = LeaderboardEntryDTO{UserID: e.UserID, Username: e.Username, Count: e.Count}
	}
	return c.JSON(LeaderboardResponse{ChatID: chatID, Window: string(window), Entries: dto})
}

// GetTopWords godoc
// @Summary Most used words for a chat
// @Tags Reports
// @Produce json
// @Param chat_id path int true "Chat ID"
// @Param window query string false "weekly or monthly" default(weekly)
// @Param limit query int false "Entries to return" default(10)
// @Success 200 {object} TopWordsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /chats/{chat_id}/words [get]
func (h *ReportHandler) GetTopWords(c *fiber.Ctx) error {
	chatID, window, err := h.parseQuery(c)
	if err != nil {
		return badRequest(c, err)
	}
	limit := c.QueryInt("limit")

	words, err := h.reportUC.TopWords(c.UserContext(), chatID, window, limit)
	if err != nil {
		return reportError(c, err)
	}

	dto := make([]WordEntryDTO, len(words))
	for i, w := range words {
		dto[i] = WordEntryDTO{Word: w.Word, Count: w.Count}
	}
	return c.JSON(TopWordsResponse{ChatID: chatID, Window: string(window), Words: dto})
}

// ResetChat godoc
// @Summary Delete all stored data for a chat
// @Description Best-effort reset across counters, raw messages, and summary rows
// @Tags Reports
// @Produce json
// @Param chat_id path int true "Chat ID"
// @Success 200 {object} ResetResponse
// @Success 207 {object} ResetResponse "Some targets failed"
// @Failure 400 {object} ErrorResponse
// @Router /chats/{chat_id} [delete]
func (h *ReportHandler) ResetChat(c *fiber.Ctx) error {
	chatID, err := parseChatID(c)
	if err != nil {
		return badRequest(c, err)
	}

	res, err := h.resetUC.Execute(c.UserContext(), chatID)
	if err != nil {
		if errors.Is(err, usecase.ErrPartialReset) {
			return c.Status(http.StatusMultiStatus).JSON(ResetResponse{
				Status: "partial",
				Failed: res.Failed,
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}

	return c.JSON(ResetResponse{Status: "reset"})
}

func (h *ReportHandler) parseQuery(c *fiber.Ctx) (int64, usecase.Window, error) {
	chatID, err := parseChatID(c)
	if err != nil {
		return 0, "", err
	}
	window, err := usecase.ParseWindow(c.Query("window"))
	if err != nil {
		return 0, "", err
	}
	return chatID, window, nil
}

func parseChatID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("chat_id"), 10, 64)
}

func badRequest(c *fiber.Ctx, err error) error {
	label := "invalid_request"
	if errors.Is(err, usecase.ErrInvalidWindow) {
		label = "invalid_window"
	}
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Error:   label,
		Message: err.Error(),
	})
}

func reportError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrRateLimited):
		return c.Status(http.StatusTooManyRequests).JSON(ErrorResponse{
			Error:   "rate_limited",
			Message: "data source limits exhausted, narrow the requested window",
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "report_unavailable",
			Message: "try again later",
		})
	}
}
