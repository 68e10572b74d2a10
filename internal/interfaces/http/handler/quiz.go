// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lecture-quiz-api/internal/application/quiz"
	"lecture-quiz-api/internal/application/retrieval"
	"lecture-quiz-api/internal/interfaces/http/dto"
	"lecture-quiz-api/pkg/logger"
)

// QuizHandler 出题处理器
type QuizHandler struct {
	quizService  *quiz.Service
	indexService *retrieval.IndexService
	targetCount  int
}

// NewQuizHandler 创建出题处理器
func NewQuizHandler(quizService *quiz.Service, indexService *retrieval.IndexService, targetCount int) *QuizHandler {
	return &QuizHandler{
		quizService:  quizService,
		indexService: indexService,
		targetCount:  targetCount,
	}
}

// FromIntervals 按时间区间出题
// @Summary 按时间区间出题
// @Description 从 VTT 字幕中切出指定时间段的上下文并生成测验题
// @Tags Quiz
// @Accept json
// @Produce json
// @Param body body dto.QuizFromIntervalsRequest true "出题请求"
// @Success 200 {object} dto.Response[dto.QuizResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/quiz/from-intervals [post]
func (h *QuizHandler) FromIntervals(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.QuizFromIntervalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.quizService.GenerateFromIntervals(ctx, &quiz.FromIntervalsInput{
		LectureID: req.LectureID,
		UserID:    req.UserID,
		VTTText:   req.VTTText,
		Intervals: req.ToIntervals(),
	})
	if err != nil {
		respondError(c, err, "failed to generate quiz")
		return
	}

	dto.Success(c, dto.ToQuizResponse(result, h.targetCount))
}

// FromLecture 整讲检索出题
// @Summary 整讲检索出题
// @Description 对已索引的讲座做混合检索，用命中的上下文生成测验题
// @Tags Quiz
// @Accept json
// @Produce json
// @Param body body dto.QuizFromLectureRequest true "出题请求"
// @Success 200 {object} dto.Response[dto.QuizResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/quiz/from-lecture [post]
func (h *QuizHandler) FromLecture(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.QuizFromLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	// 请求携带字幕时先确保索引就绪，内容未变化时为幂等空操作
	if req.VTTText != "" {
		if _, _, _, err := h.indexService.IndexLecture(ctx, req.LectureID, req.VTTText); err != nil {
			respondError(c, err, "failed to index lecture")
			return
		}
	}

	result, err := h.quizService.GenerateFromLecture(ctx, &quiz.FromLectureInput{
		Namespace:  retrieval.LectureNamespace(req.LectureID),
		UserID:     req.UserID,
		AnchorText: req.AnchorText,
	})
	if err != nil {
		respondError(c, err, "failed to generate quiz")
		return
	}

	logger.Info(ctx, "整讲出题完成",
		"lecture_id", req.LectureID,
		"status", result.Status,
		"items", len(result.Items),
		"attempts", result.Attempts)
	dto.Success(c, dto.ToQuizResponse(result, h.targetCount))
}

// History 查询讲座历史题目
// @Summary 查询讲座历史题目
// @Description 按讲座命名空间倒序返回已落库的题目记录
// @Tags Quiz
// @Produce json
// @Param lecture_id path string true "讲座 ID"
// @Param limit query int false "返回条数上限，默认 50"
// @Success 200 {object} dto.Response[dto.QuizHistoryResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/lectures/{lecture_id}/quizzes [get]
func (h *QuizHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	lectureID := strings.TrimSpace(c.Param("lecture_id"))
	if lectureID == "" {
		dto.BadRequest(c, "lecture_id is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	namespace := retrieval.LectureNamespace(lectureID)
	records, err := h.quizService.History(ctx, namespace, limit)
	if err != nil {
		respondError(c, err, "failed to list quiz history")
		return
	}

	dto.Success(c, dto.ToQuizHistoryResponse(namespace, records))
}
