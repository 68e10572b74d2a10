// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"lecture-quiz-api/internal/application/retrieval"
	"lecture-quiz-api/internal/interfaces/http/dto"
	"lecture-quiz-api/pkg/logger"
)

// IndexHandler 索引处理器
type IndexHandler struct {
	indexService *retrieval.IndexService
}

// NewIndexHandler 创建索引处理器
func NewIndexHandler(indexService *retrieval.IndexService) *IndexHandler {
	return &IndexHandler{
		indexService: indexService,
	}
}

// IndexLecture 索引讲座字幕
// @Summary 索引讲座字幕
// @Description 解析 VTT 字幕并构建词法与向量双索引，内容未变化时跳过
// @Tags Index
// @Accept json
// @Produce json
// @Param lecture_id path string true "讲座 ID"
// @Param body body dto.IndexLectureRequest true "索引请求"
// @Success 200 {object} dto.Response[dto.IndexResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/lectures/{lecture_id}/index [post]
func (h *IndexHandler) IndexLecture(c *gin.Context) {
	ctx := c.Request.Context()

	lectureID := strings.TrimSpace(c.Param("lecture_id"))
	if lectureID == "" {
		dto.BadRequest(c, "lecture_id is required")
		return
	}

	var req dto.IndexLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	namespace, chunkCount, rebuilt, err := h.indexService.IndexLecture(ctx, lectureID, req.VTTText)
	if err != nil {
		respondError(c, err, "failed to index lecture")
		return
	}

	logger.Info(ctx, "讲座索引完成",
		"namespace", namespace, "chunks", chunkCount, "rebuilt", rebuilt)
	dto.Success(c, dto.IndexResponse{
		Namespace:  namespace,
		ChunkCount: chunkCount,
		Rebuilt:    rebuilt,
	})
}

// IndexSummary 索引摘要文本
// @Summary 索引摘要文本
// @Description 将自由文本按固定长度切块后走同一条双索引链路
// @Tags Index
// @Accept json
// @Produce json
// @Param summary_id path string true "摘要 ID"
// @Param body body dto.IndexSummaryRequest true "索引请求"
// @Success 200 {object} dto.Response[dto.IndexResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/summaries/{summary_id}/index [post]
func (h *IndexHandler) IndexSummary(c *gin.Context) {
	ctx := c.Request.Context()

	summaryID := strings.TrimSpace(c.Param("summary_id"))
	if summaryID == "" {
		dto.BadRequest(c, "summary_id is required")
		return
	}

	var req dto.IndexSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	namespace, chunkCount, rebuilt, err := h.indexService.IndexSummary(ctx, summaryID, req.Content)
	if err != nil {
		respondError(c, err, "failed to index summary")
		return
	}

	logger.Info(ctx, "摘要索引完成",
		"namespace", namespace, "chunks", chunkCount, "rebuilt", rebuilt)
	dto.Success(c, dto.IndexResponse{
		Namespace:  namespace,
		ChunkCount: chunkCount,
		Rebuilt:    rebuilt,
	})
}
