// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"lecture-quiz-api/internal/application/retrieval"
	"lecture-quiz-api/internal/interfaces/http/dto"
)

// RetrievalHandler 检索处理器
type RetrievalHandler struct {
	engine *retrieval.Engine
}

// NewRetrievalHandler 创建检索处理器
func NewRetrievalHandler(engine *retrieval.Engine) *RetrievalHandler {
	return &RetrievalHandler{
		engine: engine,
	}
}

// Search 混合检索
// @Summary 混合检索
// @Description 对指定命名空间做词法 + 向量混合检索，RRF 融合后经 MMR 去冗
// @Tags Retrieval
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/retrieval/search [post]
func (h *RetrievalHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	out, err := h.engine.Retrieve(ctx, retrieval.RetrieveInput{
		Namespace:  req.Namespace,
		AnchorText: req.AnchorText,
		TopKVec:    req.TopKVec,
		TopKLex:    req.TopKLex,
		FinalK:     req.FinalK,
		OutK:       req.OutK,
		MMRLambda:  req.MMRLambda,
		IncludeRaw: req.IncludeRaw,
	})
	if err != nil {
		respondError(c, err, "failed to search")
		return
	}

	dto.Success(c, dto.ToSearchResponse(out))
}
