package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"lecture-quiz-api/internal/application/caption"
	"lecture-quiz-api/internal/domain/entity"
	apperrors "lecture-quiz-api/pkg/errors"
)

// LectureNamespace 讲座命名空间
func LectureNamespace(lectureID string) string {
	return "lecture_" + strings.TrimSpace(lectureID)
}

// SummaryNamespace 摘要命名空间
func SummaryNamespace(summaryID string) string {
	return "summary_" + strings.TrimSpace(summaryID)
}

// 命名空间会被拼进 Milvus 布尔表达式，只放行不需要转义的字符集。
// 长度上限对齐 collection schema 里 namespace 字段的 max_length。
var namespacePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)

const maxNamespaceLen = 128

// ValidateNamespace 校验命名空间的字符集与长度。
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return ErrEmptyNamespace
	}
	if len(namespace) > maxNamespaceLen || !namespacePattern.MatchString(namespace) {
		return ErrInvalidNamespace
	}
	return nil
}

// IndexService 面向接口层的索引操作：讲座字幕与摘要文本各走一条入口。
type IndexService struct {
	indexer      *Indexer
	summaryChunk int
}

func NewIndexService(indexer *Indexer, summaryChunkSize int) *IndexService {
	if summaryChunkSize <= 0 {
		summaryChunkSize = 500
	}
	return &IndexService{indexer: indexer, summaryChunk: summaryChunkSize}
}

// IndexLecture 解析 VTT 并幂等索引整讲字幕。
// 返回命名空间、chunk 数与是否真正重建。
func (s *IndexService) IndexLecture(ctx context.Context, lectureID, vttText string) (string, int, bool, error) {
	if strings.TrimSpace(lectureID) == "" {
		return "", 0, false, fmt.Errorf("lecture_id is required")
	}
	caps := caption.Parse(vttText)
	if len(caps) == 0 {
		return "", 0, false, apperrors.ErrNoContent
	}

	ns := LectureNamespace(lectureID)
	if err := ValidateNamespace(ns); err != nil {
		return "", 0, false, apperrors.ErrInvalidParam.WithError(err)
	}
	chunks := CaptionsToChunks(ns, caps)
	built, err := s.indexer.EnsureIndexed(ctx, ns, chunks)
	if err != nil {
		return "", 0, false, apperrors.ErrIndexingFailed.WithError(err)
	}
	return ns, len(chunks), built, nil
}

// IndexSummary 把摘要正文按固定长度切块后幂等索引。
// 摘要块没有时间轴，时间跨度置零。
func (s *IndexService) IndexSummary(ctx context.Context, summaryID, content string) (string, int, bool, error) {
	if strings.TrimSpace(summaryID) == "" {
		return "", 0, false, fmt.Errorf("summary_id is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", 0, false, apperrors.ErrNoContent
	}

	ns := SummaryNamespace(summaryID)
	if err := ValidateNamespace(ns); err != nil {
		return "", 0, false, apperrors.ErrInvalidParam.WithError(err)
	}
	pieces := SplitRunes(content, s.summaryChunk)
	chunks := make([]entity.Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, entity.Chunk{
			ChunkID:   fmt.Sprintf("%s-%d", ns, i),
			Text:      p,
			Namespace: ns,
		})
	}

	built, err := s.indexer.EnsureIndexed(ctx, ns, chunks)
	if err != nil {
		return "", 0, false, apperrors.ErrIndexingFailed.WithError(err)
	}
	return ns, len(chunks), built, nil
}
