package quiz

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"lecture-quiz-api/internal/application/caption"
	"lecture-quiz-api/internal/application/retrieval"
	"lecture-quiz-api/internal/config"
	"lecture-quiz-api/internal/domain/entity"
	"lecture-quiz-api/internal/domain/repository"
	apperrors "lecture-quiz-api/pkg/errors"
	"lecture-quiz-api/pkg/logger"
	"lecture-quiz-api/pkg/metrics"
)

// 请求结果状态
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
)

// CandidateGenerator 生成侧 port，测试中以桩替换。
type CandidateGenerator interface {
	Generate(ctx context.Context, in *GenerateInput) (*GenerateOutput, error)
}

// FromIntervalsInput 按关注区间出题的输入。
type FromIntervalsInput struct {
	LectureID string
	UserID    string
	VTTText   string
	Intervals []entity.Interval
}

// FromLectureInput 整讲检索出题的输入。
type FromLectureInput struct {
	Namespace  string
	UserID     string
	AnchorText string
}

// Result 出题结果。Status 为 partial 时 Items 少于目标数，
// RawOutput 保留最后一次失败尝试的原始输出供诊断。
type Result struct {
	Items     []entity.QuizItem
	Status    string
	Attempts  int
	RawOutput string
}

// Service 出题服务：组装上下文、驱动生成与校验的有界重试环、落库。
type Service struct {
	generator CandidateGenerator
	engine    *retrieval.Engine
	quizRepo  repository.QuizRepository

	quizCfg config.QuizConfig
	llmCfg  config.LLMConfig
}

func NewService(generator CandidateGenerator, engine *retrieval.Engine, quizRepo repository.QuizRepository, cfg *config.Config) *Service {
	return &Service{
		generator: generator,
		engine:    engine,
		quizRepo:  quizRepo,
		quizCfg:   cfg.Quiz,
		llmCfg:    cfg.LLM,
	}
}

// GenerateFromIntervals 解析字幕、按区间切片后出题。
// 区间无命中时回退到全量字幕截断；连回退内容都没有则报无内容。
func (s *Service) GenerateFromIntervals(ctx context.Context, in *FromIntervalsInput) (*Result, error) {
	caps := caption.Parse(in.VTTText)
	if len(caps) == 0 {
		metrics.QuizGenerationTotal.WithLabelValues("no_content").Inc()
		return nil, apperrors.ErrNoContent
	}

	ctxCaps := caption.SliceByIntervals(caps, in.Intervals, s.quizCfg.PadMs, s.quizCfg.MaxChars)
	if len(ctxCaps) == 0 {
		logger.Info(ctx, "区间无字幕命中，回退到全量字幕截断",
			"lecture_id", in.LectureID, "intervals", len(in.Intervals))
		ctxCaps = caption.TruncateToBudget(caps, s.quizCfg.MaxChars)
	}
	if len(ctxCaps) == 0 {
		metrics.QuizGenerationTotal.WithLabelValues("no_content").Inc()
		return nil, apperrors.ErrNoContent
	}

	contextText := retrieval.FormatCaptionsContext(ctxCaps)
	result, err := s.generateValidated(ctx, contextText, ctxCaps)
	if err != nil {
		return nil, err
	}

	s.persist(ctx, "lecture_"+in.LectureID, in.UserID, result.Items)
	return result, nil
}

// GenerateFromLecture 用混合检索挑选上下文后出题，面向整讲已索引内容。
func (s *Service) GenerateFromLecture(ctx context.Context, in *FromLectureInput) (*Result, error) {
	if s.engine == nil {
		return nil, apperrors.ErrRetrievalFailed
	}

	out, err := s.engine.Retrieve(ctx, retrieval.RetrieveInput{
		Namespace:  in.Namespace,
		AnchorText: in.AnchorText,
	})
	if err != nil {
		return nil, apperrors.ErrRetrievalFailed.WithError(err)
	}
	if len(out.Hits) == 0 {
		metrics.QuizGenerationTotal.WithLabelValues("no_content").Inc()
		return nil, apperrors.ErrNoContent
	}

	// 证据校验用的参照字幕来自命中 chunk 的时间跨度
	ctxCaps := make([]entity.Caption, 0, len(out.Hits))
	for _, h := range out.Hits {
		ctxCaps = append(ctxCaps, entity.Caption{
			StartMs: h.Chunk.StartMs,
			EndMs:   h.Chunk.EndMs,
			Text:    h.Chunk.Text,
		})
	}

	contextText := retrieval.FormatHitsContext(out.Hits)
	result, err := s.generateValidated(ctx, contextText, ctxCaps)
	if err != nil {
		return nil, err
	}

	s.persist(ctx, in.Namespace, in.UserID, result.Items)
	return result, nil
}

// History 按命名空间倒序查询历史落库的题目。未配置仓储时返回空列表。
func (s *Service) History(ctx context.Context, namespace string, limit int) ([]*entity.QuizRecord, error) {
	if s.quizRepo == nil {
		return nil, nil
	}
	return s.quizRepo.ListByNamespace(ctx, strings.TrimSpace(namespace), limit)
}

// generateValidated 有界重试环：生成 → 校验 → 累积，
// 达到目标数或重试耗尽即终止。失败的生成调用消耗一次重试而不中断请求。
func (s *Service) generateValidated(ctx context.Context, contextText string, ctxCaps []entity.Caption) (*Result, error) {
	target := s.quizCfg.TargetCount
	maxRetries := s.quizCfg.MaxRetries
	spec := ItemSpec{
		Total:    target,
		MCQCount: s.quizCfg.MCQCount,
		OXCount:  s.quizCfg.OXCount,
		Language: s.quizCfg.Language,
	}

	genInput := s.buildGenerateInput(contextText, spec)

	accepted := make([]entity.QuizItem, 0, target)
	seen := make(map[string]struct{})
	attempts := 0
	lastRaw := ""

	for attempts <= maxRetries {
		attempts++
		out, err := s.generator.Generate(ctx, genInput)
		if err != nil {
			logger.Warn(ctx, "生成调用失败，消耗一次重试",
				"attempt", attempts, "error", err.Error())
			continue
		}
		lastRaw = out.RawOutput

		valid := FilterValid(out.Items, ctxCaps, seen)
		accepted = append(accepted, valid...)
		logger.Debug(ctx, "本轮校验完成",
			"attempt", attempts, "candidates", len(out.Items),
			"accepted", len(valid), "total", len(accepted))

		if len(accepted) >= target {
			break
		}
	}

	status := StatusOK
	if len(accepted) < target {
		status = StatusPartial
	}
	if len(accepted) > target {
		accepted = accepted[:target]
	}

	metrics.QuizGenerationTotal.WithLabelValues(status).Inc()
	metrics.QuizGenerationAttempts.WithLabelValues(status).Observe(float64(attempts))
	metrics.QuizValidItems.WithLabelValues(status).Observe(float64(len(accepted)))

	res := &Result{Items: accepted, Status: status, Attempts: attempts}
	if status == StatusPartial {
		res.RawOutput = lastRaw
	}
	return res, nil
}

func (s *Service) buildGenerateInput(contextText string, spec ItemSpec) *GenerateInput {
	in := &GenerateInput{
		Context:  contextText,
		Spec:     spec,
		Provider: s.llmCfg.DefaultProvider,
	}
	if p, ok := s.llmCfg.Providers[s.llmCfg.DefaultProvider]; ok {
		in.Model = p.Model
		if p.Temperature > 0 {
			t := float32(p.Temperature)
			in.Temperature = &t
		}
		if p.TopP > 0 {
			tp := float32(p.TopP)
			in.TopP = &tp
		}
		if p.MaxTokens > 0 {
			mt := p.MaxTokens
			in.MaxTokens = &mt
		}
	}
	return in
}

// persist 历史题目落库，失败不影响出题响应
func (s *Service) persist(ctx context.Context, namespace, userID string, items []entity.QuizItem) {
	if s.quizRepo == nil || len(items) == 0 {
		return
	}
	records := make([]*entity.QuizRecord, 0, len(items))
	now := time.Now()
	for _, it := range items {
		records = append(records, &entity.QuizRecord{
			ID:           uuid.NewString(),
			Namespace:    strings.TrimSpace(namespace),
			UserID:       strings.TrimSpace(userID),
			Type:         string(it.Type),
			Question:     it.Question,
			OptionsJSON:  mustJSON(it.Options),
			Answer:       it.Answer,
			EvidenceJSON: mustJSON(it.Evidence),
			CreatedAt:    now,
		})
	}
	if err := s.quizRepo.SaveBatch(ctx, records); err != nil {
		logger.Error(ctx, "题目落库失败", err, "namespace", namespace, "count", len(records))
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
