// Package wire 提供依赖装配
package wire

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"lecture-quiz-api/internal/application/quiz"
	"lecture-quiz-api/internal/application/retrieval"
	"lecture-quiz-api/internal/config"
	infraembedding "lecture-quiz-api/internal/infrastructure/embedding"
	"lecture-quiz-api/internal/infrastructure/llm"
	"lecture-quiz-api/internal/infrastructure/persistence/milvus"
	"lecture-quiz-api/internal/infrastructure/persistence/postgres"
	"lecture-quiz-api/internal/infrastructure/persistence/redis"
	"lecture-quiz-api/internal/interfaces/http/handler"
	"lecture-quiz-api/internal/interfaces/http/router"
	"lecture-quiz-api/pkg/logger"
)

// App 应用依赖容器
type App struct {
	Router *router.Router

	PgClient     *postgres.Client
	RedisClient  *redis.Client
	MilvusClient *milvus.Client

	Engine       *retrieval.Engine
	Indexer      *retrieval.Indexer
	IndexService *retrieval.IndexService
	QuizService  *quiz.Service
}

// InitializeApp 装配整个应用，返回清理函数
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	cleanups := make([]func(), 0, 4)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// PostgreSQL（必需）
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { pgClient.Close() })

	if err := pgClient.AutoMigrate(); err != nil {
		cleanup()
		return nil, nil, err
	}

	// Redis（必需，词法索引与限流）
	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { redisClient.Close() })

	// Milvus（可选，不可达时向量检索降级为纯词法）
	var milvusClient *milvus.Client
	var vectorRepo retrieval.VectorRepository
	if mc, err := milvus.NewClient(ctx, &cfg.Vector.Milvus); err != nil {
		logger.Warn(ctx, "milvus not available, vector retrieval disabled", "error", err.Error())
	} else {
		milvusClient = mc
		cleanups = append(cleanups, func() { _ = mc.Close() })
		vectorRepo = milvus.NewRetrievalVectorRepository(milvus.NewRepository(mc, cfg.Embedding.Dimension))
	}

	// Embedder（可选，不可用时同样降级）
	var embedder einoembedding.Embedder
	if emb, err := infraembedding.NewEmbedder(ctx, &cfg.Embedding); err != nil {
		logger.Warn(ctx, "embedding not available, vector retrieval disabled", "error", err.Error())
		vectorRepo = nil
	} else {
		embedder = emb
	}

	if vectorRepo != nil {
		if err := vectorRepo.EnsureChunkCollection(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	// 存储与索引
	lexicalStore := redis.NewLexicalStore(redisClient)
	stateRepo := postgres.NewIndexStateRepository(pgClient)
	quizRepo := postgres.NewQuizRepository(pgClient)

	indexer := retrieval.NewIndexer(embedder, vectorRepo, lexicalStore, stateRepo, cfg.Embedding.BatchSize)
	indexService := retrieval.NewIndexService(indexer, cfg.Quiz.SummaryChunk)

	engine := retrieval.NewEngine(embedder, vectorRepo, lexicalStore, retrieval.NewIdentityReranker(), retrieval.Defaults{
		TopKVec:      cfg.Retrieval.TopKVec,
		TopKLex:      cfg.Retrieval.TopKLex,
		FinalKRerank: cfg.Retrieval.FinalKRerank,
		OutK:         cfg.Retrieval.OutK,
		MMRLambda:    cfg.Retrieval.MMRLambda,
		KeyphraseTop: cfg.Retrieval.KeyphraseTop,
	})

	// 生成
	factory := llm.NewEinoFactory(cfg)
	generator := quiz.NewGenerator(factory)
	quizService := quiz.NewService(generator, engine, quizRepo, cfg)

	// HTTP
	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(pgClient, redisClient, milvusClient),
		Quiz:      handler.NewQuizHandler(quizService, indexService, cfg.Quiz.TargetCount),
		Index:     handler.NewIndexHandler(indexService),
		Retrieval: handler.NewRetrievalHandler(engine),
	}
	r := router.New(cfg, handlers, redis.NewRateLimiter(redisClient))

	app := &App{
		Router:       r,
		PgClient:     pgClient,
		RedisClient:  redisClient,
		MilvusClient: milvusClient,
		Engine:       engine,
		Indexer:      indexer,
		IndexService: indexService,
		QuizService:  quizService,
	}
	return app, cleanup, nil
}
