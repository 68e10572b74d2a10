package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lecture-quiz-api/internal/application/retrieval"
)

var lexicalTracer = otel.Tracer("redis.lexical")

const lexicalKeyPrefix = "lexical:"

// LexicalStore 词法索引的 Redis 存储。
// 每个命名空间一个 key，索引序列化为单个 blob 整体读写，
// 重建时覆盖写，不做增量更新。
type LexicalStore struct {
	client *Client
}

func NewLexicalStore(client *Client) *LexicalStore {
	return &LexicalStore{client: client}
}

var _ retrieval.LexicalStore = (*LexicalStore)(nil)

func (s *LexicalStore) key(namespace string) string {
	return lexicalKeyPrefix + namespace
}

// Get 读取命名空间的索引 blob，不存在时返回 (nil, nil)
func (s *LexicalStore) Get(ctx context.Context, namespace string) ([]byte, error) {
	ctx, span := lexicalTracer.Start(ctx, "lexical.Get",
		trace.WithAttributes(attribute.String("namespace", namespace)))
	defer span.End()

	val, err := s.client.rdb.Get(ctx, s.key(namespace)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetAttributes(attribute.Bool("lexical.found", false))
			return nil, nil
		}
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("lexical.found", true))
	return val, nil
}

// Put 整体覆盖命名空间的索引 blob，不设过期
func (s *LexicalStore) Put(ctx context.Context, namespace string, blob []byte) error {
	ctx, span := lexicalTracer.Start(ctx, "lexical.Put",
		trace.WithAttributes(
			attribute.String("namespace", namespace),
			attribute.Int("blob_size", len(blob)),
		))
	defer span.End()

	if err := s.client.rdb.Set(ctx, s.key(namespace), blob, 0).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Delete 删除命名空间的索引 blob
func (s *LexicalStore) Delete(ctx context.Context, namespace string) error {
	ctx, span := lexicalTracer.Start(ctx, "lexical.Delete",
		trace.WithAttributes(attribute.String("namespace", namespace)))
	defer span.End()

	if err := s.client.rdb.Del(ctx, s.key(namespace)).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
