package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

const (
	redisRecordPrefix   = "proposal:record:"
	redisRecordIndex    = "proposal:records"
	redisWebhookPrefKey = "proposal:preference:webhook_url"
)

// RedisStore хранит записи как JSON, а порядок по createdAt в отсортированном множестве.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient клиент с таймаутами по умолчанию.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

type redisRecord struct {
	ID           uuid.UUID `json:"id"`
	ClientName   string    `json:"clientName"`
	ClientEmail  string    `json:"clientEmail"`
	ScopeOfWork  string    `json:"scopeOfWork"`
	PriceRange   string    `json:"priceRange"`
	JobDuration  string    `json:"jobDuration"`
	MeetingNotes string    `json:"meetingNotes"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *RedisStore) Save(ctx context.Context, proposal *entity.Proposal) error {
	f := proposal.Fields()
	raw, err := json.Marshal(redisRecord{
		ID:           proposal.ID(),
		ClientName:   f.ClientName,
		ClientEmail:  f.ClientEmail,
		ScopeOfWork:  f.ScopeOfWork,
		PriceRange:   f.PriceRange,
		JobDuration:  f.JobDuration,
		MeetingNotes: f.MeetingNotes,
		CreatedAt:    proposal.CreatedAt(),
	})
	if err != nil {
		return fmt.Errorf("redis: не удалось сериализовать предложение: %w", err)
	}

	id := proposal.ID().String()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisRecordPrefix+id, raw, 0)
		pipe.ZAdd(ctx, redisRecordIndex, redis.Z{Score: float64(proposal.CreatedAt().UnixNano()), Member: id})
		return nil
	})
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить предложение")
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	raw, err := s.client.Get(ctx, redisRecordPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить предложение")
	}
	return decodeRedisRecord(raw)
}

func (s *RedisStore) List(ctx context.Context) ([]*entity.Proposal, error) {
	ids, err := s.client.ZRevRange(ctx, redisRecordIndex, 0, -1).Result()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список предложений")
	}
	if len(ids) == 0 {
		return []*entity.Proposal{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisRecordPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список предложений")
	}

	result := make([]*entity.Proposal, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		p, err := decodeRedisRecord([]byte(str))
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisRecordPrefix+id.String())
		pipe.ZRem(ctx, redisRecordIndex, id.String())
		return nil
	})
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить предложение")
	}
	if del.Val() == 0 {
		return apperror.ErrProposalNotFound
	}
	return nil
}

func (s *RedisStore) GetWebhookURL(ctx context.Context) (string, error) {
	value, err := s.client.Get(ctx, redisWebhookPrefKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось прочитать webhook URL")
	}
	return value, nil
}

func (s *RedisStore) SetWebhookURL(ctx context.Context, url string) error {
	if err := s.client.Set(ctx, redisWebhookPrefKey, url, 0).Err(); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить webhook URL")
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func decodeRedisRecord(raw []byte) (*entity.Proposal, error) {
	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("redis: повреждённая запись предложения: %w", err)
	}
	return entity.RestoreProposal(rec.ID, entity.ProposalFields{
		ClientName:   rec.ClientName,
		ClientEmail:  rec.ClientEmail,
		ScopeOfWork:  rec.ScopeOfWork,
		PriceRange:   rec.PriceRange,
		JobDuration:  rec.JobDuration,
		MeetingNotes: rec.MeetingNotes,
	}, rec.CreatedAt), nil
}
