package history

import (
	"context"
	"time"

	"news-shorts/models"
	"news-shorts/repositories"
)

// MongoStore 는 여러 실행 환경이 히스토리를 공유할 때 사용하는 MongoDB 백엔드다.
type MongoStore struct {
	repo *repositories.HistoryRepository
	stop func(context.Context) error
}

func NewMongoStore(repo *repositories.HistoryRepository, stop func(context.Context) error) *MongoStore {
	return &MongoStore{repo: repo, stop: stop}
}

func (s *MongoStore) Contains(ctx context.Context, link, title string) (bool, error) {
	return s.repo.Exists(ctx, NormalizeLink(link), NormalizeTitle(title))
}

func (s *MongoStore) Add(ctx context.Context, entry models.HistoryEntry) error {
	if entry.UsedAt.IsZero() {
		entry.UsedAt = time.Now().UTC()
	}
	entry.Link = NormalizeLink(entry.Link)
	_, err := s.repo.InsertIfAbsent(ctx, &entry, NormalizeTitle(entry.Title))
	return err
}

func (s *MongoStore) Recent(ctx context.Context, limit int64) ([]models.HistoryEntry, error) {
	return s.repo.Recent(ctx, limit)
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	return s.stop(ctx)
}
