package history

import (
	"context"
	"fmt"
	"strings"

	"news-shorts/config"
	"news-shorts/db"
	"news-shorts/repositories"
)

// Open 은 설정된 백엔드로 히스토리 저장소를 연다.
// pathOverride 가 비어 있지 않으면 파일 경로로 사용한다.
func Open(ctx context.Context, cfg config.HistoryConfig, pathOverride string) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		path := cfg.Path
		if pathOverride != "" {
			path = pathOverride
		}
		return OpenFile(path)
	case "mongo":
		database, err := db.Init(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect history db: %w", err)
		}
		repo := repositories.NewHistoryRepository(database, cfg.Collection)
		return NewMongoStore(repo, db.Disconnect), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
