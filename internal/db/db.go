package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/tubebase-backend/internal/domain"
	"github.com/yungbote/tubebase-backend/internal/platform/envutil"
	"github.com/yungbote/tubebase-backend/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the store selected by DB_DRIVER ("sqlite" by default, "postgres"
// for a shared deployment) and returns the service without migrating.
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := strings.ToLower(envutil.Str("DB_DRIVER", "sqlite"))

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		path := envutil.Str("SQLITE_PATH", "data/tubebase.db")
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		// Serialized writes plus FK enforcement; the background jobs and the
		// request path share this one file.
		dialector = sqlite.Open(path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	case "postgres":
		host := envutil.Str("POSTGRES_HOST", "localhost")
		port := envutil.Str("POSTGRES_PORT", "5432")
		user := envutil.Str("POSTGRES_USER", "postgres")
		password := envutil.Str("POSTGRES_PASSWORD", "")
		name := envutil.Str("POSTGRES_NAME", "tubebase")
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	serviceLog.Info("Connecting to database", "driver", driver)
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := s.db.AutoMigrate(
		&domain.Video{},
		&domain.Transcript{},
		&domain.TranscriptChunk{},
		&domain.ChunkEmbedding{},
		&domain.Job{},
		&domain.ClusterLabel{},
		&domain.VideoClusterAssignment{},
		&domain.Setting{},
	); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}

	// Partial unique index backing the single-flight guarantee: at most one
	// non-terminal job per (video, type). Supported by both sqlite and
	// postgres.
	if err := s.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_active_single_flight
		ON jobs (video_id, job_type)
		WHERE status NOT IN ('completed', 'failed')
	`).Error; err != nil {
		return fmt.Errorf("create single-flight index: %w", err)
	}

	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
