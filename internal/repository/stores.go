package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gauravnainwal518/note-app/internal/config"
	"github.com/gauravnainwal518/note-app/internal/db"
)

// Stores bundles the repositories of one backend.
type Stores struct {
	Users UserRepository
	Notes NoteRepository
	close func(context.Context) error
}

// Close releases the backend connection.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects the backend selected by cfg.DBDriver, prepares its schema
// and returns the repositories bound to it.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureMongoIndexes(ctx, database, cfg.ResetDB); err != nil {
			_ = database.Client().Disconnect(ctx)
			return nil, err
		}
		return &Stores{
			Users: NewMongoUserRepository(database),
			Notes: NewMongoNoteRepository(database),
			close: database.Client().Disconnect,
		}, nil

	case config.DriverMySQL, config.DriverPostgres:
		var (
			gormDB *gorm.DB
			err    error
		)
		if cfg.DBDriver == config.DriverPostgres {
			gormDB, err = db.NewPostgres(cfg.PostgresDSN)
		} else {
			gormDB, err = db.NewMySQL(cfg.MySQLDSN)
		}
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
			return nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		return &Stores{
			Users: NewUserRepository(gormDB),
			Notes: NewNoteRepository(gormDB),
			close: func(context.Context) error { return sqlDB.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
