package store

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/K3das/clementine/store/db"
	"github.com/golang-migrate/migrate/v4"
	migratePgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	log *zap.Logger

	conn *pgxpool.Pool

	*db.Queries
}

func NewStore(ctx context.Context, parentLogger *zap.Logger) *Store {
	s := &Store{}
	s.log = parentLogger.Named("store")

	return s
}

func (s *Store) Connect(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("opening postgres: %w", err)
	}

	mFS, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("creating iofs driver: %w", err)
	}

	stdDB := stdlib.OpenDBFromPool(pool)
	defer stdDB.Close()

	mDriver, err := migratePgx.WithInstance(stdDB, &migratePgx.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", mFS, "pgx5", mDriver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	if err := m.Up(); err == migrate.ErrNoChange {
		s.log.Info("migrations done (no change)")
	} else if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	} else {
		s.log.Info("migrations done")
	}

	s.Queries = db.New(pool)
	s.conn = pool

	return nil
}

func (s *Store) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// RunRetention deletes transcriptions older than retention every interval
// until ctx is done. A zero retention keeps everything.
func (s *Store) RunRetention(ctx context.Context, retention, interval time.Duration) error {
	if retention <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		deleted, err := s.DeleteTranscriptionsBefore(ctx, pgtype.Timestamptz{
			Time:  time.Now().Add(-retention),
			Valid: true,
		})
		if err != nil && ctx.Err() == nil {
			s.log.Error("failed to prune transcriptions", zap.Error(err))
		} else if deleted > 0 {
			s.log.With(zap.Int64("deleted", deleted)).Info("pruned old transcriptions")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
