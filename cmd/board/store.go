// cmd/board/store.go
package main

import (
	"context"
	"fmt"
	"log/slog"

	"bulletin-board/internal/config"
	"bulletin-board/internal/domain"
	bunstore "bulletin-board/internal/infra/bun"
	"bulletin-board/internal/infra/etcd"
	"bulletin-board/internal/infra/memory"
	mongostore "bulletin-board/internal/infra/mongo"
	redisstore "bulletin-board/internal/infra/redis"

	goredis "github.com/redis/go-redis/v9"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// migrator is implemented by stores that own a schema.
type migrator interface {
	Migrate(ctx context.Context) error
}

// openRepository connects to the configured store. The returned close
// function releases the underlying client.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.JobTypeRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.NewJobTypeRepository(), noop, nil

	case config.DriverEtcd:
		client, err := etcd.NewClient(cfg.EtcdEndpoints, cfg.EtcdTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("create etcd client: %w", err)
		}
		return etcd.NewEtcdJobTypeRepository(client, logger), client.Close, nil

	case config.DriverPostgres:
		db, err := bunstore.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return bunstore.New(db, bunstore.WithLogger(logger)), db.Close, nil

	case config.DriverSQLite:
		db, err := bunstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return bunstore.New(db, bunstore.WithLogger(logger)), db.Close, nil

	case config.DriverRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		store := redisstore.New(client, logger)
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return store, client.Close, nil

	case config.DriverMongo:
		client, err := mongod.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() error { return client.Disconnect(context.Background()) }
		if err := client.Ping(ctx, nil); err != nil {
			_ = closeFn()
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		return mongostore.New(client.Database(cfg.MongoDatabase), logger), closeFn, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
