package main

import (
	"context"
	"fmt"

	mongorepo "github.com/ogurasousui/employee-directory/internal/adapters/repository/mongodb"
	pgrepo "github.com/ogurasousui/employee-directory/internal/adapters/repository/postgres"
	sqliterepo "github.com/ogurasousui/employee-directory/internal/adapters/repository/sqlite"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/ogurasousui/employee-directory/internal/platform/config"
	mongodb "github.com/ogurasousui/employee-directory/internal/platform/db/mongodb"
	pg "github.com/ogurasousui/employee-directory/internal/platform/db/postgres"
	sqlitedb "github.com/ogurasousui/employee-directory/internal/platform/db/sqlite"
	"github.com/sirupsen/logrus"
)

// store は選択された保存先のリポジトリと、その後始末です。
type store struct {
	repo  employee.Repository
	tx    employee.TransactionManager
	close func()
}

func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := pg.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("initialize database pool: %w", err)
		}
		log.WithField("host", cfg.Database.Host).Info("connected to postgres")
		return &store{
			repo:  pgrepo.NewEmployeeRepository(pool),
			tx:    pg.NewTransactionManager(pool),
			close: pool.Close,
		}, nil

	case config.DriverMongoDB:
		client, coll, err := mongodb.Connect(ctx, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		repo := mongorepo.NewEmployeeRepository(coll)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure mongodb indexes: %w", err)
		}
		log.WithFields(logrus.Fields{"database": cfg.MongoDB.Database, "collection": cfg.MongoDB.Collection}).Info("connected to mongodb")
		return &store{
			repo: repo,
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.WithError(err).Warn("mongodb disconnect failed")
				}
			},
		}, nil

	case config.DriverSQLite:
		db, err := sqlitedb.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.SQLite.Path).Info("opened sqlite store")
		return &store{
			repo: sqliterepo.NewEmployeeRepository(db),
			close: func() {
				if err := db.Close(); err != nil {
					log.WithError(err).Warn("sqlite close failed")
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
