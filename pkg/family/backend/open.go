package backend

import (
	"context"

	"github.com/matzehuels/kintree/pkg/config"
	errs "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// Open constructs the backend named by s.Backend. Remote backends get a few
// connection attempts with backoff; a final failure is STORAGE_READ.
func Open(ctx context.Context, s config.Storage) (family.Backend, error) {
	switch s.Backend {
	case config.BackendFile, "":
		return NewFileBackend(s.Path), nil
	case config.BackendSQLite:
		b, err := NewSQLiteBackend(s.Path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeStorageRead, err, "open sqlite backend")
		}
		return b, nil
	case config.BackendRedis:
		b, err := connect(ctx, func(ctx context.Context) (*RedisBackend, error) {
			return NewRedisBackend(ctx, s.RedisAddr, s.RedisKey)
		})
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeStorageRead, err, "open redis backend")
		}
		return b, nil
	case config.BackendMongo:
		b, err := connect(ctx, func(ctx context.Context) (*MongoBackend, error) {
			return NewMongoBackend(ctx, s.MongoURI, s.MongoDatabase, s.MongoCollection)
		})
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeStorageRead, err, "open mongo backend")
		}
		return b, nil
	case config.BackendNeo4j:
		b, err := connect(ctx, func(ctx context.Context) (*Neo4jBackend, error) {
			return NewNeo4jBackend(ctx, s.Neo4jURI, s.Neo4jUser, s.Neo4jPassword, s.Neo4jDatabase)
		})
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeStorageRead, err, "open neo4j backend")
		}
		return b, nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown storage backend %q", s.Backend)
	}
}
