package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/config"
	"github.com/oksasatya/go-ddd-rbac/internal/application"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-rbac/internal/metrics"
)

// app-level container to share constructed components across packages
// Router wires modules from these singletons. Optional backends stay nil when
// not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	memStore    *memory.Store

	publisher application.EventPublisher
	esClient  *elasticsearch.Client
	recorder  *metrics.Recorder
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }
func SetPGPool(p *pgxpool.Pool)  { pgPool = p }
func GetPGPool() *pgxpool.Pool   { return pgPool }
func SetRedis(r *redis.Client)   { redisClient = r }
func GetRedis() *redis.Client    { return redisClient }

// GetMemoryStore lazily creates the process-wide in-memory store. guard is
// the users' guard and only matters on first use.
func GetMemoryStore(guard vo.GuardName) *memory.Store {
	if memStore == nil {
		memStore = memory.NewStoreForGuard(guard)
	}
	return memStore
}

func SetPublisher(p application.EventPublisher) { publisher = p }
func GetPublisher() application.EventPublisher  { return publisher }
func SetES(c *elasticsearch.Client)             { esClient = c }
func GetES() *elasticsearch.Client              { return esClient }
func SetMetrics(r *metrics.Recorder)            { recorder = r }
func GetMetrics() *metrics.Recorder             { return recorder }
