// cmd/listing-service/infra.go
package main

import (
	"context"
	"fmt"
	"time"

	"listing-service/internal/api"
	"listing-service/internal/common/aws"
	"listing-service/internal/common/camunda"
	"listing-service/internal/common/config"
	"listing-service/internal/common/database"
	"listing-service/internal/common/logger"
	"listing-service/internal/common/retry"
	"listing-service/internal/events"
	"listing-service/internal/favorites"
	"listing-service/internal/inquiry"
	"listing-service/internal/listing"
	"listing-service/internal/repository"
	"listing-service/internal/search"
	"listing-service/internal/source"

	"github.com/redis/go-redis/v9"
)

// demoAgentID owns the listings seeded into the in-memory repository.
const demoAgentID = 1

// connectRetry is the backoff for reaching infrastructure at startup.
var connectRetry = retry.Policy{
	MaxAttempts:  10,
	InitialDelay: 2 * time.Second,
	MaxDelay:     30 * time.Second,
}

// infra is every external dependency the service talks to. Optional ones
// are nil when disabled.
type infra struct {
	repo      repository.Repository
	inquiries inquiry.Store
	favorites *favorites.Store
	index     *search.Index
	syncer    *search.Syncer
	publisher events.Publisher
	consumer  *events.Consumer
	notifier  inquiry.Notifier
	zeebe     *camunda.Client
	checks    map[string]api.Check
	closers   []func()
}

func (in *infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
}

func connectInfra(ctx context.Context, cfg *config.Config, log logger.Logger) (*infra, error) {
	in := &infra{checks: make(map[string]api.Check)}
	ok := false
	defer func() {
		if !ok {
			in.Close()
		}
	}()

	// --- Storage ---
	var base repository.Repository
	switch cfg.Listings.Repository {
	case "postgres":
		var pg *database.PostgresClient
		err := connectRetry.Do(ctx, log, "PostgreSQL connection", func(ctx context.Context) error {
			var err error
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return retry.Stop(err)
			}
			if err := pg.Ping(ctx); err != nil {
				pg.Close()
				return err
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, func() { pg.Close() })
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		base = repository.NewPostgresRepository(pg.GetDB(), log)
		in.inquiries = inquiry.NewPostgresStore(pg.GetDB())
		in.checks["postgres"] = pg.Ping
		log.Info("PostgreSQL connected successfully", nil)
	default:
		base = repository.NewMemoryRepository(repository.DemoProperties(listing.DemoSize, demoAgentID)...)
		in.inquiries = inquiry.NewMemoryStore()
		log.Info("Using in-memory listing repository", map[string]interface{}{"listings": listing.DemoSize})
	}

	// --- Redis: detail cache and favorites ---
	var cacheRedis *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err := connectRetry.Do(ctx, log, "Redis connection", func(ctx context.Context) error {
			var err error
			if cacheRedis, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return retry.Stop(err)
			}
			if err := cacheRedis.Ping(ctx); err != nil {
				cacheRedis.Close()
				return err
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, func() { cacheRedis.Close() })
		in.favorites = favorites.NewStore(cacheRedis.GetClient(), log)
		in.checks["redis"] = cacheRedis.Ping
		log.Info("Redis connected successfully", nil)
	}

	cached := repository.NewCachedRepository(base, redisClient(cacheRedis), repository.CacheConfig{
		L1Size: int64(cfg.Listings.L1CacheSize),
		TTL:    config.GetDuration(cfg.Listings.CacheTTL),
	}, log)
	in.closers = append(in.closers, cached.Close)
	in.repo = cached

	// --- Elasticsearch ---
	if cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err := connectRetry.Do(ctx, log, "Elasticsearch connection", func(ctx context.Context) error {
			var err error
			if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
				return retry.Stop(err)
			}
			return es.Ping(ctx)
		})
		if err != nil {
			return nil, err
		}
		index, err := search.NewIndex(es.Client, cfg.Listings.SearchIndex, log)
		if err != nil {
			return nil, err
		}
		if err := index.EnsureIndex(ctx); err != nil {
			return nil, err
		}
		in.index = index
		in.syncer = search.NewSyncer(index, in.repo)
		in.checks["elasticsearch"] = es.Ping
		log.Info("Elasticsearch connected successfully", map[string]interface{}{"index": index.Name()})
	}

	// --- Events ---
	if err := in.connectEvents(ctx, cfg, log); err != nil {
		return nil, err
	}

	// --- Notifications ---
	in.notifier = inquiry.NopNotifier{}
	if cfg.Notifications.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			return nil, err
		}
		in.notifier = inquiry.NewSESNotifier(client, cfg.Notifications.SenderEmail, cfg.Notifications.InboxEmail, log)
	}

	// --- Zeebe ---
	if cfg.Camunda.Enabled {
		err := connectRetry.Do(ctx, log, "Zeebe client initialization", func(ctx context.Context) error {
			var err error
			in.zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			}, log)
			return err
		})
		if err != nil {
			return nil, err
		}
		zc := in.zeebe
		in.closers = append(in.closers, func() { zc.Close() })
		in.checks["zeebe"] = zc.HealthCheck
		log.Info("Zeebe client connected successfully", nil)
	}

	ok = true
	return in, nil
}

// connectEvents builds the change event publisher. When a search index is
// configured the index follows the events: through a queue consumer on
// amqp, in process otherwise.
func (in *infra) connectEvents(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	var publisher events.Publisher = events.NopPublisher{}
	var amqpPublisher *events.AMQPPublisher

	switch cfg.Events.Driver {
	case "sns":
		client, err := aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			return err
		}
		publisher = events.NewSNSPublisher(client, cfg.Events.TopicARN)
	case "amqp":
		err := connectRetry.Do(ctx, log, "AMQP connection", func(ctx context.Context) error {
			var err error
			amqpPublisher, err = events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange)
			return err
		})
		if err != nil {
			return err
		}
		publisher = amqpPublisher
	case "", "none":
	default:
		return fmt.Errorf("unknown events driver %q", cfg.Events.Driver)
	}

	if in.syncer != nil {
		if amqpPublisher != nil {
			consumer, err := events.NewAMQPConsumer(amqpPublisher, cfg.Events.Queue, in.syncer.Handle, log)
			if err != nil {
				return err
			}
			in.consumer = consumer
		} else {
			publisher = events.NewInline(publisher, in.syncer.Handle, log)
		}
	}

	recorder := events.NewRecorder(publisher, log)
	in.publisher = recorder
	in.closers = append(in.closers, func() { recorder.Close() })
	log.Info("Listing events configured", map[string]interface{}{"driver": cfg.Events.Driver})
	return nil
}

func redisClient(c *database.RedisClient) *redis.Client {
	if c == nil {
		return nil
	}
	return c.GetClient()
}

// newLoader builds the browse source selected by listings.source.driver.
func newLoader(cfg *config.Config, repo repository.Repository, log logger.Logger) *source.Loader {
	sc := cfg.Listings.Source

	var src source.Source
	switch sc.Driver {
	case "http":
		src = source.NewHTTPSource(source.HTTPConfig{
			BaseURL: sc.BaseURL,
			Timeout: config.GetDuration(sc.Timeout),
		})
	case "demo":
		src = source.StaticSource(listing.DemoRaw(listing.DemoSize))
	default:
		src = source.NewRepositorySource(repo)
	}

	return source.NewLoader(src, source.LoaderConfig{
		Name:           sc.Driver,
		RefreshTimeout: config.GetDuration(sc.Timeout) * time.Duration(max(sc.MaxRetries, 1)+1),
		Retry: retry.Policy{
			MaxAttempts:  sc.MaxRetries,
			InitialDelay: config.GetDuration(sc.RetryDelay),
			MaxDelay:     config.GetDuration(sc.Timeout),
		},
	}, log)
}
