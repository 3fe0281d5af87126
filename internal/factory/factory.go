package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"unipathway-admin-auth/internal/audit"
	"unipathway-admin-auth/internal/authority"
	"unipathway-admin-auth/internal/bucketing"
	"unipathway-admin-auth/internal/client"
	"unipathway-admin-auth/internal/config"
	"unipathway-admin-auth/internal/credentials"
	"unipathway-admin-auth/internal/encryption"
	"unipathway-admin-auth/internal/handler"
	"unipathway-admin-auth/internal/hashing"
	"unipathway-admin-auth/internal/permission"
	redisrepo "unipathway-admin-auth/internal/repository/redis"
	"unipathway-admin-auth/internal/repository/scylla"
	"unipathway-admin-auth/internal/tls"
	"unipathway-admin-auth/internal/util"
)

// Factory manages the lifecycle of all application dependencies
type Factory struct {
	config     *config.Config
	tlsManager *tls.TLSManager

	// Clients
	redisClient      *client.RedisClient
	scyllaClient     *scylla.ScyllaClient
	kafkaProducer    *client.KafkaProducer
	esClient         *client.ESClient
	clickhouseClient *client.ClickHouseClient
	kmsClient        *kms.Client

	// Managers
	hasher            *hashing.Hasher
	encryptionManager *encryption.EncryptionManager
	bucketingManager  *bucketing.BucketingManager

	// Domain wiring
	sessionCache    *redisrepo.SessionCache
	adminRepository *scylla.AdminRepository
	credentialStore credentials.Store
	auditRecorder   *audit.Recorder
	authority       *authority.Authority

	closeOnce sync.Once
	closed    chan struct{}
}

// NewFactory creates and initializes all application dependencies
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	factory := &Factory{
		config: cfg,
		closed: make(chan struct{}),
	}

	if cfg.Server.EnableTLS {
		factory.tlsManager = tls.NewTLSManager(&cfg.Server)
	}

	if err := factory.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	factory.initializeManagers()

	if err := factory.initializeAuthority(); err != nil {
		return nil, fmt.Errorf("failed to initialize authority: %w", err)
	}

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
		util.Bool("kms_enabled", cfg.KMS.Enabled),
		util.Bool("demo_accounts", cfg.Accounts.DemoAccounts),
	)

	return factory, nil
}

// initializeClients initializes external service clients with health checks.
// Redis is the only hard requirement; everything else degrades per config.
func (f *Factory) initializeClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var initErrors []error

	// Redis holds the sessions and is mandatory
	if rc, err := client.NewRedisClient(f.config, util.Get()); err != nil {
		initErrors = append(initErrors, fmt.Errorf("redis: %w", err))
	} else {
		f.redisClient = rc
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			initErrors = append(initErrors, fmt.Errorf("redis health check: %w", err))
		} else {
			util.Info("Redis client initialized and healthy")
		}
	}

	// ScyllaDB backs the production credential store
	if f.config.Scylla.Enabled {
		if sc, err := scylla.NewScyllaClient(f.config, util.Get()); err != nil {
			initErrors = append(initErrors, fmt.Errorf("scylla: %w", err))
		} else {
			f.scyllaClient = sc
			if err := f.scyllaClient.HealthCheck(); err != nil {
				initErrors = append(initErrors, fmt.Errorf("scylla health check: %w", err))
			} else {
				util.Info("ScyllaDB client initialized and healthy")
			}
		}
	}

	// Audit sinks are best effort
	if f.config.Kafka.Enabled {
		if producer, err := client.NewKafkaProducer(f.config, util.Get()); err != nil {
			util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
		} else {
			f.kafkaProducer = producer
			util.Info("Kafka producer initialized")
		}
	}

	if f.config.Elasticsearch.Enabled {
		if es, err := client.NewElasticsearchClient(f.config, util.Get()); err != nil {
			util.Warn("Elasticsearch initialization failed - proceeding without audit search", util.ErrorField(err))
		} else {
			f.esClient = es
			util.Info("Elasticsearch client initialized and healthy")
		}
	}

	if f.config.Clickhouse.Enabled {
		if ch, err := client.NewClickHouseClient(f.config, util.Get()); err != nil {
			util.Warn("ClickHouse initialization failed - proceeding without event warehouse", util.ErrorField(err))
		} else {
			f.clickhouseClient = ch
			if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
				util.Warn("ClickHouse health check failed", util.ErrorField(err))
			} else {
				util.Info("ClickHouse client initialized and healthy")
			}
		}
	}

	if f.config.KMS.Enabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(f.config.KMS.Region))
		if err != nil {
			initErrors = append(initErrors, fmt.Errorf("kms: %w", err))
		} else {
			f.kmsClient = kms.NewFromConfig(awsCfg)
			util.Info("KMS client initialized", util.String("region", f.config.KMS.Region))
		}
	}

	if len(initErrors) > 0 {
		if f.config.IsProduction() {
			return fmt.Errorf("critical service initialization failed: %v", initErrors)
		}
		for _, err := range initErrors {
			util.Warn("Service initialization warning", util.ErrorField(err))
		}
	}

	return nil
}

// initializeManagers initializes hashing, encryption, and bucketing managers
func (f *Factory) initializeManagers() {
	f.hasher = hashing.NewHasher(f.config)
	f.encryptionManager = encryption.NewEncryptionManager(f.config, f.kmsClient)
	f.bucketingManager = bucketing.NewBucketingManager(f.config)

	util.Info("Managers initialized successfully",
		util.Bool("hashing_initialized", f.hasher != nil),
		util.Bool("encryption_initialized", f.encryptionManager != nil),
		util.Bool("bucketing_initialized", f.bucketingManager != nil),
	)
}

// initializeAuthority wires the session store, credential store and audit
// pipeline into the session authority.
func (f *Factory) initializeAuthority() error {
	if f.redisClient == nil {
		return fmt.Errorf("session store requires redis")
	}

	// Session payloads get envelope encryption only when KMS is on;
	// otherwise Redis holds plain JSON.
	var cipher redisrepo.Cipher
	if f.config.KMS.Enabled {
		cipher = f.encryptionManager
	}
	f.sessionCache = redisrepo.NewSessionCache(f.redisClient, f.config.Session.KeyPrefix, cipher)

	if f.config.Accounts.DemoAccounts {
		f.credentialStore = credentials.NewDemoStore()
		util.Warn("Using built-in demo admin accounts; not for production")
	} else {
		if f.scyllaClient == nil {
			return fmt.Errorf("admin account store requires scylla when demo accounts are disabled")
		}
		f.adminRepository = scylla.NewAdminRepository(f.scyllaClient)
		f.credentialStore = credentials.NewScyllaStore(f.adminRepository, f.hasher)
	}

	if f.config.Audit.Enabled {
		f.auditRecorder = audit.NewRecorder(
			f.bucketingManager,
			f.kafkaProducer,
			f.clickhouseClient,
			f.esClient,
		)
	}

	f.authority = authority.NewAuthority(
		f.sessionCache,
		f.credentialStore,
		permission.DefaultTable(),
		f.auditRecorder,
		f.config.Session.TTL,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := f.authority.Init(ctx); err != nil {
		if f.config.IsProduction() {
			return err
		}
		util.Warn("Authority initialization deferred", util.ErrorField(err))
	}

	return nil
}

// AuthHandler builds the HTTP handler over the authority.
func (f *Factory) AuthHandler() *handler.AuthHandler {
	return handler.NewAuthHandler(f.authority, f.auditRecorder, f.config, util.Get())
}

// HealthCheck reports per-component health. Optional components that were
// never configured are absent from the map.
func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if f.redisClient != nil {
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			healthErrors["redis"] = err
		}
	} else {
		healthErrors["redis"] = fmt.Errorf("redis client not initialized")
	}

	if f.scyllaClient != nil {
		if err := f.scyllaClient.HealthCheck(); err != nil {
			healthErrors["scylla"] = err
		}
	}

	if f.esClient != nil {
		if err := f.esClient.HealthCheck(); err != nil {
			healthErrors["elasticsearch"] = err
		}
	}

	if f.clickhouseClient != nil {
		if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			healthErrors["clickhouse"] = err
		}
	}

	if f.kafkaProducer != nil {
		if err := f.kafkaProducer.HealthCheck(ctx); err != nil {
			healthErrors["kafka"] = err
		}
	}

	if f.authority == nil || !f.authority.Ready() {
		healthErrors["authority"] = fmt.Errorf("session authority not ready")
	}

	return healthErrors
}

func (f *Factory) IsHealthy(ctx context.Context) bool {
	healthErrors := f.HealthCheck(ctx)
	delete(healthErrors, "kafka")
	return len(healthErrors) == 0
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		util.Info("Shutting down factory...")

		if f.authority != nil {
			f.authority.Close()
		}

		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Error("Failed to close ClickHouse client", util.ErrorField(err))
			} else {
				util.Info("ClickHouse client closed")
			}
		}

		if f.esClient != nil {
			f.esClient.Close()
		}

		if f.kafkaProducer != nil {
			if err := f.kafkaProducer.Close(); err != nil {
				util.Error("Failed to close Kafka producer", util.ErrorField(err))
			} else {
				util.Info("Kafka producer closed")
			}
		}

		if f.scyllaClient != nil {
			f.scyllaClient.Close()
		}

		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			} else {
				util.Info("Redis client closed")
			}
		}

		if f.encryptionManager != nil {
			f.encryptionManager.ClearCache()
		}

		util.Sync()
		util.Info("Factory shutdown completed")
	})

	return nil
}

func (f *Factory) WaitForClose() {
	<-f.closed
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) TLSManager() *tls.TLSManager {
	return f.tlsManager
}

func (f *Factory) Authority() *authority.Authority {
	return f.authority
}

func (f *Factory) AuditRecorder() *audit.Recorder {
	return f.auditRecorder
}

func (f *Factory) Hasher() *hashing.Hasher {
	return f.hasher
}
