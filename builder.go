package campusride

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/campusride/catalogue"
	"github.com/MrEthical07/campusride/internal/audit"
	"github.com/MrEthical07/campusride/internal/logging"
	"github.com/MrEthical07/campusride/internal/rate"
	"github.com/MrEthical07/campusride/internal/stores"
	"github.com/MrEthical07/campusride/jwt"
	"github.com/MrEthical07/campusride/notify"
	"github.com/MrEthical07/campusride/password"
	"github.com/MrEthical07/campusride/session"
	"github.com/MrEthical07/campusride/userstore"
	"github.com/redis/go-redis/v9"
)

const dummyPassword = "campusride-timing-equalizer"

// Builder assembles an Engine. Each Builder can be built once.
type Builder struct {
	config    Config
	users     userstore.Store
	redis     redis.UniversalClient
	notifier  notify.Notifier
	auditSink AuditSink
	logger    logging.Logger
	catalogue *catalogue.Catalogue
	clock     func() time.Time

	built bool
}

// New starts from DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration, including defaults.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithUserStore sets the credential store. Required.
func (b *Builder) WithUserStore(store userstore.Store) *Builder {
	b.users = store
	return b
}

// WithRedis switches the verification ledger, session store and rate
// limiter to Redis so several processes share state.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithNotifier sets the transport for verification codes. Required.
func (b *Builder) WithNotifier(n notify.Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink enables audit delivery to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the engine logger. A nil logger discards output.
func (b *Builder) WithLogger(logger logging.Logger) *Builder {
	b.logger = logger
	return b
}

// WithCatalogue overrides the embedded route catalogue.
func (b *Builder) WithCatalogue(c *catalogue.Catalogue) *Builder {
	b.catalogue = c
	return b
}

// WithClock replaces the time source of the engine and its in-memory
// stores. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the stores.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("user store is required")
	}
	if b.notifier == nil {
		return nil, errors.New("notifier is required")
	}

	logger := b.logger
	if logger == nil {
		logger = logging.Nop()
	}

	cat := b.catalogue
	if cat == nil {
		var err error
		cat, err = catalogue.Default()
		if err != nil {
			return nil, fmt.Errorf("load route catalogue: %w", err)
		}
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MaxPasswordBytes: cfg.Password.MaxBytes,
	})
	if err != nil {
		return nil, err
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}

	jwtMgr, err := jwt.NewManager(jwt.Config{
		Secret: []byte(cfg.Session.Secret),
		TTL:    cfg.Session.TTL,
		Issuer: cfg.Session.Issuer,
		Leeway: cfg.Session.Leeway,
	})
	if err != nil {
		return nil, err
	}

	ledgerOpts := []stores.LedgerOption{stores.WithExpiryGrace(cfg.Codes.ExpiryGrace)}
	if b.clock != nil {
		jwtMgr.WithClock(b.clock)
		ledgerOpts = append(ledgerOpts, stores.WithClock(b.clock))
	}

	var (
		ledger   stores.Ledger
		sessions session.Store
		limiter  rate.Limiter
	)
	if b.redis != nil {
		ledger = stores.NewRedisLedger(b.redis, cfg.Redis.LedgerPrefix, ledgerOpts...)
		sessions = session.NewRedisStore(b.redis, cfg.Redis.SessionPrefix, cfg.Session.TTL)
		limiter = rate.NewRedis(b.redis, cfg.Redis.RatePrefix)
	} else {
		memSessions := session.NewMemoryStore()
		memLimiter := rate.NewMemory()
		if b.clock != nil {
			memSessions.WithClock(b.clock)
			memLimiter.WithClock(b.clock)
		}
		ledger = stores.NewMemoryLedger(ledgerOpts...)
		sessions = memSessions
		limiter = memLimiter
	}

	var auditDispatcher *audit.Dispatcher
	if b.auditSink != nil {
		auditDispatcher = audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink)
	}

	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
	}, b.notifier)

	engine := &Engine{
		config:       cfg,
		users:        b.users,
		ledger:       ledger,
		sessions:     sessions,
		limiter:      limiter,
		notifier:     dispatcher,
		notifierName: notifierName(b.notifier),
		audit:        auditDispatcher,
		metrics:      NewMetrics(cfg.Metrics),
		passwordHash: hasher,
		jwtManager:   jwtMgr,
		catalogue:    cat,
		logger:       logger,
		redis:        b.redis,
		clock:        b.clock,
		dummyHash:    dummyHash,
	}

	b.built = true
	return engine, nil
}

func notifierName(n notify.Notifier) string {
	switch n.(type) {
	case *notify.LogNotifier:
		return "log"
	case *notify.SMTPMailer:
		return "smtp"
	default:
		return "custom"
	}
}
