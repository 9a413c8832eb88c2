package goCognito

import (
	"errors"

	"github.com/MrEthical07/goCognito/token"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Builder assembles an [Engine] from its collaborators.
//
// Builder instances are intended to be configured during initialization and
// then discarded; a Builder can only build once.
type Builder struct {
	config Config

	cognito  CognitoService
	triggers Triggers
	delivery CodeDelivery
	signer   token.Signer
	verifier token.Verifier

	clock   clockwork.Clock
	logger  *zap.Logger
	metrics *Metrics

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the engine configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithCognito sets the pool and client directory. Required.
func (b *Builder) WithCognito(svc CognitoService) *Builder {
	b.cognito = svc
	return b
}

// WithTriggers sets the hook registry. Optional; without it no hook runs.
func (b *Builder) WithTriggers(t Triggers) *Builder {
	b.triggers = t
	return b
}

// WithCodeDelivery sets where MFA and verification codes are sent. Required.
func (b *Builder) WithCodeDelivery(d CodeDelivery) *Builder {
	b.delivery = d
	return b
}

// WithKeys sets both the token signer and verifier from one key pair.
func (b *Builder) WithKeys(keys *token.RSAKeys) *Builder {
	b.signer = keys
	b.verifier = keys
	return b
}

// WithSigner sets the token signer. Required unless WithKeys is used.
func (b *Builder) WithSigner(s token.Signer) *Builder {
	b.signer = s
	return b
}

// WithVerifier sets the access token verifier. Required unless WithKeys is used.
func (b *Builder) WithVerifier(v token.Verifier) *Builder {
	b.verifier = v
	return b
}

// WithClock injects the time source. Defaults to the real clock.
func (b *Builder) WithClock(c clockwork.Clock) *Builder {
	b.clock = c
	return b
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetrics sets the Prometheus collectors. Without it nothing is counted.
func (b *Builder) WithMetrics(m *Metrics) *Builder {
	b.metrics = m
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.cognito == nil {
		return nil, errors.New("cognito service required")
	}
	if b.delivery == nil {
		return nil, errors.New("code delivery required")
	}
	if b.signer == nil {
		return nil, errors.New("token signer required")
	}
	if b.verifier == nil {
		return nil, errors.New("token verifier required")
	}

	clock := b.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b.built = true
	return &Engine{
		config:   b.config,
		cognito:  b.cognito,
		triggers: b.triggers,
		delivery: b.delivery,
		verifier: b.verifier,
		tokens:   NewTokenIssuer(b.config, b.signer, clock, b.triggers, logger.Named("tokens")),
		clock:    clock,
		logger:   logger,
		metrics:  b.metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}
