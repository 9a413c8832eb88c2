package goCognito

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goCognito/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const (
	testPoolID   = "local_pool"
	testClientID = "client-1"
)

var (
	testKeyOnce sync.Once
	testKeyPEM  []byte
)

// testPrivateKeyPEM generates one RSA key for the whole test binary.
func testPrivateKeyPEM(t *testing.T) []byte {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	})
	return testKeyPEM
}

func newTestKeys(t *testing.T, clock clockwork.Clock) *token.RSAKeys {
	t.Helper()
	keys, err := token.NewRSAKeys(token.Config{
		KeyID:      "test-kid",
		PrivateKey: testPrivateKeyPEM(t),
		Now:        clock.Now,
	})
	if err != nil {
		t.Fatalf("NewRSAKeys failed: %v", err)
	}
	return keys
}

// memoryPool is an in-memory UserPoolService that counts writes.
type memoryPool struct {
	mu      sync.Mutex
	config  UserPool
	users   map[string]User
	groups  map[string][]string
	saves   int
	saveErr error
}

func newMemoryPool(cfg UserPool) *memoryPool {
	return &memoryPool{
		config: cfg,
		users:  map[string]User{},
		groups: map[string][]string{},
	}
}

func (p *memoryPool) Config() UserPool {
	return p.config
}

func (p *memoryPool) GetUserByUsername(_ context.Context, username string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[username]
	if !ok {
		return nil, nil
	}
	out := user.Clone()
	return &out, nil
}

func (p *memoryPool) GetUserByRefreshToken(_ context.Context, refreshToken string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, user := range p.users {
		if containsString(user.RefreshTokens, refreshToken) {
			out := user.Clone()
			return &out, nil
		}
	}
	return nil, nil
}

func (p *memoryPool) FindUserByAttribute(_ context.Context, name, value string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.users))
	for username := range p.users {
		names = append(names, username)
	}
	sort.Strings(names)
	for _, username := range names {
		user := p.users[username]
		if v, ok := AttributeValue(name, user.Attributes); ok && v == value {
			out := user.Clone()
			return &out, nil
		}
	}
	return nil, nil
}

func (p *memoryPool) ListUserGroups(_ context.Context, username string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.groups[username]...), nil
}

func (p *memoryPool) SaveUser(_ context.Context, user User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saves++
	p.users[user.Username] = user.Clone()
	return nil
}

func (p *memoryPool) put(user User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[user.Username] = user.Clone()
}

func (p *memoryPool) user(t *testing.T, username string) User {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[username]
	if !ok {
		t.Fatalf("user %q not stored", username)
	}
	return user.Clone()
}

func (p *memoryPool) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

// memoryCognito is an in-memory CognitoService.
type memoryCognito struct {
	pools   map[string]*memoryPool
	clients map[string]AppClient
}

func newMemoryCognito(pools ...*memoryPool) *memoryCognito {
	c := &memoryCognito{pools: map[string]*memoryPool{}, clients: map[string]AppClient{}}
	for _, p := range pools {
		c.pools[p.config.ID] = p
	}
	return c
}

func (c *memoryCognito) addClient(clientID, poolID string) {
	c.clients[clientID] = AppClient{ClientID: clientID, ClientName: clientID, UserPoolID: poolID}
}

func (c *memoryCognito) GetUserPoolForClientID(ctx context.Context, clientID string) (UserPoolService, error) {
	client, ok := c.clients[clientID]
	if !ok {
		return nil, nil
	}
	return c.GetUserPool(ctx, client.UserPoolID)
}

func (c *memoryCognito) GetUserPool(_ context.Context, userPoolID string) (UserPoolService, error) {
	p, ok := c.pools[userPoolID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (c *memoryCognito) GetAppClient(_ context.Context, clientID string) (*AppClient, error) {
	client, ok := c.clients[clientID]
	if !ok {
		return nil, nil
	}
	return &client, nil
}

// recordingDelivery captures delivered codes.
type recordingDelivery struct {
	mu   sync.Mutex
	reqs []DeliveryRequest
	err  error
}

func (d *recordingDelivery) Deliver(_ context.Context, req DeliveryRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.reqs = append(d.reqs, req)
	return nil
}

func (d *recordingDelivery) last(t *testing.T) DeliveryRequest {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.reqs) == 0 {
		t.Fatal("expected a delivered code")
	}
	return d.reqs[len(d.reqs)-1]
}

func (d *recordingDelivery) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.reqs)
}

// fakeTriggers enables exactly the hooks whose funcs are set.
type fakeTriggers struct {
	preTokenGeneration func(context.Context, PreTokenGenerationInput) (*ClaimsOverrideDetails, error)
	userMigration      func(context.Context, UserMigrationInput) (*UserMigrationResult, error)
	postAuthentication func(context.Context, PostAuthenticationInput) error
}

func (f *fakeTriggers) Enabled(name TriggerName) bool {
	switch name {
	case TriggerPreTokenGeneration:
		return f.preTokenGeneration != nil
	case TriggerUserMigration:
		return f.userMigration != nil
	case TriggerPostAuthentication:
		return f.postAuthentication != nil
	}
	return false
}

func (f *fakeTriggers) PreTokenGeneration(ctx context.Context, in PreTokenGenerationInput) (*ClaimsOverrideDetails, error) {
	return f.preTokenGeneration(ctx, in)
}

func (f *fakeTriggers) UserMigration(ctx context.Context, in UserMigrationInput) (*UserMigrationResult, error) {
	return f.userMigration(ctx, in)
}

func (f *fakeTriggers) PostAuthentication(ctx context.Context, in PostAuthenticationInput) error {
	return f.postAuthentication(ctx, in)
}

type testEnv struct {
	engine   *Engine
	pool     *memoryPool
	cognito  *memoryCognito
	delivery *recordingDelivery
	keys     *token.RSAKeys
	clock    *clockwork.FakeClock
	metrics  *Metrics
}

func newTestEnv(t *testing.T, pool UserPool, triggers Triggers) *testEnv {
	t.Helper()

	if pool.ID == "" {
		pool.ID = testPoolID
	}
	mp := newMemoryPool(pool)
	cognito := newMemoryCognito(mp)
	cognito.addClient(testClientID, pool.ID)

	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	keys := newTestKeys(t, clock)
	delivery := &recordingDelivery{}
	metrics, err := NewMetrics(nil)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	engine, err := New().
		WithCognito(cognito).
		WithTriggers(triggers).
		WithCodeDelivery(delivery).
		WithKeys(keys).
		WithClock(clock).
		WithMetrics(metrics).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return &testEnv{
		engine:   engine,
		pool:     mp,
		cognito:  cognito,
		delivery: delivery,
		keys:     keys,
		clock:    clock,
		metrics:  metrics,
	}
}

func testUser(username, password string, attrs ...AttributeType) User {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return User{
		Username:             username,
		Password:             password,
		Attributes:           AttributesAppend([]AttributeType{{Name: AttributeSub, Value: "sub-" + username}}, attrs...),
		UserStatus:           UserStatusConfirmed,
		Enabled:              true,
		UserCreateDate:       created,
		UserLastModifiedDate: created,
	}
}

func (env *testEnv) login(t *testing.T, username, password string) *AuthResponse {
	t.Helper()
	resp, err := env.engine.InitiateAuth(context.Background(), InitiateAuthRequest{
		AuthFlow:       AuthFlowUserPassword,
		ClientID:       testClientID,
		AuthParameters: map[string]string{ParamUsername: username, ParamPassword: password},
	})
	if err != nil {
		t.Fatalf("InitiateAuth failed: %v", err)
	}
	return resp
}

func (env *testEnv) parse(t *testing.T, signed string) jwt.MapClaims {
	t.Helper()
	claims, err := env.keys.Parse(signed)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return claims
}
