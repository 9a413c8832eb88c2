// Package store keeps user pools, app clients and users in Redis.
//
// Records are JSON documents under a common key prefix:
//
//	<prefix>:pool:<poolID>                  user pool config
//	<prefix>:client:<clientID>              app client
//	<prefix>:user:{<poolID>}:<username>     user
//	<prefix>:users:{<poolID>}               set of usernames
//	<prefix>:refresh:{<poolID>}:<token>     username owning a refresh token
//	<prefix>:groups:{<poolID>}:<username>   set of group names
//
// Per-pool keys share the {<poolID>} hash tag, so a pool's keys land in one
// cluster slot and the multi-key transactions below work on Redis Cluster.
//
// Every SaveUser is a single MULTI/EXEC transaction guarded by WATCH on the
// user key, so concurrent writers to the same user are last-write-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goCognito "github.com/MrEthical07/goCognito"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix  = "cognito"
	maxSaveRetries = 4
)

var (
	// ErrBackend wraps Redis failures.
	ErrBackend = errors.New("store backend unavailable")
	// ErrCorruptRecord is returned when a stored document cannot be decoded.
	ErrCorruptRecord = errors.New("store record corrupt")
)

// Store implements goCognito.CognitoService on Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

var _ goCognito.CognitoService = (*Store)(nil)

// New returns a Store using client. An empty prefix selects "cognito".
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) poolKey(poolID string) string {
	return s.prefix + ":pool:" + poolID
}

func (s *Store) clientKey(clientID string) string {
	return s.prefix + ":client:" + clientID
}

func (s *Store) userKey(poolID, username string) string {
	return s.prefix + ":user:" + poolTag(poolID) + ":" + username
}

func (s *Store) usersKey(poolID string) string {
	return s.prefix + ":users:" + poolTag(poolID)
}

func (s *Store) refreshKey(poolID, token string) string {
	return s.prefix + ":refresh:" + poolTag(poolID) + ":" + token
}

func (s *Store) groupsKey(poolID, username string) string {
	return s.prefix + ":groups:" + poolTag(poolID) + ":" + username
}

func poolTag(poolID string) string {
	return "{" + poolID + "}"
}

// PutUserPool creates or replaces a pool.
func (s *Store) PutUserPool(ctx context.Context, pool goCognito.UserPool) error {
	if pool.ID == "" {
		return errors.New("user pool id required")
	}
	return s.putJSON(ctx, s.poolKey(pool.ID), pool)
}

// PutAppClient creates or replaces an app client. Its pool must exist.
func (s *Store) PutAppClient(ctx context.Context, client goCognito.AppClient) error {
	if client.ClientID == "" {
		return errors.New("client id required")
	}
	pool, err := s.loadPool(ctx, client.UserPoolID)
	if err != nil {
		return err
	}
	if pool == nil {
		return fmt.Errorf("user pool %q not found", client.UserPoolID)
	}
	return s.putJSON(ctx, s.clientKey(client.ClientID), client)
}

// AddUserToGroup records group membership for username.
func (s *Store) AddUserToGroup(ctx context.Context, poolID, username, group string) error {
	if err := s.redis.SAdd(ctx, s.groupsKey(poolID, username), group).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

// GetUserPool returns the pool with userPoolID, or nil.
func (s *Store) GetUserPool(ctx context.Context, userPoolID string) (goCognito.UserPoolService, error) {
	cfg, err := s.loadPool(ctx, userPoolID)
	if err != nil || cfg == nil {
		return nil, err
	}
	return &Pool{store: s, config: *cfg}, nil
}

// GetAppClient returns the client with clientID, or nil.
func (s *Store) GetAppClient(ctx context.Context, clientID string) (*goCognito.AppClient, error) {
	var client goCognito.AppClient
	found, err := s.getJSON(ctx, s.clientKey(clientID), &client)
	if err != nil || !found {
		return nil, err
	}
	return &client, nil
}

// GetUserPoolForClientID returns the pool owning clientID, or nil.
func (s *Store) GetUserPoolForClientID(ctx context.Context, clientID string) (goCognito.UserPoolService, error) {
	client, err := s.GetAppClient(ctx, clientID)
	if err != nil || client == nil {
		return nil, err
	}
	return s.GetUserPool(ctx, client.UserPoolID)
}

func (s *Store) loadPool(ctx context.Context, poolID string) (*goCognito.UserPool, error) {
	var pool goCognito.UserPool
	found, err := s.getJSON(ctx, s.poolKey(poolID), &pool)
	if err != nil || !found {
		return nil, err
	}
	return &pool, nil
}

func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	return true, nil
}
