package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"

	goCognito "github.com/MrEthical07/goCognito"
	"github.com/redis/go-redis/v9"
)

// Pool is the per-pool view of a [Store]. The config is a snapshot taken
// when the pool was loaded.
type Pool struct {
	store  *Store
	config goCognito.UserPool
}

var _ goCognito.UserPoolService = (*Pool)(nil)

func (p *Pool) Config() goCognito.UserPool {
	return p.config
}

// GetUserByUsername returns the user stored under username, or nil.
func (p *Pool) GetUserByUsername(ctx context.Context, username string) (*goCognito.User, error) {
	var user goCognito.User
	found, err := p.store.getJSON(ctx, p.store.userKey(p.config.ID, username), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// GetUserByRefreshToken returns the user a refresh token was issued to, or
// nil. A token no longer listed in the user's RefreshTokens is revoked.
func (p *Pool) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*goCognito.User, error) {
	username, err := p.store.redis.Get(ctx, p.store.refreshKey(p.config.ID, refreshToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	user, err := p.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, err
	}
	if !slices.Contains(user.RefreshTokens, refreshToken) {
		return nil, nil
	}
	return user, nil
}

// FindUserByAttribute returns the first user, in username order, whose
// attribute name equals value.
func (p *Pool) FindUserByAttribute(ctx context.Context, name, value string) (*goCognito.User, error) {
	users, err := p.listUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if v, ok := goCognito.AttributeValue(name, users[i].Attributes); ok && v == value {
			return &users[i], nil
		}
	}
	return nil, nil
}

// ListUserGroups returns username's groups sorted by name.
func (p *Pool) ListUserGroups(ctx context.Context, username string) ([]string, error) {
	groups, err := p.store.redis.SMembers(ctx, p.store.groupsKey(p.config.ID, username)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	sort.Strings(groups)
	return groups, nil
}

// SaveUser writes user and its refresh token index in one transaction.
// Index entries for tokens dropped since the previous save are removed in
// the same transaction.
func (p *Pool) SaveUser(ctx context.Context, user goCognito.User) error {
	if user.Username == "" {
		return errors.New("username required")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	key := p.store.userKey(p.config.ID, user.Username)
	for i := 0; i < maxSaveRetries; i++ {
		err = p.store.redis.Watch(ctx, func(tx *redis.Tx) error {
			var stale []string
			raw, err := tx.Get(ctx, key).Bytes()
			switch {
			case errors.Is(err, redis.Nil):
			case err != nil:
				return err
			default:
				var previous goCognito.User
				if err := json.Unmarshal(raw, &previous); err != nil {
					return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
				}
				for _, token := range previous.RefreshTokens {
					if !slices.Contains(user.RefreshTokens, token) {
						stale = append(stale, token)
					}
				}
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				pipe.SAdd(ctx, p.store.usersKey(p.config.ID), user.Username)
				for _, token := range stale {
					pipe.Del(ctx, p.store.refreshKey(p.config.ID, token))
				}
				for _, token := range user.RefreshTokens {
					pipe.Set(ctx, p.store.refreshKey(p.config.ID, token), user.Username, 0)
				}
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

func (p *Pool) listUsers(ctx context.Context) ([]goCognito.User, error) {
	usernames, err := p.store.redis.SMembers(ctx, p.store.usersKey(p.config.ID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if len(usernames) == 0 {
		return nil, nil
	}
	sort.Strings(usernames)

	keys := make([]string, len(usernames))
	for i, username := range usernames {
		keys[i] = p.store.userKey(p.config.ID, username)
	}
	cmds := make([]*redis.StringCmd, len(keys))
	_, err = p.store.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.Get(ctx, key)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	users := make([]goCognito.User, 0, len(cmds))
	for i, cmd := range cmds {
		raw, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackend, err)
		}
		var user goCognito.User
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, keys[i], err)
		}
		users = append(users, user)
	}
	return users, nil
}
