package store

import (
	"context"
	"fmt"
	"time"

	goCognito "github.com/MrEthical07/goCognito"
	"github.com/google/uuid"
)

// SeedUser is a user to create at startup.
type SeedUser struct {
	UserPoolID string                    `mapstructure:"user_pool_id"`
	Username   string                    `mapstructure:"username"`
	Password   string                    `mapstructure:"password"`
	Status     goCognito.UserStatus      `mapstructure:"status"`
	Attributes []goCognito.AttributeType `mapstructure:"attributes"`
	MFAOptions []goCognito.MFAOption     `mapstructure:"mfa_options"`
	Groups     []string                  `mapstructure:"groups"`
}

// Seed is the initial content of a Store.
type Seed struct {
	UserPools  []goCognito.UserPool  `mapstructure:"user_pools"`
	AppClients []goCognito.AppClient `mapstructure:"app_clients"`
	Users      []SeedUser            `mapstructure:"users"`
}

// Seed writes pools, then clients, then users. Users without a sub get a
// fresh one; users of pools with UsernameAttributes get a generated
// username when none is given. Existing records are replaced.
func (s *Store) Seed(ctx context.Context, seed Seed, now time.Time) error {
	for _, pool := range seed.UserPools {
		if err := s.PutUserPool(ctx, pool); err != nil {
			return fmt.Errorf("seed pool %q: %w", pool.ID, err)
		}
	}
	for _, client := range seed.AppClients {
		if err := s.PutAppClient(ctx, client); err != nil {
			return fmt.Errorf("seed client %q: %w", client.ClientID, err)
		}
	}
	for _, su := range seed.Users {
		if _, err := s.SeedUser(ctx, su, now); err != nil {
			return err
		}
	}
	return nil
}

// SeedUser creates one user and returns it as stored.
func (s *Store) SeedUser(ctx context.Context, su SeedUser, now time.Time) (goCognito.User, error) {
	pool, err := s.GetUserPool(ctx, su.UserPoolID)
	if err != nil {
		return goCognito.User{}, err
	}
	if pool == nil {
		return goCognito.User{}, fmt.Errorf("seed user: user pool %q not found", su.UserPoolID)
	}

	user := goCognito.User{
		Username:             su.Username,
		Password:             su.Password,
		Attributes:           su.Attributes,
		UserStatus:           su.Status,
		Enabled:              true,
		MFAOptions:           su.MFAOptions,
		UserCreateDate:       now,
		UserLastModifiedDate: now,
	}
	if user.Username == "" {
		if len(pool.Config().UsernameAttributes) == 0 {
			return goCognito.User{}, fmt.Errorf("seed user: username required in pool %q", su.UserPoolID)
		}
		user.Username = uuid.NewString()
	}
	if user.UserStatus == "" {
		user.UserStatus = goCognito.UserStatusConfirmed
	}
	if !goCognito.HasAttribute(goCognito.AttributeSub, user.Attributes) {
		user.Attributes = goCognito.AttributesAppend(user.Attributes, goCognito.AttributeType{
			Name:  goCognito.AttributeSub,
			Value: uuid.NewString(),
		})
	}

	if err := pool.SaveUser(ctx, user); err != nil {
		return goCognito.User{}, fmt.Errorf("seed user %q: %w", user.Username, err)
	}
	for _, group := range su.Groups {
		if err := s.AddUserToGroup(ctx, su.UserPoolID, user.Username, group); err != nil {
			return goCognito.User{}, err
		}
	}
	return user, nil
}
