// Package triggers provides a function-backed implementation of the
// goCognito hook capabilities.
//
// A hook is enabled exactly when its function is set; the engine checks
// Enabled before every call.
package triggers

import (
	"context"
	"sync"

	goCognito "github.com/MrEthical07/goCognito"
)

// PreTokenGenerationFunc rewrites Id token claims.
type PreTokenGenerationFunc func(ctx context.Context, input goCognito.PreTokenGenerationInput) (*goCognito.ClaimsOverrideDetails, error)

// UserMigrationFunc vouches for a user missing from the pool.
type UserMigrationFunc func(ctx context.Context, input goCognito.UserMigrationInput) (*goCognito.UserMigrationResult, error)

// PostAuthenticationFunc observes a successful login.
type PostAuthenticationFunc func(ctx context.Context, input goCognito.PostAuthenticationInput) error

// Registry holds the configured hooks. The zero value has every hook
// disabled. Registry is safe for concurrent use; hooks may be swapped while
// the engine serves requests.
type Registry struct {
	mu                 sync.RWMutex
	preTokenGeneration PreTokenGenerationFunc
	userMigration      UserMigrationFunc
	postAuthentication PostAuthenticationFunc
}

var (
	_ goCognito.Triggers                  = (*Registry)(nil)
	_ goCognito.PreTokenGenerationTrigger = (*Registry)(nil)
	_ goCognito.UserMigrationTrigger      = (*Registry)(nil)
	_ goCognito.PostAuthenticationTrigger = (*Registry)(nil)
)

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// SetPreTokenGeneration installs fn; nil disables the hook.
func (r *Registry) SetPreTokenGeneration(fn PreTokenGenerationFunc) *Registry {
	r.mu.Lock()
	r.preTokenGeneration = fn
	r.mu.Unlock()
	return r
}

// SetUserMigration installs fn; nil disables the hook.
func (r *Registry) SetUserMigration(fn UserMigrationFunc) *Registry {
	r.mu.Lock()
	r.userMigration = fn
	r.mu.Unlock()
	return r
}

// SetPostAuthentication installs fn; nil disables the hook.
func (r *Registry) SetPostAuthentication(fn PostAuthenticationFunc) *Registry {
	r.mu.Lock()
	r.postAuthentication = fn
	r.mu.Unlock()
	return r
}

// Enabled reports whether a function is installed for name.
func (r *Registry) Enabled(name goCognito.TriggerName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch name {
	case goCognito.TriggerPreTokenGeneration:
		return r.preTokenGeneration != nil
	case goCognito.TriggerUserMigration:
		return r.userMigration != nil
	case goCognito.TriggerPostAuthentication:
		return r.postAuthentication != nil
	default:
		return false
	}
}

// PreTokenGeneration runs the installed hook. A disabled hook overrides
// nothing.
func (r *Registry) PreTokenGeneration(ctx context.Context, input goCognito.PreTokenGenerationInput) (*goCognito.ClaimsOverrideDetails, error) {
	r.mu.RLock()
	fn := r.preTokenGeneration
	r.mu.RUnlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, input)
}

// UserMigration runs the installed hook.
func (r *Registry) UserMigration(ctx context.Context, input goCognito.UserMigrationInput) (*goCognito.UserMigrationResult, error) {
	r.mu.RLock()
	fn := r.userMigration
	r.mu.RUnlock()
	if fn == nil {
		return nil, ErrNotConfigured
	}
	return fn(ctx, input)
}

// PostAuthentication runs the installed hook.
func (r *Registry) PostAuthentication(ctx context.Context, input goCognito.PostAuthenticationInput) error {
	r.mu.RLock()
	fn := r.postAuthentication
	r.mu.RUnlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, input)
}
