package goCognito

import "context"

// userResolver is one strategy for turning a login identifier into a user.
type userResolver struct {
	name    string
	resolve func(ctx context.Context, pool UserPoolService, username string) (*User, error)
}

// userResolvers run in order; the first hit wins. Alias strategies only
// apply when the pool lists the attribute in UsernameAttributes.
var userResolvers = []userResolver{
	{name: "username", resolve: resolveByUsername},
	{name: "sub", resolve: resolveByAttribute(AttributeSub, false)},
	{name: "email", resolve: resolveByAttribute(AttributeEmail, true)},
	{name: "phone_number", resolve: resolveByAttribute(AttributePhoneNumber, true)},
}

func resolveUser(ctx context.Context, pool UserPoolService, username string) (*User, error) {
	if username == "" {
		return nil, nil
	}
	for _, r := range userResolvers {
		user, err := r.resolve(ctx, pool, username)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}

func resolveByUsername(ctx context.Context, pool UserPoolService, username string) (*User, error) {
	return pool.GetUserByUsername(ctx, username)
}

func resolveByAttribute(name string, alias bool) func(context.Context, UserPoolService, string) (*User, error) {
	return func(ctx context.Context, pool UserPoolService, username string) (*User, error) {
		if alias && !containsString(pool.Config().UsernameAttributes, name) {
			return nil, nil
		}
		return pool.FindUserByAttribute(ctx, name, username)
	}
}
