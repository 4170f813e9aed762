package state

import (
	"context"

	"todosync/internal/api"
)

// ProbeSession asks the server who is logged in. It marks the store as
// initialized whatever the outcome; run it once at startup.
func (s *Store) ProbeSession(ctx context.Context, opts ...CallOption) (api.MeData, error) {
	defer s.Dispatch(InitializedSet{Initialized: true})

	return run(ctx, s, "probe session", newCallOptions(opts), s.client.Me,
		func(api.MeData) []Event {
			return []Event{LoggedInSet{LoggedIn: true}}
		})
}

// Login authenticates with params. On rejection the returned *RejectError
// carries the field errors for the login form.
func (s *Store) Login(ctx context.Context, params api.LoginParams, opts ...CallOption) error {
	_, err := run(ctx, s, "login", newCallOptions(opts),
		func(ctx context.Context) (api.Envelope[api.LoginData], error) {
			return s.client.Login(ctx, params)
		},
		func(api.LoginData) []Event {
			return []Event{LoggedInSet{LoggedIn: true}}
		})
	return err
}

// Logout ends the session.
func (s *Store) Logout(ctx context.Context, opts ...CallOption) error {
	_, err := run(ctx, s, "logout", newCallOptions(opts), s.client.Logout,
		func(api.Empty) []Event {
			return []Event{LoggedInSet{LoggedIn: false}}
		})
	return err
}
