package cli

import (
	"context"
	"io"
	"log/slog"

	"todosync/internal/api"
	"todosync/internal/backend/googletasks"
	"todosync/internal/backend/rest"
	"todosync/internal/config"
)

// BackendFactory returns a ClientFactory that builds the backend named in
// the settings. The googletasks login flow prints its authorization URL to prompt.
func BackendFactory(prompt io.Writer) ClientFactory {
	return func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (api.Client, error) {
		switch cfg.Settings.Backend {
		case config.BackendGoogleTasks:
			return googletasks.New(googletasks.Options{
				Config: cfg,
				Prompt: prompt,
				Logger: logger,
			}), nil
		default:
			client, err := rest.New(ctx, rest.Options{
				BaseURL:     cfg.Settings.BaseURL,
				APIKey:      cfg.Settings.APIKey,
				BearerToken: cfg.Settings.BearerToken,
				Timeout:     cfg.Settings.Timeout,
				SessionPath: cfg.SessionPath(),
				Logger:      logger,
			})
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}
}
