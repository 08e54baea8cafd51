package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pshebel/lazer/internal/draft"
	"github.com/pshebel/lazer/internal/lazerapi"
	"github.com/pshebel/lazer/internal/media"
)

const defaultBaseURL = "https://apps.bikeaction.org"

// app bundles the stores and API client every command needs. Callers must
// Close it so pending thumbnail writes flush before the process exits.
type app struct {
	store  *draft.Store
	media  *media.Store
	client *lazerapi.Client
}

func openApp() (*app, error) {
	dir := os.Getenv("LAZER_STATE_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".lazer")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	store, err := draft.Open(filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open draft store: %w", err)
	}

	photos, err := media.NewStore(filepath.Join(dir, "photos"))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open photo store: %w", err)
	}

	baseURL := os.Getenv("LAZER_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	sessionKey, err := store.GetString(draft.KeySessionKey)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		store:  store,
		media:  photos,
		client: lazerapi.NewClient(baseURL, sessionKey),
	}, nil
}

func (a *app) Close() {
	a.media.Flush()
	if err := a.store.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: failed to close draft store:", err)
	}
}
