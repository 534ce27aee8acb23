package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const userIDFile = "user_id"

// authenticator yields the opaque user id every store path is scoped by.
// A configured token maps to a stable derived id; without one an anonymous
// id is minted on first run and persisted so chat history survives restarts
// and follows the machine.
type authenticator struct {
	token    string
	stateDir string
}

func NewAuthenticator(token, stateDir string) *authenticator {
	return &authenticator{token: token, stateDir: stateDir}
}

func (a *authenticator) SignIn() (string, error) {
	if a.token != "" {
		sum := sha256.Sum256([]byte(a.token))
		userID := hex.EncodeToString(sum[:16])
		slog.Info("signed in with token", "userID", userID)
		return userID, nil
	}

	path := filepath.Join(a.stateDir, userIDFile)
	if data, err := os.ReadFile(path); err == nil {
		if userID := strings.TrimSpace(string(data)); userID != "" {
			return userID, nil
		}
	}

	userID := uuid.NewString()
	if err := os.MkdirAll(a.stateDir, 0o700); err != nil {
		return "", fmt.Errorf("creating state dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(userID+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persisting anonymous user id: %w", err)
	}

	slog.Info("signed in anonymously", "userID", userID)
	return userID, nil
}
