package push

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// keysFileName holds generated VAPID material under the data directory.
const keysFileName = "vapid_keys.json"

// Keys is the VAPID signing pair used for Web Push delivery.
type Keys struct {
	Public  string `json:"public_key"`
	Private string `json:"private_key"`
}

// IsZero reports whether no key material is present.
func (k Keys) IsZero() bool {
	return k.Public == "" || k.Private == ""
}

// ResolveKeys returns the VAPID pair, resolved once at startup in priority
// order: explicit configuration, the persisted key file, or a freshly
// generated pair persisted for subsequent runs.
func ResolveKeys(configured Keys, dataDir string) (Keys, error) {
	if !configured.IsZero() {
		return configured, nil
	}

	path := filepath.Join(dataDir, keysFileName)
	if raw, err := os.ReadFile(path); err == nil {
		var keys Keys
		if err := json.Unmarshal(raw, &keys); err != nil {
			return Keys{}, fmt.Errorf("push: parse %s: %w", path, err)
		}
		if !keys.IsZero() {
			return keys, nil
		}
	}

	private, public, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return Keys{}, fmt.Errorf("push: generate vapid keys: %w", err)
	}
	keys := Keys{Public: public, Private: private}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Keys{}, fmt.Errorf("push: create data dir: %w", err)
	}
	payload, err := json.Marshal(keys)
	if err != nil {
		return Keys{}, err
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return Keys{}, fmt.Errorf("push: persist vapid keys: %w", err)
	}

	return keys, nil
}
