package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kodokalabs/tetsuo.26/internal/security"
)

// Store is the single process-global settings singleton: an in-memory
// RuntimeSettings backed by settings.json, mutated only through Update.
type Store struct {
	mu       sync.RWMutex
	path     string
	current  RuntimeSettings
	secret   func() string
	now      func() time.Time
}

// NewStore loads settings.json under workspace, writing defaults if the file
// is missing. A missing-but-uncreatable file or an unreadable existing file
// is Fatal per the error handling design — the caller should abort startup.
func NewStore(workspace string, secret func() string) (*Store, error) {
	s := &Store{
		path:    filepath.Join(workspace, "settings.json"),
		current: Default(),
		secret:  secret,
		now:     time.Now,
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if writeErr := s.persistLocked(); writeErr != nil {
			return nil, fmt.Errorf("initialize settings.json: %w", writeErr)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings.json: %w", err)
	}
	var loaded RuntimeSettings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse settings.json: %w", err)
	}
	s.current = loaded
	return s, nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() RuntimeSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ConfirmToken issues the confirmation token for a dangerous (key, value)
// pair at the current time bucket, for the /admin/api/settings/confirm
// endpoint to hand back to the operator.
func (s *Store) ConfirmToken(key, value string) string {
	return security.ConfirmToken(s.secret(), key, value, s.now())
}

// Update deep-merges patch onto the current settings. If the patch would set
// a dangerous value (per security.DangerousSettings) without a matching
// confirmation token in confirmTokens, that field is dropped from the patch
// before merging and its DangerousSetting is returned in required; every
// other field in the patch is still applied.
func (s *Store) Update(patch map[string]any, confirmTokens map[string]string) (applied RuntimeSettings, required []security.DangerousSetting, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flat := flatten(patch, "")
	needsConfirm := security.RequiredConfirmations(flat)

	safePatch := patch
	if len(needsConfirm) > 0 {
		safePatch = cloneMap(patch)
		for _, ds := range needsConfirm {
			token := confirmTokens[ds.Key]
			if token != "" && security.VerifyConfirmToken(s.secret(), ds.Key, ds.Value, token, s.now()) {
				continue // confirmed, keep it in the patch
			}
			deletePath(safePatch, ds.Key)
			required = append(required, ds)
		}
	}

	merged, err := mergeSettings(s.current, safePatch)
	if err != nil {
		return RuntimeSettings{}, required, err
	}
	s.current = merged
	if err := s.persistLocked(); err != nil {
		return RuntimeSettings{}, required, err
	}
	return s.current, required, nil
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// mergeSettings applies a generic JSON patch onto the current settings by
// round-tripping through JSON, the same deep-merge shape the teacher's
// config loader uses for $include overlays.
func mergeSettings(base RuntimeSettings, patch map[string]any) (RuntimeSettings, error) {
	baseMap := map[string]any{}
	baseBytes, err := json.Marshal(base)
	if err != nil {
		return base, err
	}
	if err := json.Unmarshal(baseBytes, &baseMap); err != nil {
		return base, err
	}
	merged := deepMerge(baseMap, patch)
	mergedBytes, err := json.Marshal(merged)
	if err != nil {
		return base, err
	}
	var out RuntimeSettings
	if err := json.Unmarshal(mergedBytes, &out); err != nil {
		return base, err
	}
	return out, nil
}

func deepMerge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			if dstMap, ok := dst[k].(map[string]any); ok {
				dst[k] = deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

func flatten(m map[string]any, prefix string) map[string]string {
	out := map[string]string{}
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			for fk, fv := range flatten(val, path) {
				out[fk] = fv
			}
		case bool:
			out[path] = fmt.Sprintf("%v", val)
		case string:
			out[path] = val
		default:
			out[path] = fmt.Sprintf("%v", val)
		}
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func deletePath(m map[string]any, dotted string) {
	cur := m
	parts := splitDotted(dotted)
	for i, p := range parts {
		if i == len(parts)-1 {
			delete(cur, p)
			return
		}
		next, ok := cur[p].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
}

func splitDotted(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
