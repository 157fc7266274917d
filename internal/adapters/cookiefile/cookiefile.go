// Package cookiefile persists the dashboard session cookies captured
// from a browser. The cookies are opaque bearer tokens; nothing here
// implements an authentication protocol.
package cookiefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// cookieFileMode keeps the session cookies readable by the owner only.
const cookieFileMode = 0o600

// Store reads and writes the cookie file.
type Store struct {
	path string
}

// New creates a Store for the given path, ensuring its directory exists.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cookie directory: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Path returns the cookie file location.
func (s *Store) Path() string { return s.path }

// Save writes the cookie map as JSON with owner-only permissions.
func (s *Store) Save(cookies map[string]string) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	if err := os.WriteFile(s.path, data, cookieFileMode); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	// WriteFile leaves existing permissions alone; force them.
	if err := os.Chmod(s.path, cookieFileMode); err != nil {
		return fmt.Errorf("chmod cookie file: %w", err)
	}
	return nil
}

// Load reads the cookie map. A missing file returns an empty map, not an
// error; callers distinguish "no cookies yet" via Has.
func (s *Store) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}

	var cookies map[string]string
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("decode cookie file: %w", err)
	}
	return cookies, nil
}

// Has reports whether the store holds at least one cookie.
func (s *Store) Has() bool {
	cookies, err := s.Load()
	return err == nil && len(cookies) > 0
}

// ParseBrowserFormat parses cookies pasted from browser DevTools.
// Accepted formats:
//  1. Cookie header: "name1=value1; name2=value2"
//  2. JSON object: {"name1": "value1", "name2": "value2"}
//  3. Single cookie: "name=value"
func ParseBrowserFormat(input string) map[string]string {
	input = strings.TrimSpace(input)

	if strings.HasPrefix(input, "{") {
		var cookies map[string]string
		if err := json.Unmarshal([]byte(input), &cookies); err == nil {
			return cookies
		}
	}

	cookies := map[string]string{}
	for _, part := range strings.Split(input, ";") {
		part = strings.TrimSpace(part)
		name, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return cookies
}
