// internal/listcache/cache.go
package listcache

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const reloadInterval = 5 * time.Minute

// Cache is a file-backed address set. Lines are `ADDRESS` or
// `ADDRESS,<json-encoded note>`. The snipe list is read-only; the avoid list
// also takes runtime additions, which are appended to the file.
type Cache struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]string // address -> note ("" when absent)

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a cache for path and starts the periodic reload.
func New(path string, logger *zap.Logger) (*Cache, error) {
	c := &Cache{
		path:    path,
		logger:  logger.Named("listcache").With(zap.String("file", path)),
		entries: make(map[string]string),
		stop:    make(chan struct{}),
	}
	if err := c.Init(); err != nil {
		return nil, err
	}

	go c.reloadLoop()
	return c, nil
}

// Init reads the backing file into memory, creating it when missing.
func (c *Cache) Init() error {
	entries, err := c.readFile()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	c.logger.Debug("List loaded", zap.Int("entries", len(entries)))
	return nil
}

// Contains reports membership of address.
func (c *Cache) Contains(address string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[address]
	return ok
}

// Note returns the stored note for address, if any.
func (c *Cache) Note(address string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	note, ok := c.entries[address]
	return note, ok
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Add appends address (with an optional note) to the file and the set.
// Already-present addresses are left untouched.
func (c *Cache) Add(address, note string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[address]; ok {
		c.logger.Warn("Address already listed, skipping", zap.String("address", address))
		return nil
	}

	line := address
	if note != "" {
		encoded, err := json.Marshal(note)
		if err != nil {
			return fmt.Errorf("failed to encode note: %w", err)
		}
		line = address + "," + string(encoded)
	}

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append list entry: %w", err)
	}

	c.entries[address] = note
	c.logger.Info("Address added to list",
		zap.String("address", address),
		zap.String("note", note))
	return nil
}

// Close stops the reload loop.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) reloadLoop() {
	ticker := time.NewTicker(reloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.Init(); err != nil {
				// Keep the previous snapshot on failure.
				c.logger.Error("List reload failed", zap.Error(err))
			}
		}
	}
}

// readFile parses the backing file into a fresh map, creating the file when it
// does not exist yet.
func (c *Cache) readFile() (map[string]string, error) {
	f, err := os.Open(c.path)
	if os.IsNotExist(err) {
		if f, err = os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY, 0o644); err != nil {
			return nil, fmt.Errorf("failed to create list file: %w", err)
		}
		f.Close()
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()

	entries := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		address, rest, found := strings.Cut(line, ",")
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}

		var note string
		if found {
			if err := json.Unmarshal([]byte(strings.TrimSpace(rest)), &note); err != nil {
				// Tolerate unencoded notes written by hand.
				note = strings.TrimSpace(rest)
			}
		}
		entries[address] = note
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list file: %w", err)
	}
	return entries, nil
}
