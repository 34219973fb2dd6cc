package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/petrunin/cachefront/cache"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// GlobalDefaultsFile is the YAML document shape for the manager's global
// defaults: the same field names cache.Configuration uses, but every
// constraint is relaxed to "not negative" since this is a template other
// configurations inherit from, not a directly usable cache configuration
// (it has no Name and MaxSize may legitimately be left at 0, meaning "no
// size default, every cache must state its own").
type GlobalDefaultsFile struct {
	MaxSize           uint64              `yaml:"max_size" validate:"gte=0"`
	DefaultTTL        time.Duration       `yaml:"default_ttl" validate:"gte=0"`
	MaxIdle           time.Duration       `yaml:"max_idle" validate:"gte=0"`
	ExpireAfterWrite  time.Duration       `yaml:"expire_after_write" validate:"gte=0"`
	ExpireAfterAccess time.Duration       `yaml:"expire_after_access" validate:"gte=0"`
	RefreshAfterWrite time.Duration       `yaml:"refresh_after_write" validate:"gte=0"`
	RecordStats       bool                `yaml:"record_stats"`
	AllowNullValues   bool                `yaml:"allow_null_values"`
	EvictionPolicy    cache.EvictionPolicy `yaml:"eviction_policy"`
	ConcurrencyLevel  uint16              `yaml:"concurrency_level"`
	WeakKeys          bool                `yaml:"weak_keys"`
	WeakValues        bool                `yaml:"weak_values"`
	SoftValues        bool                `yaml:"soft_values"`
}

// toConfiguration renders the file as a cache.Configuration suitable for
// mergeDefaults, named "default" by convention.
func (f GlobalDefaultsFile) toConfiguration() cache.Configuration {
	return cache.Configuration{
		Name:              "default",
		MaxSize:           f.MaxSize,
		DefaultTTL:        f.DefaultTTL,
		MaxIdle:           f.MaxIdle,
		ExpireAfterWrite:  f.ExpireAfterWrite,
		ExpireAfterAccess: f.ExpireAfterAccess,
		RefreshAfterWrite: f.RefreshAfterWrite,
		RecordStats:       f.RecordStats,
		AllowNullValues:   f.AllowNullValues,
		EvictionPolicy:    f.EvictionPolicy,
		ConcurrencyLevel:  f.ConcurrencyLevel,
		WeakKeys:          f.WeakKeys,
		WeakValues:        f.WeakValues,
		SoftValues:        f.SoftValues,
	}
}

var globalDefaultsValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadGlobalDefaults reads and validates a YAML global-defaults document
// at path, returning the Configuration a Manager can use as its
// globalDefaults.
func LoadGlobalDefaults(path string) (cache.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cache.Configuration{}, fmt.Errorf("manager: read global defaults %s: %w", path, err)
	}
	var f GlobalDefaultsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cache.Configuration{}, fmt.Errorf("manager: %w: parse global defaults %s: %v", cache.ErrInvalidConfig, path, err)
	}
	if err := globalDefaultsValidator.Struct(f); err != nil {
		return cache.Configuration{}, fmt.Errorf("manager: %w: %v", cache.ErrInvalidConfig, err)
	}
	return f.toConfiguration(), nil
}

// ConfigWatcher reloads a Manager's global defaults whenever the backing
// YAML file changes on disk. Caches already acquired are unaffected —
// defaults only apply at acquisition time, so a reload only changes what
// future Get("default", ...) calls inherit.
type ConfigWatcher struct {
	watcher *fsnotify.Watcher
	log     *zap.Logger
	done    chan struct{}
	wg      sync.WaitGroup
}

// WatchGlobalDefaults loads path once to seed m's defaults, then watches
// it for writes and reloads on every one, logging (and ignoring) a reload
// that fails validation so a bad edit never tears down the manager.
func WatchGlobalDefaults[K comparable, V any](m *Manager[K, V], path string, log *zap.Logger) (*ConfigWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cfg, err := LoadGlobalDefaults(path)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.defaults = cfg
	m.mu.Unlock()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("manager: config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("manager: config watcher: %w", err)
	}

	reload := func() {
		newCfg, err := LoadGlobalDefaults(path)
		if err != nil {
			log.Warn("manager.config_reload_failed", zap.String("path", path), zap.Error(err))
			return
		}
		m.mu.Lock()
		m.defaults = newCfg
		m.mu.Unlock()
		log.Info("manager.config_reloaded", zap.String("path", path))
	}

	cw := &ConfigWatcher{watcher: w, log: log, done: make(chan struct{})}
	cw.wg.Add(1)
	go cw.run(path, reload)
	return cw, nil
}

func (cw *ConfigWatcher) run(path string, reload func()) {
	defer cw.wg.Done()
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != path || (event.Op&(fsnotify.Write|fsnotify.Create) == 0) {
				continue
			}
			reload()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warn("manager.config_watcher.error", zap.Error(err))
		case <-cw.done:
			return
		}
	}
}

// Close stops the watcher goroutine and releases the underlying fsnotify
// watcher.
func (cw *ConfigWatcher) Close() error {
	close(cw.done)
	err := cw.watcher.Close()
	cw.wg.Wait()
	return err
}
