/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package starconfig

import (
	"sync"
	"time"
)

// configCache is a TTL'd in-memory cache of the last decoded Config,
// deep-copying on both set and get so a caller's mutation of its copy
// never reaches the cached value or a later reader's copy.
type configCache struct {
	mu       sync.RWMutex
	cfg      *Config
	cachedAt time.Time
	ttl      time.Duration
}

func newConfigCache(ttl time.Duration) *configCache {
	return &configCache{ttl: ttl}
}

func (c *configCache) get() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cfg == nil || time.Since(c.cachedAt) > c.ttl {
		return nil
	}
	return c.cfg.clone()
}

func (c *configCache) set(cfg *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg = cfg.clone()
	c.cachedAt = time.Now()
}

func (c *configCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg = nil
	c.cachedAt = time.Time{}
}
