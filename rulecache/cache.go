// Copyright 2024 The RuleKit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rulecache implements the parsed-AST cache (spec.md §4.2 "A parsed
// AST may be cached, keyed by a content digest of the rule text; cache
// eviction is LRU with a TTL", §5 "Parsed-AST cache: shared, read-mostly").
// Entries are immutable rule.Document values, so a cache hit never needs to
// copy the value it returns.
package rulecache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rulekit/ruleengine/rule"
)

// Digest returns the content-digest cache key for a rule text.
func Digest(ruleText string) string {
	sum := sha256.Sum256([]byte(ruleText))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	key      string
	doc      *rule.Document
	expireAt time.Time
}

// Cache is an LRU cache of parsed rule.Documents with a per-entry TTL.
// Writes use insert-on-miss with last-writer-wins: two concurrent misses
// for the same key both parse, and whichever Put runs last simply
// overwrites the other, which is safe because a rule.Document is immutable
// and idempotent for a given content digest (spec.md §5).
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
}

// New builds a Cache holding at most capacity entries, each valid for ttl
// after insertion. now defaults to time.Now; tests may override it.
func New(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached Document for key, or (nil, false) on a miss or an
// expired entry. A hit moves the entry to the front of the LRU order.
func (c *Cache) Get(key string) (*rule.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expireAt) {
		c.order.Remove(el)
		delete(c.items, key)
		return nil, false
	}
	c.order.MoveToFront(el)
	return e.doc, true
}

// Put inserts or replaces the entry for key, resetting its TTL and moving
// it to the front of the LRU order. If the cache is over capacity after the
// insert, the least-recently-used entry is evicted.
func (c *Cache) Put(key string, doc *rule.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).doc = doc
		el.Value.(*entry).expireAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&entry{key: key, doc: doc, expireAt: c.now().Add(c.ttl)})
	c.items[key] = el

	for c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// Len reports the number of entries currently cached, including any not
// yet lazily expired by a Get.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
