package weather

import (
	"fmt"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
)

// forecastStep is a cached forecast entry without its absolute time, which is
// recomputed from the clock on every read.
type forecastStep struct {
	hoursAhead int
	weather    domain.WeatherType
	intensity  domain.WeatherIntensity
	confidence float64
}

func forecastKey(location string, hours int) string {
	return fmt.Sprintf("%s|%d", location, hours)
}

// forecastCache is an LRU of generated forecasts keyed by location and horizon.
// Repeated queries between mutations return the same sequence; the engine
// purges it on every mutation.
type forecastCache struct {
	maxEntries int
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []forecastStep
	prev  *entry
	next  *entry
}

func newForecastCache(maxEntries int) *forecastCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &forecastCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *forecastCache) get(key string) ([]forecastStep, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *forecastCache) put(key string, value []forecastStep) {
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *forecastCache) len() int { return len(c.entries) }

func (c *forecastCache) purge() {
	c.entries = make(map[string]*entry)
	c.head, c.tail = nil, nil
}

func (c *forecastCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *forecastCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *forecastCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *forecastCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
