// SPDX-License-Identifier: MIT
package types

import (
	"sync"
)

type (
	// SafeCounter is a thread-safe counter, shared by concurrent evaluations.
	SafeCounter struct {
		m   sync.Mutex
		val int
	}
)

// Inc increments the counter, returning the updated value.
func (c *SafeCounter) Inc() int {
	c.m.Lock()
	defer c.m.Unlock()
	c.val++

	return c.val
}

// Value returns the current value of the counter.
func (c *SafeCounter) Value() int {
	c.m.Lock()
	defer c.m.Unlock()

	return c.val
}
