// Package passwords tallies the credentials attempted against the honeypot.
package passwords

import (
	"sort"
)

// Entry is one password with the number of attempts that used it
type Entry struct {
	Password string `json:"password"`
	Count    int    `json:"count"`
}

// Counter counts passwords and remembers the order they first appeared in
type Counter struct {
	counts map[string]int
	order  []string
	total  int
}

// NewCounter creates an empty counter
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add records one attempt with the given password. The empty password is a value like any other.
func (c *Counter) Add(password string) {
	if _, seen := c.counts[password]; !seen {
		c.order = append(c.order, password)
	}
	c.counts[password]++
	c.total++
}

// Count returns how often a password was attempted
func (c *Counter) Count(password string) int {
	return c.counts[password]
}

// Total returns the number of recorded attempts
func (c *Counter) Total() int {
	return c.total
}

// Distinct returns the number of distinct passwords
func (c *Counter) Distinct() int {
	return len(c.order)
}

// Top returns the n most frequent passwords, most frequent first.
// Equal counts keep first-encountered order. n <= 0 returns every password.
func (c *Counter) Top(n int) []Entry {
	entries := make([]Entry, 0, len(c.order))
	for _, pw := range c.order {
		entries = append(entries, Entry{Password: pw, Count: c.counts[pw]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
