package feature

import (
	"slices"
	"time"
)

// FeatureVector represents the login attempts of one source (IP)
type FeatureVector struct {
	IP            string
	Attempts      []time.Time
	FailedLogins  int
	SuccessLogins int
	DistinctUsers map[string]bool
	FirstSeen     time.Time
	LastSeen      time.Time
	sorted        bool
}

// History groups login attempts by source for one analysis run.
// Sources keep the order in which they were first added. Not safe for concurrent use.
type History struct {
	features map[string]*FeatureVector
	order    []string
}

const (
	MaxUsersPerIP = 50
)

// NewHistory creates an empty attempt history
func NewHistory() *History {
	return &History{
		features: make(map[string]*FeatureVector),
	}
}

// AddAttempt records one login attempt. Identical timestamps count separately.
func (h *History) AddAttempt(ip, user string, ts time.Time, success bool) *FeatureVector {
	feat, exists := h.features[ip]
	if !exists {
		feat = &FeatureVector{
			IP:            ip,
			DistinctUsers: make(map[string]bool),
			FirstSeen:     ts,
			LastSeen:      ts,
		}
		h.features[ip] = feat
		h.order = append(h.order, ip)
	}

	feat.Attempts = append(feat.Attempts, ts)
	feat.sorted = false
	if success {
		feat.SuccessLogins++
	} else {
		feat.FailedLogins++
	}

	if user != "" && len(feat.DistinctUsers) < MaxUsersPerIP {
		feat.DistinctUsers[user] = true
	}

	if ts.Before(feat.FirstSeen) {
		feat.FirstSeen = ts
	}
	if ts.After(feat.LastSeen) {
		feat.LastSeen = ts
	}

	return feat
}

// Sort puts every source's attempts in chronological order
func (h *History) Sort() {
	for _, feat := range h.features {
		if !feat.sorted {
			slices.SortFunc(feat.Attempts, time.Time.Compare)
			feat.sorted = true
		}
	}
}

// GetFeatures returns the feature vector for an IP, nil when unseen
func (h *History) GetFeatures(ip string) *FeatureVector {
	return h.features[ip]
}

// Sources returns the IPs in first-seen order
func (h *History) Sources() []string {
	return slices.Clone(h.order)
}

// Len returns the number of distinct sources
func (h *History) Len() int {
	return len(h.features)
}

// Total returns the number of recorded attempts across all sources
func (h *History) Total() int {
	n := 0
	for _, feat := range h.features {
		n += len(feat.Attempts)
	}
	return n
}

// Sorted reports whether the attempts of a source are in chronological order
func (v *FeatureVector) Sorted() bool {
	return v.sorted || slices.IsSortedFunc(v.Attempts, time.Time.Compare)
}
