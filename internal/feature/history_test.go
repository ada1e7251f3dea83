package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestHistory_AddAttempt(t *testing.T) {
	h := NewHistory()

	feat := h.AddAttempt("192.168.1.1", "admin", base, false)

	assert.Equal(t, "192.168.1.1", feat.IP)
	assert.Equal(t, 1, feat.FailedLogins)
	assert.Equal(t, 0, feat.SuccessLogins)
	assert.True(t, feat.DistinctUsers["admin"])
	assert.Equal(t, []time.Time{base}, feat.Attempts)
}

func TestHistory_AddAttempt_Multiple(t *testing.T) {
	h := NewHistory()

	h.AddAttempt("10.0.0.1", "user1", base.Add(2*time.Second), false)
	h.AddAttempt("10.0.0.1", "user2", base, true)
	feat := h.AddAttempt("10.0.0.1", "user3", base.Add(time.Second), false)

	assert.Len(t, feat.Attempts, 3)
	assert.Equal(t, 2, feat.FailedLogins)
	assert.Equal(t, 1, feat.SuccessLogins)
	assert.Len(t, feat.DistinctUsers, 3)
	assert.Equal(t, base, feat.FirstSeen)
	assert.Equal(t, base.Add(2*time.Second), feat.LastSeen)
}

func TestHistory_DuplicateTimestampsCountSeparately(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 3; i++ {
		h.AddAttempt("1.2.3.4", "root", base, false)
	}

	assert.Len(t, h.GetFeatures("1.2.3.4").Attempts, 3)
	assert.Equal(t, 3, h.Total())
}

func TestHistory_Sort(t *testing.T) {
	h := NewHistory()
	h.AddAttempt("1.1.1.1", "", base.Add(3*time.Minute), false)
	h.AddAttempt("1.1.1.1", "", base, false)
	h.AddAttempt("1.1.1.1", "", base.Add(time.Minute), false)

	feat := h.GetFeatures("1.1.1.1")
	require.False(t, feat.Sorted())

	h.Sort()

	assert.True(t, feat.Sorted())
	assert.Equal(t, []time.Time{base, base.Add(time.Minute), base.Add(3 * time.Minute)}, feat.Attempts)
}

func TestHistory_SourcesKeepFirstSeenOrder(t *testing.T) {
	h := NewHistory()
	h.AddAttempt("2.2.2.2", "", base, false)
	h.AddAttempt("1.1.1.1", "", base, false)
	h.AddAttempt("2.2.2.2", "", base, false)
	h.AddAttempt("3.3.3.3", "", base, false)

	assert.Equal(t, []string{"2.2.2.2", "1.1.1.1", "3.3.3.3"}, h.Sources())
	assert.Equal(t, 3, h.Len())
	assert.Nil(t, h.GetFeatures("9.9.9.9"))
}

func TestHistory_DistinctUsersCapped(t *testing.T) {
	h := NewHistory()
	for i := 0; i < MaxUsersPerIP+10; i++ {
		h.AddAttempt("1.2.3.4", string(rune('A'+i)), base, false)
	}

	feat := h.GetFeatures("1.2.3.4")
	assert.Len(t, feat.DistinctUsers, MaxUsersPerIP)
	assert.Equal(t, MaxUsersPerIP+10, feat.FailedLogins)
}
