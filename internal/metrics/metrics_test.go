package metrics

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordResponseQuality(t *testing.T) {
	s := NewStore()

	s.RecordResponseQuality("s1", false)
	s.RecordResponseQuality("s1", true)
	s.RecordResponseQuality("s1", true)

	m, ok := s.Session("s1")
	require.True(t, ok)
	assert.Equal(t, 3, m.TotalResponses)
	assert.Equal(t, 2, m.ResponsesWithDuplicates)
	assert.False(t, m.LastCleanAt.IsZero())
}

func TestDuplicateRate(t *testing.T) {
	s := NewStore()

	assert.Equal(t, 0.0, s.DuplicateRate("missing"))

	s.RecordResponseQuality("s1", true)
	s.RecordResponseQuality("s1", false)
	assert.Equal(t, 0.5, s.DuplicateRate("s1"))

	assert.True(t, s.ExceedsThreshold("s1", 0.5))
	assert.False(t, s.ExceedsThreshold("s1", 0.6))
}

func TestGlobalMatchesSessionSums(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	const sessions = 8
	const perSession = 50

	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < perSession; j++ {
				s.IncrementDuplicateDetected(id)
				s.RecordResponseQuality(id, j%2 == 0)
			}
		}(fmt.Sprintf("session-%d", i))
	}
	wg.Wait()

	global := s.Global()
	assert.Equal(t, sessions*perSession, global.TotalDuplicatesDetected)
	assert.Equal(t, sessions*perSession, global.TotalResponses)

	sumDuplicates, sumResponses := 0, 0
	for i := 0; i < sessions; i++ {
		m, ok := s.Session(fmt.Sprintf("session-%d", i))
		require.True(t, ok)
		sumDuplicates += m.TotalDuplicatesDetected
		sumResponses += m.TotalResponses
	}
	assert.Equal(t, global.TotalDuplicatesDetected, sumDuplicates)
	assert.Equal(t, global.TotalResponses, sumResponses)
}

func TestResetSession(t *testing.T) {
	s := NewStore()

	s.IncrementDuplicateDetected("s1")
	s.IncrementDuplicateDetected("s2")
	s.RecordResponseQuality("s1", true)

	s.ResetSession("s1")

	_, ok := s.Session("s1")
	assert.False(t, ok)

	global := s.Global()
	assert.Equal(t, 1, global.TotalDuplicatesDetected)
	assert.Equal(t, 0, global.TotalResponses)
}

func TestResetAll(t *testing.T) {
	s := NewStore()
	s.IncrementDuplicateDetected("s1")
	s.ResetAll()

	assert.Equal(t, SessionMetrics{}, s.Global())
}
