package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"converted", "closed won", "lead"}, SplitList(" converted, closed won ,,lead,"))
	assert.Empty(t, SplitList(""))
	assert.Empty(t, SplitList(" , "))
}

func TestDefaultStatusLists(t *testing.T) {
	assert.Contains(t, SplitList(DefaultLeadStatuses), "closed_won")
	assert.Contains(t, SplitList(DefaultPendingStatuses), "in_progress")
	assert.Len(t, SplitList(DefaultPendingStatuses), 8)
}
