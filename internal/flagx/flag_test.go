package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	args := []string{"-d", "/data", "-x", "other", "-l", "debug"}
	got := FilterArgs(args, []string{"-d", "-l"})
	assert.Equal(t, []string{"-d", "/data", "-l", "debug"}, got)
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	args := []string{"--config=conf.json", "--other=1"}
	got := FilterArgs(args, []string{"--config"})
	assert.Equal(t, []string{"--config=conf.json"}, got)
}

func TestFilterArgs_FlagFollowedByFlag(t *testing.T) {
	args := []string{"-d", "-l", "debug"}
	got := FilterArgs(args, []string{"-d", "-l"})
	assert.Equal(t, []string{"-d", "-l", "debug"}, got)
}

func TestFilterArgs_NoneAllowed(t *testing.T) {
	got := FilterArgs([]string{"-a", "1"}, nil)
	assert.Empty(t, got)
}
