package toolkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandResolve(t *testing.T) {
	t.Run("bootstrap is unparameterized", func(t *testing.T) {
		got, err := Bootstrap().Resolve()
		require.NoError(t, err)
		assert.Equal(t, "bootstrap", got)
	})

	t.Run("diff is unparameterized", func(t *testing.T) {
		got, err := Diff().Resolve()
		require.NoError(t, err)
		assert.Equal(t, "diff", got)
	})

	t.Run("deploy includes the stage tag", func(t *testing.T) {
		got, err := Deploy("network-vpc").Resolve()
		require.NoError(t, err)
		assert.Equal(t, "deploy --stage network-vpc", got)
	})

	t.Run("deploy without a stage tag fails", func(t *testing.T) {
		_, err := Deploy("").Resolve()
		assert.ErrorIs(t, err, ErrMissingStageTag)
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var c Command
		_, err := c.Resolve()
		assert.ErrorContains(t, err, "unknown toolkit command verb")
	})
}

func TestCommandEnv(t *testing.T) {
	t.Run("stage tag is exported when present", func(t *testing.T) {
		env, err := Deploy("logging").Env()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			EnvCommand: "deploy --stage logging",
			EnvStage:   "logging",
		}, env)
	})

	t.Run("no stage key for unparameterized commands", func(t *testing.T) {
		env, err := Bootstrap().Env()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{EnvCommand: "bootstrap"}, env)
		assert.NotContains(t, env, EnvStage)
	})

	t.Run("resolution errors propagate", func(t *testing.T) {
		_, err := Deploy("").Env()
		assert.ErrorIs(t, err, ErrMissingStageTag)
	})
}

func TestStageTag(t *testing.T) {
	tag, ok := Deploy("accounts").StageTag()
	assert.True(t, ok)
	assert.Equal(t, "accounts", tag)

	_, ok = Diff().StageTag()
	assert.False(t, ok)
}
