package env

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/stake-server/pkg/config"
)

func TestConfigDoesntExist(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"
	os.Setenv(env, "default")

	v, err := NewConfig(env).Get(context.Background())
	assert.Equal(t, []byte("default"), v)
	assert.Nil(t, err)

	os.Unsetenv(env)

	v, err = NewConfig(env).Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	const env = "ENV_CONFIG_TEST_TYPED_VAR"

	os.Setenv(env, "42")
	assert.EqualValues(t, 42, NewUint64Config(env, 7).Get(context.Background()))

	os.Setenv(env, "true")
	assert.True(t, NewBoolConfig(env, false).Get(context.Background()))

	os.Unsetenv(env)
	assert.EqualValues(t, 7, NewUint64Config(env, 7).Get(context.Background()))
	assert.False(t, NewBoolConfig(env, false).Get(context.Background()))
}
