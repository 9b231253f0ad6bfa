package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/config"
)

func TestApplicationConfig_Durations(t *testing.T) {
	cfg := config.ApplicationConfig{
		RecognizerTimeout: 120,
		DemoDelay:         1500,
	}

	assert.Equal(t, 2*time.Minute, cfg.RecognizerTimeoutDuration())
	assert.Equal(t, 1500*time.Millisecond, cfg.DemoDelayDuration())
}

func TestServerConfig(t *testing.T) {
	cfg := config.ServerConfig{
		Port:         3377,
		ReadTimeout:  30,
		WriteTimeout: 300,
	}

	assert.Equal(t, ":3377", cfg.Address())
	assert.Equal(t, 30*time.Second, cfg.ReadTimeoutDuration())
	assert.Equal(t, 5*time.Minute, cfg.WriteTimeoutDuration())
}
