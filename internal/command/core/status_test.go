package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h 30m"},
		{26 * time.Hour, "1d 2h"},
		{-time.Second, "0s"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, formatUptime(tc.d), tc.d.String())
	}
}
