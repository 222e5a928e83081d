package redis

import (
	"context"
	"errors"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/chainwatchhq/chainwatch/pkg/config"
)

// ============== Redis Config Tests ==============

func TestRedisConfig_RedisAddr(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RedisConfig
		expected string
	}{
		{
			name: "default localhost",
			cfg: config.RedisConfig{
				Host: "localhost",
				Port: "6379",
			},
			expected: "localhost:6379",
		},
		{
			name: "custom host and port",
			cfg: config.RedisConfig{
				Host: "redis.example.com",
				Port: "6380",
			},
			expected: "redis.example.com:6380",
		},
		{
			name: "IP address",
			cfg: config.RedisConfig{
				Host: "192.168.1.100",
				Port: "6379",
			},
			expected: "192.168.1.100:6379",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.cfg.RedisAddr()
			if result != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, result)
			}
		})
	}
}

// ============== Redis Retryable Error Tests ==============

func TestIsRedisRetryable_NilError(t *testing.T) {
	if isRedisRetryable(nil) {
		t.Error("nil error should not be retryable")
	}
}

func TestIsRedisRetryable_ContextCanceled(t *testing.T) {
	if isRedisRetryable(context.Canceled) {
		t.Error("context.Canceled should not be retryable")
	}
}

func TestIsRedisRetryable_ContextDeadlineExceeded(t *testing.T) {
	if isRedisRetryable(context.DeadlineExceeded) {
		t.Error("context.DeadlineExceeded should not be retryable")
	}
}

func TestIsRedisRetryable_RedisNil(t *testing.T) {
	if isRedisRetryable(goredis.Nil) {
		t.Error("redis.Nil should not be retryable (expected behavior for key not found)")
	}
}

func TestIsRedisRetryable_ConnectionErrors(t *testing.T) {
	connectionErrors := []string{
		"connection refused",
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"temporary failure in name resolution",
		"i/o timeout",
		"server closed the connection",
		"unexpected eof",
		"pool timeout",
		"connection pool exhausted",
	}

	for _, msg := range connectionErrors {
		err := errors.New(msg)
		if !isRedisRetryable(err) {
			t.Errorf("connection error %q should be retryable", msg)
		}
	}
}

func TestIsRedisRetryable_ServerStateErrors(t *testing.T) {
	serverErrors := []string{
		"LOADING Redis is loading the dataset in memory",
		"BUSY Redis is busy running a script",
		"MASTERDOWN Link with MASTER is down",
		"READONLY You can't write against a read only replica",
	}

	for _, msg := range serverErrors {
		err := errors.New(msg)
		if !isRedisRetryable(err) {
			t.Errorf("server state error %q should be retryable", msg)
		}
	}
}

func TestIsRedisRetryable_ClusterErrors(t *testing.T) {
	clusterErrors := []string{
		"MOVED 3999 127.0.0.1:6381",
		"ASK 3999 127.0.0.1:6381",
		"TRYAGAIN Multiple keys request during rehashing",
		"CLUSTERDOWN The cluster is down",
	}

	for _, msg := range clusterErrors {
		err := errors.New(msg)
		if !isRedisRetryable(err) {
			t.Errorf("cluster error %q should be retryable", msg)
		}
	}
}

func TestIsRedisRetryable_CommandErrors_NotRetryable(t *testing.T) {
	commandErrors := []string{
		"WRONGTYPE Operation against a key holding the wrong kind of value",
		"ERR syntax error",
		"ERR invalid expire time in set",
		"NOAUTH Authentication required",
		"WRONGPASS invalid username-password pair",
		"NOPERM User doesn't have permissions to run this command",
		"ERR unknown command 'BADCMD'",
		"EXECABORT Transaction discarded because of previous errors",
	}

	for _, msg := range commandErrors {
		err := errors.New(msg)
		if isRedisRetryable(err) {
			t.Errorf("command error %q should NOT be retryable", msg)
		}
	}
}

func TestIsRedisRetryable_CaseSensitivity(t *testing.T) {
	// Error messages should be matched case-insensitively
	testCases := []struct {
		msg      string
		expected bool
	}{
		{"CONNECTION REFUSED", true},
		{"Connection Refused", true},
		{"TIMEOUT ERROR", true},
		{"Pool Timeout", true},
	}

	for _, tc := range testCases {
		err := errors.New(tc.msg)
		result := isRedisRetryable(err)
		if result != tc.expected {
			t.Errorf("isRedisRetryable(%q) = %v, expected %v", tc.msg, result, tc.expected)
		}
	}
}

func TestIsRedisRetryable_UnknownError_Retryable(t *testing.T) {
	// Unknown errors are retryable by default; Redis transport failures vary too much to enumerate
	err := errors.New("some completely unknown error message")
	if !isRedisRetryable(err) {
		t.Error("unknown error should be retryable by default")
	}
}
