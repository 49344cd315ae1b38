package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("invalid input"), false},
		{"marked", MarkTransient(errors.New("x")), true},
		{"marked and wrapped", fmt.Errorf("connect: %w", MarkTransient(errors.New("x"))), true},
		{"net timeout", timeoutErr{}, true},
		{"conn refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"conn reset", syscall.ECONNRESET, true},
		{"pg connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"pg cannot connect now", &pgconn.PgError{Code: "57P03"}, true},
		{"pg too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"pg auth failure", &pgconn.PgError{Code: "28P01"}, false},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"message pattern", errors.New("read tcp: i/o timeout"), true},
		{"salesforce limit", errors.New("REQUEST_LIMIT_EXCEEDED: TotalRequests Limit exceeded"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransient_ThroughEris(t *testing.T) {
	err := eris.Wrap(MarkTransient(errors.New("busy")), "store: connect")
	assert.True(t, IsTransient(err))
}

func TestMarkTransient_Nil(t *testing.T) {
	assert.NoError(t, MarkTransient(nil))
}

func TestMarkTransient_Unwraps(t *testing.T) {
	base := errors.New("base")
	assert.ErrorIs(t, MarkTransient(base), base)
	assert.Equal(t, "base", MarkTransient(base).Error())
}
