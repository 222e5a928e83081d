package entity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEntityRepository struct {
	mock.Mock
}

func (m *mockEntityRepository) EnsureEntity(ctx context.Context, entityID string) error {
	args := m.Called(ctx, entityID)
	return args.Error(0)
}

func (m *mockEntityRepository) EntityExists(ctx context.Context, entityID string) (bool, error) {
	args := m.Called(ctx, entityID)
	return args.Bool(0), args.Error(1)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "hex address lowercased",
			input: "0xAbCdEf1234567890aBcDeF1234567890ABCDef12",
			want:  "0xabcdef1234567890abcdef1234567890abcdef12",
		},
		{
			name:  "hex address with uppercase prefix",
			input: "0XABCDEF1234567890ABCDEF1234567890ABCDEF12",
			want:  "0xabcdef1234567890abcdef1234567890abcdef12",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  0xabcdef1234567890abcdef1234567890abcdef12\n",
			want:  "0xabcdef1234567890abcdef1234567890abcdef12",
		},
		{
			name:  "account identifier passes through",
			input: "exchange-7:acct_991",
			want:  "exchange-7:acct_991",
		},
		{
			name:    "hex address too short",
			input:   "0xabcdef",
			wantErr: true,
		},
		{
			name:    "hex address with non-hex characters",
			input:   "0xzzcdef1234567890abcdef1234567890abcdef12",
			wantErr: true,
		},
		{
			name:    "empty identifier",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "account identifier too short",
			input:   "ab",
			wantErr: true,
		},
		{
			name:    "account identifier too long",
			input:   strings.Repeat("a", 129),
			wantErr: true,
		},
		{
			name:    "account identifier with forbidden characters",
			input:   "acct/991",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEntityFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureNormalizesBeforePersisting(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEntityRepository)
	registry := NewRegistry(repo)

	repo.On("EnsureEntity", ctx, "0xabcdef1234567890abcdef1234567890abcdef12").Return(nil).Once()

	id, err := registry.Ensure(ctx, "0xABCDEF1234567890ABCDEF1234567890ABCDEF12")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef1234567890abcdef1234567890abcdef12", id)
	repo.AssertExpectations(t)
}

func TestEnsureRejectsMalformedWithoutTouchingRepo(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEntityRepository)
	registry := NewRegistry(repo)

	_, err := registry.Ensure(ctx, "0xnothex")
	assert.ErrorIs(t, err, ErrInvalidEntityFormat)
	repo.AssertNotCalled(t, "EnsureEntity", mock.Anything, mock.Anything)
}

func TestEnsurePropagatesRepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEntityRepository)
	registry := NewRegistry(repo)
	dbErr := errors.New("connection reset")

	repo.On("EnsureEntity", ctx, "exchange-7:acct_991").Return(dbErr).Once()

	_, err := registry.Ensure(ctx, "exchange-7:acct_991")
	assert.ErrorIs(t, err, dbErr)
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEntityRepository)
	registry := NewRegistry(repo)

	repo.On("EntityExists", ctx, "exchange-7:acct_991").Return(true, nil).Once()

	exists, err := registry.Exists(ctx, "exchange-7:acct_991")
	require.NoError(t, err)
	assert.True(t, exists)
}
