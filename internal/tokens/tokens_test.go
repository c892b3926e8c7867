package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *Codec {
	return &Codec{Secret: []byte("test-auth-secret")}
}

func TestCodec_IssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	cd := newTestCodec()
	token, err := cd.Issue(42, "alice", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := cd.Verify(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestCodec_Verify_Expired(t *testing.T) {
	t.Parallel()

	cd := &Codec{Secret: []byte("test-auth-secret"), TTL: -time.Minute}
	token, err := cd.Issue(1, "alice", false)
	require.NoError(t, err)

	claims, err := cd.Verify(token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodec_Verify_Tampered(t *testing.T) {
	t.Parallel()

	cd := newTestCodec()
	token, err := cd.Issue(1, "alice", false)
	require.NoError(t, err)

	last := token[len(token)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := token[:len(token)-1] + string(flipped)

	claims, err := cd.Verify(tampered)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCodec_Verify_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := newTestCodec().Issue(1, "alice", false)
	require.NoError(t, err)

	other := &Codec{Secret: []byte("a-different-secret")}
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCodec_Verify_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "garbage", raw: "not-a-jwt"},
		{name: "wrong segments", raw: strings.Repeat("a.", 5)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newTestCodec().Verify(tt.raw)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestCodec_NoSecret(t *testing.T) {
	t.Parallel()

	cd := &Codec{}

	_, err := cd.Issue(1, "alice", false)
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = cd.Verify("anything")
	assert.ErrorIs(t, err, ErrNoSecret)
}
