package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachchat/internal/pkg/authtok"
)

func mintToken(t *testing.T, id, userType string) string {
	t.Helper()

	claims := &authtok.Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		ID:       id,
		UserType: userType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

func TestFromToken(t *testing.T) {
	t.Run("student", func(t *testing.T) {
		token := mintToken(t, "S1", "student")

		sess, err := FromToken(token)
		require.NoError(t, err)

		assert.Equal(t, token, sess.Token())
		assert.Equal(t, Identity{ID: "S1", Kind: KindStudent}, sess.Identity())
	})

	t.Run("trainer", func(t *testing.T) {
		sess, err := FromToken(mintToken(t, "T1", "trainer"))
		require.NoError(t, err)
		assert.Equal(t, KindTrainer, sess.Identity().Kind)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := FromToken("")
		require.Error(t, err)
	})

	t.Run("unknown user type", func(t *testing.T) {
		_, err := FromToken(mintToken(t, "A1", "admin"))
		require.Error(t, err)
	})
}

func TestNewProvidesExplicitIdentity(t *testing.T) {
	identity := Identity{ID: "S1", Kind: KindStudent}
	sess := New("opaque-token", identity)

	assert.Equal(t, "opaque-token", sess.Token())
	assert.Equal(t, identity, sess.Identity())
}
