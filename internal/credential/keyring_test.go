package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStoreWithKeyring(keyring.NewArrayKeyring(nil))

	_, err := store.Get(JiraTokenKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(JiraTokenKey, "secret-token"))

	token, err := store.Get(JiraTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", token)

	require.NoError(t, store.Delete(JiraTokenKey))

	_, err = store.Get(JiraTokenKey)
	assert.ErrorIs(t, err, ErrNotFound)
}
