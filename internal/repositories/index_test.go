package repositories_test

import (
	"testing"

	"usermgmt/internal/models"
	"usermgmt/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestUserIndex_InsertionOrder(t *testing.T) {
	ix := repositories.NewUserIndex()
	ix.Put(models.User{ID: "c", Email: "c@gmail.com"})
	ix.Put(models.User{ID: "a", Email: "a@gmail.com"})
	ix.Put(models.User{ID: "b", Email: "b@gmail.com"})
	assert.Equal(t, []string{"c", "a", "b"}, ids(ix.All()))

	ix.Put(models.User{ID: "a", Email: "a2@gmail.com"})
	assert.Equal(t, []string{"c", "a", "b"}, ids(ix.All()))
	assert.Equal(t, 3, ix.Len())
}

func TestUserIndex_FindByEmail(t *testing.T) {
	ix := indexOf(sampleUsers()...)

	u, ok := ix.FindByEmail("adam@hotmail.com")
	require.True(t, ok)
	assert.Equal(t, "Adam Smith", u.FullName)

	_, ok = ix.FindByEmail("ADAM@hotmail.com")
	assert.False(t, ok)
}

func TestUserIndex_DeleteAndRestore(t *testing.T) {
	ix := repositories.NewUserIndex()
	for _, id := range []string{"a", "b", "c"} {
		ix.Put(models.User{ID: id})
	}

	removed, pos, ok := ix.Delete("b")
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, []string{"a", "c"}, ids(ix.All()))
	_, found := ix.Get("b")
	assert.False(t, found)

	_, _, ok = ix.Delete("b")
	assert.False(t, ok)

	ix.Restore(pos, removed)
	assert.Equal(t, []string{"a", "b", "c"}, ids(ix.All()))

	ix.Restore(99, models.User{ID: "d"})
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(ix.All()))
}
