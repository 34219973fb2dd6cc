package keygen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type user struct {
	ID   int
	Name string
}

func (u user) IdentityBytes() []byte {
	return []byte(u.Name)
}

func TestDefault_ByID(t *testing.T) {
	g := Default{}
	require.Equal(t, "id:null", g.ByID(nil))
	require.Equal(t, "id:42", g.ByID(42))
	require.Equal(t, "id:abc", g.ByID("abc"))
}

func TestDefault_ForItemIsDeterministic(t *testing.T) {
	g := Default{}
	u := user{ID: 1, Name: "ada"}

	k1 := g.ForItem(u, nil)
	k2 := g.ForItem(u, nil)
	require.Equal(t, k1, k2)
	require.Contains(t, k1, "keygen.user:")
}

func TestDefault_ForItemWithParamsDiffersFromWithout(t *testing.T) {
	g := Default{}
	u := user{ID: 1, Name: "ada"}

	withoutParams := g.ForItem(u, nil)
	withParams := g.ForItem(u, "page=2")

	require.NotEqual(t, withoutParams, withParams)
	require.Contains(t, withParams, ":params:")
}

func TestDefault_DifferentIdentitiesHashDifferently(t *testing.T) {
	g := Default{}
	a := g.ForItem(user{ID: 1, Name: "ada"}, nil)
	b := g.ForItem(user{ID: 2, Name: "grace"}, nil)
	require.NotEqual(t, a, b)
}
