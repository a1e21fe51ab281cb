package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoles(t *testing.T) {
	got := NormalizeRoles([]string{"user", " admin", "user", "admin"})
	assert.Equal(t, []string{"admin", "user"}, got)

	assert.Empty(t, NormalizeRoles(nil))
}

func TestUserInput_Validate(t *testing.T) {
	in := &UserInput{Name: "  alice  ", Roles: []string{"user"}}
	require.NoError(t, in.Validate())
	assert.Equal(t, "alice", in.Name)

	err := (&UserInput{Name: "   "}).Validate()
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = (&UserInput{Name: "bob", Roles: []string{"user", ""}}).Validate()
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestPrincipal_HasRole(t *testing.T) {
	p := Principal{Name: "admin", Groups: []string{"admin", "user"}}
	assert.True(t, p.HasRole(RoleAdmin))
	assert.False(t, Principal{Name: "u", Groups: []string{"user"}}.HasRole(RoleAdmin))
}

func TestClone_DoesNotShareState(t *testing.T) {
	u := User{Roles: []string{"user"}}
	c := u.Clone()
	c.Roles[0] = "admin"
	assert.Equal(t, "user", u.Roles[0])

	pid := "p1"
	task := Task{ProjectID: &pid}
	tc := task.Clone()
	*tc.ProjectID = "p2"
	assert.Equal(t, "p1", *task.ProjectID)
}
