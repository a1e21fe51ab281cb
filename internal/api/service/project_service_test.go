package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/taskhub/internal/domain"
)

func TestProjects_ScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "alice", "secret", domain.RoleUser)
	f.createUser(t, "bob", "secret", domain.RoleUser)

	p, err := f.projects.Create(ctx, "alice", domain.ProjectInput{Name: "  Inbox "})
	require.NoError(t, err)
	assert.Equal(t, "Inbox", p.Name)

	list, err := f.projects.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)

	// Чужой проект выглядит как несуществующий
	_, err = f.projects.Get(ctx, "bob", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.projects.Update(ctx, "bob", p.ID, domain.ProjectInput{Name: "Stolen"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.projects.Delete(ctx, "bob", p.ID), domain.ErrNotFound)
}

func TestProjects_NameUniquePerOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "alice", "secret")
	f.createUser(t, "bob", "secret")

	_, err := f.projects.Create(ctx, "alice", domain.ProjectInput{Name: "Inbox"})
	require.NoError(t, err)
	_, err = f.projects.Create(ctx, "alice", domain.ProjectInput{Name: "Inbox"})
	assert.ErrorIs(t, err, domain.ErrNameTaken)
	_, err = f.projects.Create(ctx, "bob", domain.ProjectInput{Name: "Inbox"})
	assert.NoError(t, err)

	_, err = f.projects.Create(ctx, "alice", domain.ProjectInput{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProjects_OptimisticVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "alice", "secret")

	p, err := f.projects.Create(ctx, "alice", domain.ProjectInput{Name: "A"})
	require.NoError(t, err)

	updated, err := f.projects.Update(ctx, "alice", p.ID, domain.ProjectInput{Name: "B", Version: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)

	_, err = f.projects.Update(ctx, "alice", p.ID, domain.ProjectInput{Name: "C", Version: 0})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestProjects_DeleteDetachesTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "alice", "secret")

	p, err := f.projects.Create(ctx, "alice", domain.ProjectInput{Name: "A"})
	require.NoError(t, err)
	task, err := f.tasks.Create(ctx, "alice", domain.TaskInput{Title: "t", ProjectID: &p.ID})
	require.NoError(t, err)

	require.NoError(t, f.projects.Delete(ctx, "alice", p.ID))

	got, err := f.tasks.Get(ctx, "alice", task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProjectID)
}
