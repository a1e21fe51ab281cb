package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xela07ax/taskhub/internal/domain"
	"github.com/xela07ax/taskhub/internal/infra"
	"github.com/xela07ax/taskhub/internal/infra/auth"
	"github.com/xela07ax/taskhub/internal/repository/memory"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// countingHasher — настоящий bcrypt с минимальной стоимостью и счетчиком проверок
type countingHasher struct {
	*auth.BcryptHasher
	verifies atomic.Int32
}

func newHasher() *countingHasher {
	return &countingHasher{BcryptHasher: auth.NewBcryptHasher(bcrypt.MinCost)}
}

func (h *countingHasher) Verify(plaintext, digest string) (bool, error) {
	h.verifies.Add(1)
	return h.BcryptHasher.Verify(plaintext, digest)
}

type issued struct {
	subject string
	groups  []string
}

type fakeIssuer struct {
	mu     sync.Mutex
	issued []issued
}

func (f *fakeIssuer) Issue(subject string, groups []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, issued{subject: subject, groups: append([]string(nil), groups...)})
	return "token-for-" + subject, nil
}

func (f *fakeIssuer) last() issued {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issued[len(f.issued)-1]
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (n *recordingNotifier) Publish(_ context.Context, userID, event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

// faultyStore отказывает в одной выбранной операции, в том числе внутри транзакции
type faultyStore struct {
	domain.Store
	failOn string
	err    error
}

func (f *faultyStore) Users() domain.UserRepository {
	return &faultyUsers{UserRepository: f.Store.Users(), f: f}
}

func (f *faultyStore) Projects() domain.ProjectRepository {
	return &faultyProjects{ProjectRepository: f.Store.Projects(), f: f}
}

func (f *faultyStore) Tasks() domain.TaskRepository {
	return &faultyTasks{TaskRepository: f.Store.Tasks(), f: f}
}

func (f *faultyStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) error {
	return f.Store.WithTx(ctx, func(ctx context.Context, tx domain.Store) error {
		return fn(ctx, &faultyStore{Store: tx, failOn: f.failOn, err: f.err})
	})
}

type faultyUsers struct {
	domain.UserRepository
	f *faultyStore
}

func (u *faultyUsers) FindByName(ctx context.Context, name string) (*domain.User, error) {
	if u.f.failOn == "users.FindByName" {
		return nil, u.f.err
	}
	return u.UserRepository.FindByName(ctx, name)
}

func (u *faultyUsers) Delete(ctx context.Context, id string) error {
	if u.f.failOn == "users.Delete" {
		return u.f.err
	}
	return u.UserRepository.Delete(ctx, id)
}

type faultyProjects struct {
	domain.ProjectRepository
	f *faultyStore
}

func (p *faultyProjects) DeleteOwnedBy(ctx context.Context, userID string) (int64, error) {
	if p.f.failOn == "projects.DeleteOwnedBy" {
		return 0, p.f.err
	}
	return p.ProjectRepository.DeleteOwnedBy(ctx, userID)
}

type faultyTasks struct {
	domain.TaskRepository
	f *faultyStore
}

func (t *faultyTasks) DeleteOwnedBy(ctx context.Context, userID string) (int64, error) {
	if t.f.failOn == "tasks.DeleteOwnedBy" {
		return 0, t.f.err
	}
	return t.TaskRepository.DeleteOwnedBy(ctx, userID)
}

var errDiskGone = errors.New("disk gone")

type fixture struct {
	store    *memory.Store
	hasher   *countingHasher
	issuer   *fakeIssuer
	notifier *recordingNotifier
	users    *UserService
	auth     *AuthService
	projects *ProjectService
	tasks    *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.New(),
		hasher:   newHasher(),
		issuer:   &fakeIssuer{},
		notifier: &recordingNotifier{},
	}
	metrics := infra.NewMetrics(nil)
	log := zap.NewNop()

	f.users = NewUserService(f.store, f.hasher, f.notifier, metrics, log)
	a, err := NewAuthService(f.store, f.hasher, f.issuer, metrics, log)
	require.NoError(t, err)
	f.auth = a
	f.projects = NewProjectService(f.store, log)
	f.tasks = NewTaskService(f.store, log)
	return f
}

func (f *fixture) createUser(t *testing.T, name, password string, roles ...string) *domain.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), domain.UserInput{Name: name, Password: &password, Roles: roles})
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }
