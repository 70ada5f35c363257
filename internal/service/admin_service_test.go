package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/domain"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

type fakeBranchRepo struct {
	branches map[int64]*domain.Branch
}

func (r *fakeBranchRepo) GetByID(_ context.Context, id int64) (*domain.Branch, error) {
	branch, ok := r.branches[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return branch, nil
}

func (r *fakeBranchRepo) List(_ context.Context) ([]domain.Branch, error) {
	var out []domain.Branch
	for _, branch := range r.branches {
		out = append(out, *branch)
	}
	return out, nil
}

type adminFixture struct {
	service     *AdminService
	users       *fakeUserRepo
	credentials *fakeCredentialRepo
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{users: newFakeUserRepo(), credentials: newFakeCredentialRepo()}
	f.service = NewAdminService(testAuthConfig(), AdminDependencies{
		UserRepo:       f.users,
		CredentialRepo: f.credentials,
		DepartmentRepo: &fakeDepartmentRepo{departments: map[int64]*domain.Department{1: {ID: 1, Name: "TI"}}},
		BranchRepo:     &fakeBranchRepo{branches: map[int64]*domain.Branch{1: {ID: 1, Name: "Matriz"}}},
		Logger:         zap.NewNop(),
	})
	return f
}

func validCreateInput() CreateUserInput {
	return CreateUserInput{
		Name:         "João Pereira",
		Username:     "  Joao.Pereira ",
		Password:     "provisoria1",
		Role:         domain.RoleAgent,
		DepartmentID: 1,
		BranchID:     1,
	}
}

func TestCreateUserProvisionsCredentialAndUser(t *testing.T) {
	f := newAdminFixture(t)

	user, err := f.service.CreateUser(context.Background(), validCreateInput())
	require.NoError(t, err)
	assert.Equal(t, "joao.pereira", user.Username, "username normalized on creation")
	require.NotNil(t, user.CredentialID)
	assert.True(t, user.Active)

	cred, err := f.credentials.GetByID(context.Background(), *user.CredentialID)
	require.NoError(t, err)
	assert.Equal(t, "joao.pereira", cred.Username)
	assert.True(t, cred.MustChangePassword, "first login must rotate the provisional password")
	assert.NoError(t, auth.VerifyPassword(cred.PasswordHash, "provisoria1"))
}

func TestCreateUserRollsBackCredentialWhenUserInsertFails(t *testing.T) {
	f := newAdminFixture(t)
	f.users.failCreate = true

	_, err := f.service.CreateUser(context.Background(), validCreateInput())
	require.Error(t, err)
	assert.Empty(t, f.credentials.credentials, "orphan credential removed by compensation")
	assert.Empty(t, f.users.users)
}

func TestCreateUserRollsBackBothWhenLinkFails(t *testing.T) {
	f := newAdminFixture(t)
	f.users.failUpdate = true

	_, err := f.service.CreateUser(context.Background(), validCreateInput())
	require.Error(t, err)
	assert.Empty(t, f.credentials.credentials)
	assert.Empty(t, f.users.users, "user row removed by compensation")
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.service.CreateUser(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = f.service.CreateUser(context.Background(), validCreateInput())
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestCreateUserValidation(t *testing.T) {
	f := newAdminFixture(t)

	input := validCreateInput()
	input.Password = "curta"
	_, err := f.service.CreateUser(context.Background(), input)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	input = validCreateInput()
	input.Role = domain.Role("GERENTE")
	_, err = f.service.CreateUser(context.Background(), input)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	input = validCreateInput()
	input.DepartmentID = 42
	_, err = f.service.CreateUser(context.Background(), input)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestDeleteUserRemovesCredential(t *testing.T) {
	f := newAdminFixture(t)
	user, err := f.service.CreateUser(context.Background(), validCreateInput())
	require.NoError(t, err)

	result, err := f.service.DeleteUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	assert.Empty(t, f.users.users)
	assert.Empty(t, f.credentials.credentials)
}

func TestDeleteUserMissing(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.service.DeleteUser(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestResetPasswordForcesChange(t *testing.T) {
	f := newAdminFixture(t)
	user, err := f.service.CreateUser(context.Background(), validCreateInput())
	require.NoError(t, err)
	// Simulate the user having already rotated their password.
	require.NoError(t, f.credentials.UpdatePassword(context.Background(), *user.CredentialID, "old-hash", false))

	require.NoError(t, f.service.ResetPassword(context.Background(), user.ID, "redefinida9"))

	cred, err := f.credentials.GetByID(context.Background(), *user.CredentialID)
	require.NoError(t, err)
	assert.True(t, cred.MustChangePassword)
	assert.NoError(t, auth.VerifyPassword(cred.PasswordHash, "redefinida9"))
}

func TestNormalizeUsernameKeepsBothInSync(t *testing.T) {
	f := newAdminFixture(t)
	user, err := f.service.CreateUser(context.Background(), validCreateInput())
	require.NoError(t, err)

	updated, err := f.service.NormalizeUsername(context.Background(), user.ID, "  J.Pereira ")
	require.NoError(t, err)
	assert.Equal(t, "j.pereira", updated.Username)

	cred, err := f.credentials.GetByID(context.Background(), *user.CredentialID)
	require.NoError(t, err)
	assert.Equal(t, "j.pereira", cred.Username)
}

func TestNormalizeUsernameRevertsCredentialOnUserFailure(t *testing.T) {
	f := newAdminFixture(t)
	user, err := f.service.CreateUser(context.Background(), validCreateInput())
	require.NoError(t, err)
	f.users.failUpdateUsername = true

	_, err = f.service.NormalizeUsername(context.Background(), user.ID, "novo.nome")
	require.Error(t, err)

	cred, err := f.credentials.GetByID(context.Background(), *user.CredentialID)
	require.NoError(t, err)
	assert.Equal(t, "joao.pereira", cred.Username, "credential reverted to the previous username")
}

func TestNormalizeUsernameRejectsTakenName(t *testing.T) {
	f := newAdminFixture(t)
	first, err := f.service.CreateUser(context.Background(), validCreateInput())
	require.NoError(t, err)

	other := validCreateInput()
	other.Username = "outra.pessoa"
	_, err = f.service.CreateUser(context.Background(), other)
	require.NoError(t, err)

	_, err = f.service.NormalizeUsername(context.Background(), first.ID, "Outra.Pessoa")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}
