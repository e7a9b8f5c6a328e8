package services

import (
	"context"
	"testing"
	"time"

	"ambika-sandledger/internal/adapters/persistence/models"
	"ambika-sandledger/internal/core/domain"
	"ambika-sandledger/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfileOverwrites(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewUserService(userRepo)
	ctx := context.Background()
	user := seedUser(t, userRepo, "alice", "pass1234")

	updated, err := svc.UpdateProfile(ctx, user.ID, strPtr("Alice K"), strPtr("9876543210"))
	require.NoError(t, err)
	require.NotNil(t, updated.FullName)
	assert.Equal(t, "Alice K", *updated.FullName)

	// Omitted fields clear stored values; overwrite is unconditional.
	updated, err = svc.UpdateProfile(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.FullName)
	assert.Nil(t, updated.ContactNumber)
}

func TestUserService_UpdateProfileMissingUser(t *testing.T) {
	svc := NewUserService(newStubUserRepo())

	_, err := svc.UpdateProfile(context.Background(), 42, nil, nil)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_ChangeOwnPassword(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewUserService(userRepo)
	ctx := context.Background()
	user := seedUser(t, userRepo, "alice", "oldpass")

	cases := []struct {
		name     string
		current  string
		newPass  string
		confirm  string
		wantErr  error
	}{
		{"mismatched confirmation", "oldpass", "newpass", "different", domain.ErrInvalidArgument},
		{"too short", "oldpass", "abc", "abc", domain.ErrInvalidArgument},
		{"wrong current password", "wrong", "newpass1", "newpass1", domain.ErrInvalidCredentials},
		{"empty fields", "", "newpass1", "newpass1", domain.ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ChangeOwnPassword(ctx, user.ID, tc.current, tc.newPass, tc.confirm)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	require.NoError(t, svc.ChangeOwnPassword(ctx, user.ID, "oldpass", "newpass1", "newpass1"))

	stored, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, password.Verify("oldpass", stored.PasswordHash))
	assert.True(t, password.Verify("newpass1", stored.PasswordHash))
}

func TestUserService_ChangeOwnUsername(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewUserService(userRepo)
	ctx := context.Background()
	alice := seedUser(t, userRepo, "alice", "pass1234")
	seedUser(t, userRepo, "bob", "pass1234")

	_, err := svc.ChangeOwnUsername(ctx, alice.ID, "Master", "pass1234")
	assert.ErrorIs(t, err, domain.ErrReservedUsername)

	_, err = svc.ChangeOwnUsername(ctx, alice.ID, "bob", "pass1234")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = svc.ChangeOwnUsername(ctx, alice.ID, "alice", "pass1234")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.ChangeOwnUsername(ctx, alice.ID, "alicia", "wrongpass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	updated, err := svc.ChangeOwnUsername(ctx, alice.ID, "alicia", "pass1234")
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Username)

	stored, err := userRepo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", stored.Username)
}

func TestUserService_MasterCannotRenameItself(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewUserService(userRepo)
	master := seedUser(t, userRepo, "master", "masterpass")

	_, err := svc.ChangeOwnUsername(context.Background(), master.ID, "overlord", "masterpass")
	assert.ErrorIs(t, err, domain.ErrMasterImmutable)
}

func TestUserService_AddDriver(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewUserService(userRepo)
	ctx := context.Background()

	user, err := svc.AddDriver(ctx, &RegisterInput{
		Username:      "carol",
		Password:      "pass1234",
		FullName:      strPtr("Carol D"),
		ContactNumber: strPtr("9000000000"),
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	_, err = svc.AddDriver(ctx, &RegisterInput{Username: "carol", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = svc.AddDriver(ctx, &RegisterInput{Username: "MASTER", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrReservedUsername)
}

func TestUserService_ListDriversExcludesMasterOrdered(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewUserService(userRepo)
	seedUser(t, userRepo, "zed", "p")
	seedUser(t, userRepo, "master", "p")
	seedUser(t, userRepo, "alice", "p")

	drivers, err := svc.ListDrivers(context.Background())
	require.NoError(t, err)
	require.Len(t, drivers, 2)
	assert.Equal(t, "alice", drivers[0].Username)
	assert.Equal(t, "zed", drivers[1].Username)
}

func TestUserService_DeleteDriver(t *testing.T) {
	userRepo := newStubUserRepo()
	txnRepo := newStubTransactionRepo()
	userRepo.txns = txnRepo
	svc := NewUserService(userRepo)
	ctx := context.Background()

	busy := seedUser(t, userRepo, "busy", "p")
	idle := seedUser(t, userRepo, "idle", "p")
	require.NoError(t, txnRepo.Create(ctx, &models.Transaction{
		TransactionID: "TXN-1",
		UserID:        busy.ID,
		Timestamp:     time.Now(),
	}))

	err := svc.DeleteDriver(ctx, busy.ID)
	assert.ErrorIs(t, err, domain.ErrUserHasLedger)

	require.NoError(t, svc.DeleteDriver(ctx, idle.ID))
	_, err = userRepo.GetByID(ctx, idle.ID)
	assert.Error(t, err, "deleted user must not be found")

	err = svc.DeleteDriver(ctx, idle.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_DeleteMasterForbidden(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewUserService(userRepo)
	master := seedUser(t, userRepo, "master", "p")

	err := svc.DeleteDriver(context.Background(), master.ID)
	assert.ErrorIs(t, err, domain.ErrMasterImmutable)
}

func TestUserService_ResetPassword(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewUserService(userRepo)
	ctx := context.Background()
	alice := seedUser(t, userRepo, "alice", "oldpass")
	master := seedUser(t, userRepo, "master", "p")

	assert.ErrorIs(t, svc.ResetPassword(ctx, alice.ID, "abc"), domain.ErrInvalidArgument)
	assert.ErrorIs(t, svc.ResetPassword(ctx, master.ID, "newpass1"), domain.ErrMasterImmutable)
	assert.ErrorIs(t, svc.ResetPassword(ctx, 999, "newpass1"), domain.ErrUserNotFound)

	require.NoError(t, svc.ResetPassword(ctx, alice.ID, "newpass1"))

	// Old credentials stop working, new ones succeed.
	authSvc := NewAuthService(userRepo, newStubSessionRepo(), time.Hour)
	_, _, err := authSvc.Login(ctx, "alice", "oldpass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = authSvc.Login(ctx, "alice", "newpass1")
	assert.NoError(t, err)
}

func TestUserService_RenameDriver(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := NewUserService(userRepo)
	ctx := context.Background()
	alice := seedUser(t, userRepo, "alice", "p")
	seedUser(t, userRepo, "bob", "p")
	master := seedUser(t, userRepo, "master", "p")

	assert.ErrorIs(t, svc.RenameDriver(ctx, alice.ID, "bob"), domain.ErrUsernameTaken)
	assert.ErrorIs(t, svc.RenameDriver(ctx, alice.ID, "mAsTeR"), domain.ErrReservedUsername)
	assert.ErrorIs(t, svc.RenameDriver(ctx, master.ID, "overlord"), domain.ErrMasterImmutable)
	assert.ErrorIs(t, svc.RenameDriver(ctx, 999, "newname"), domain.ErrUserNotFound)

	require.NoError(t, svc.RenameDriver(ctx, alice.ID, "alicia"))
	stored, err := userRepo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", stored.Username)
}

func TestUserService_AddDriverLosesCreateRace(t *testing.T) {
	userRepo := newStubUserRepo()
	seedUser(t, userRepo, "bob", "pass1234")
	svc := NewUserService(&racingUserRepo{userRepo})

	_, err := svc.AddDriver(context.Background(), &RegisterInput{Username: "bob", Password: "newpass"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestUserService_ChangeOwnUsernameLosesRenameRace(t *testing.T) {
	userRepo := newStubUserRepo()
	alice := seedUser(t, userRepo, "alice", "pass1234")
	seedUser(t, userRepo, "bob", "pass1234")
	svc := NewUserService(&racingUserRepo{userRepo})

	_, err := svc.ChangeOwnUsername(context.Background(), alice.ID, "bob", "pass1234")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestUserService_RenameDriverLosesRenameRace(t *testing.T) {
	userRepo := newStubUserRepo()
	seedUser(t, userRepo, "alice", "pass1234")
	bob := seedUser(t, userRepo, "bob", "pass1234")
	svc := NewUserService(&racingUserRepo{userRepo})

	err := svc.RenameDriver(context.Background(), bob.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}
