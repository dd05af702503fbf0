package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/athletics-meet/models"
)

func TestAuthService_CreateOperatorAndLogin(t *testing.T) {
	repo := &fakeOperatorRepo{operators: map[string]*models.Operator{}}
	svc := NewAuthService(repo, discardLogger())
	ctx := context.Background()

	op, err := svc.CreateOperator(ctx, " Judge@Meet.Local ", "s3cret-pass", models.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, "judge@meet.local", op.Email)
	assert.NotEqual(t, "s3cret-pass", op.PasswordHash)

	got, err := svc.Login(ctx, models.Credentials{Email: "judge@meet.local", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, op.ID, got.ID)

	_, err = svc.Login(ctx, models.Credentials{Email: "judge@meet.local", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, models.Credentials{Email: "nobody@meet.local", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, err = svc.Login(ctx, models.Credentials{})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.CreateOperator(ctx, "judge@meet.local", "another-pass", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrOperatorEmailTaken)
}

func TestAuthService_CreateOperator_Validation(t *testing.T) {
	svc := NewAuthService(&fakeOperatorRepo{operators: map[string]*models.Operator{}}, discardLogger())
	ctx := context.Background()

	_, err := svc.CreateOperator(ctx, "not-an-email", "long-enough", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.CreateOperator(ctx, "a@b.c", "short", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.CreateOperator(ctx, "a@b.c", "long-enough", "player")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
