package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/model"
	"clinic-api/internal/shared"
)

func TestDoctorDeleteWithFutureAppointments(t *testing.T) {
	doctors := new(mockDoctorStore)
	svc := NewDoctorService(&fakeTx{}, doctors, nil)

	doctors.On("CountFutureAppointments", mock.Anything, int64(1)).Return(2, nil)

	err := svc.Delete(context.Background(), 1)
	assert.True(t, shared.HasKind(err, shared.BusinessError))
	doctors.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDoctorDeleteMissing(t *testing.T) {
	doctors := new(mockDoctorStore)
	svc := NewDoctorService(&fakeTx{}, doctors, nil)

	doctors.On("CountFutureAppointments", mock.Anything, int64(9)).Return(0, nil)
	doctors.On("Delete", mock.Anything, int64(9)).Return(false, nil)

	err := svc.Delete(context.Background(), 9)
	assert.True(t, shared.HasKind(err, shared.NotFound))
}

func TestDoctorCreateRequiresName(t *testing.T) {
	svc := NewDoctorService(&fakeTx{}, new(mockDoctorStore), nil)

	_, err := svc.Create(context.Background(), DoctorInput{Department: "cardiology"})
	assert.True(t, shared.HasKind(err, shared.MissingParameter))
}

func TestSetAvatarStoreFailure(t *testing.T) {
	doctors := new(mockDoctorStore)
	files := new(mockFileStore)
	svc := NewDoctorService(&fakeTx{}, doctors, files)

	files.On("Save", mock.Anything, "avatars", "me.png", mock.Anything).
		Return("", errors.New("disk full"))

	_, err := svc.SetAvatar(context.Background(), 1, "me.png", strings.NewReader("png"))
	assert.True(t, shared.HasKind(err, shared.ExternalServiceError))
	doctors.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetAvatarStoresPath(t *testing.T) {
	doctors := new(mockDoctorStore)
	files := new(mockFileStore)
	svc := NewDoctorService(&fakeTx{}, doctors, files)

	files.On("Save", mock.Anything, "avatars", "me.png", mock.Anything).
		Return("avatars/2024/me.png", nil)
	doctors.On("Update", mock.Anything, int64(1), map[string]any{
		"avatar_path": "avatars/2024/me.png",
	}).Return(&model.Doctor{ID: 1, AvatarPath: "avatars/2024/me.png"}, nil)

	d, err := svc.SetAvatar(context.Background(), 1, "me.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "avatars/2024/me.png", d.AvatarPath)
}
