package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"scanplant/internal/domain"
)

type StorageService struct {
	mock.Mock
}

func (m *StorageService) Store(ctx context.Context, image *domain.ImageUpload) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}

func (m *StorageService) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// Resolve passes refs through unless an expectation is registered.
func (m *StorageService) Resolve(ref string) string {
	for _, call := range m.ExpectedCalls {
		if call.Method == "Resolve" {
			args := m.Called(ref)
			return args.String(0)
		}
	}
	return ref
}
