package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanzi_backend/internal/feature/modelcatalog/usecase"
	settingsentity "hanzi_backend/internal/feature/settings/domain/entity"
)

type mockModelLister struct {
	ListModelsFunc  func(ctx context.Context, apiURL, apiKey string) ([]string, error)
	ListModelsCalls int
}

func (m *mockModelLister) ListModels(ctx context.Context, apiURL, apiKey string) ([]string, error) {
	m.ListModelsCalls++
	return m.ListModelsFunc(ctx, apiURL, apiKey)
}

type mockSettingsProvider struct {
	settings settingsentity.Settings
	err      error
}

func (m *mockSettingsProvider) Get(context.Context) (settingsentity.Settings, error) {
	return m.settings, m.err
}

func TestModelCatalogUsecase_ListModels(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		apiURL      string
		apiKey      string
		stored      settingsentity.Settings
		storeErr    error
		expectedKey string
		expected    []string
		expectedErr error
		calls       int
	}{
		{
			name:        "success: explicit key",
			apiURL:      "https://api.example.com/v1",
			apiKey:      "sk-new",
			stored:      settingsentity.Settings{APIKey: "sk-old"},
			expectedKey: "sk-new",
			expected:    []string{"gpt-4o"},
			calls:       1,
		},
		{
			name:        "success: stored key is used when omitted",
			apiURL:      "https://api.example.com/v1",
			stored:      settingsentity.Settings{APIKey: "sk-old"},
			expectedKey: "sk-old",
			expected:    []string{"gpt-4o"},
			calls:       1,
		},
		{name: "error: blank url", apiURL: "  ", apiKey: "k", expectedErr: usecase.ErrMissingURL},
		{name: "error: no key anywhere", apiURL: "https://x", expectedErr: usecase.ErrMissingKey},
		{name: "error: settings unavailable", apiURL: "https://x", storeErr: errors.New("db down")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lister := &mockModelLister{ListModelsFunc: func(ctx context.Context, apiURL, apiKey string) ([]string, error) {
				assert.Equal(t, tc.expectedKey, apiKey)
				return []string{"gpt-4o"}, nil
			}}
			uc := usecase.NewModelCatalogUsecase(lister, &mockSettingsProvider{settings: tc.stored, err: tc.storeErr})

			got, err := uc.ListModels(context.Background(), tc.apiURL, tc.apiKey)
			switch {
			case tc.expectedErr != nil:
				assert.ErrorIs(t, err, tc.expectedErr)
			case tc.storeErr != nil:
				assert.ErrorIs(t, err, tc.storeErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.expected, got)
			}
			assert.Equal(t, tc.calls, lister.ListModelsCalls)
		})
	}
}
