package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanzi_backend/internal/api"
	captureusecase "hanzi_backend/internal/feature/capture/usecase"
	"hanzi_backend/internal/feature/recognition/domain/entity"
	"hanzi_backend/internal/feature/recognition/domain/viewstate"
	"hanzi_backend/internal/feature/recognition/transport/handler"
	"hanzi_backend/internal/feature/recognition/usecase"
)

// mockFlowUsecase はFlowUsecaseインターフェースのモック実装です。
type mockFlowUsecase struct {
	StatusFunc    func(ctx context.Context) usecase.Status
	RecognizeFunc func(ctx context.Context, img entity.Image) (usecase.Outcome, error)
	ReadTextFunc  func(ctx context.Context, img entity.Image) (usecase.Outcome, error)
	lastImage     entity.Image
}

func (m *mockFlowUsecase) Status(ctx context.Context) usecase.Status {
	return m.StatusFunc(ctx)
}

func (m *mockFlowUsecase) Recognize(ctx context.Context, img entity.Image) (usecase.Outcome, error) {
	m.lastImage = img
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, img)
	}
	return usecase.Outcome{}, errors.New("RecognizeFunc is not implemented")
}

func (m *mockFlowUsecase) ReadText(ctx context.Context, img entity.Image) (usecase.Outcome, error) {
	m.lastImage = img
	if m.ReadTextFunc != nil {
		return m.ReadTextFunc(ctx, img)
	}
	return usecase.Outcome{}, errors.New("ReadTextFunc is not implemented")
}

// mockCapturer は受け取ったバイト列をそのまま画像として返します。
type mockCapturer struct {
	err error
}

func (m *mockCapturer) Snapshot(data []byte) (entity.Image, error) {
	if m.err != nil {
		return entity.Image{}, m.err
	}
	return entity.Image{MIMEType: "image/jpeg", Data: data}, nil
}

func (m *mockCapturer) FromDataURL(dataURL string) (entity.Image, error) {
	img, err := entity.ParseDataURL(dataURL)
	if err != nil {
		return entity.Image{}, err
	}
	return m.Snapshot(img.Data)
}

var apple = []entity.CharacterInfo{{Character: "苹", Pinyin: "píng"}, {Character: "果", Pinyin: "guǒ"}}

func setupRouter(flow *mockFlowUsecase, capturer *mockCapturer, maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewRecognitionHandler(flow, capturer, maxBytes)
	r := gin.New()
	r.GET("/v1/status", h.Status)
	r.POST("/v1/recognize", h.Recognize)
	r.POST("/v1/recognize/text", h.RecognizeText)
	return r
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRecognitionHandler_Recognize_Multipart(t *testing.T) {
	id := uuid.New()
	flow := &mockFlowUsecase{
		RecognizeFunc: func(ctx context.Context, img entity.Image) (usecase.Outcome, error) {
			return usecase.Outcome{ID: &id, Route: entity.RouteDefault, Characters: apple, Word: "苹果", View: viewstate.Result}, nil
		},
	}
	router := setupRouter(flow, &mockCapturer{}, 1024)

	body, contentType := multipartBody(t, "image", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/v1/recognize", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got api.RecognitionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Id)
	assert.Equal(t, id, *got.Id)
	assert.Equal(t, "default", got.Route)
	assert.Equal(t, "苹果", got.Word)
	assert.Equal(t, "/v1/pronunciation?text=%E8%8B%B9%E6%9E%9C", got.WordAudioURL)
	assert.Equal(t, "result", got.View)
	require.Len(t, got.Characters, 2)
	assert.Equal(t, api.CharacterResponse{Character: "苹", Pinyin: "píng", AudioURL: "/v1/pronunciation?text=%E8%8B%B9"}, got.Characters[0])
	assert.Equal(t, []byte("jpeg-bytes"), flow.lastImage.Data)
}

func TestRecognitionHandler_Recognize_JSON(t *testing.T) {
	flow := &mockFlowUsecase{
		RecognizeFunc: func(ctx context.Context, img entity.Image) (usecase.Outcome, error) {
			return usecase.Outcome{Route: entity.RouteCustom, Characters: apple, Word: "苹果", View: viewstate.Result}, nil
		},
	}
	router := setupRouter(flow, &mockCapturer{}, 1024)

	src := entity.Image{MIMEType: "image/png", Data: []byte("png-bytes")}
	payload, _ := json.Marshal(api.RecognizeRequest{ImageDataURL: src.DataURL()})
	req := httptest.NewRequest(http.MethodPost, "/v1/recognize", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("png-bytes"), flow.lastImage.Data)
	assert.NotContains(t, w.Body.String(), `"id"`)
}

func TestRecognitionHandler_Recognize_Errors(t *testing.T) {
	testCases := []struct {
		name           string
		build          func(t *testing.T) (*bytes.Buffer, string)
		capturerErr    error
		flowErr        error
		flowView       viewstate.View
		expectedStatus int
		expectedBody   api.ErrorResponse
	}{
		{
			name: "missing image field",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "file", []byte("x"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   api.ErrorResponse{Error: "请上传图片。"},
		},
		{
			name: "missing data url",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString(`{}`), "application/json"
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   api.ErrorResponse{Error: "请上传图片。"},
		},
		{
			name: "invalid data url",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString(`{"image_data_url":"hello"}`), "application/json"
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   api.ErrorResponse{Error: "无法读取图片，请换一张照片重试。"},
		},
		{
			name: "file over limit",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "image", bytes.Repeat([]byte("a"), 1100))
			},
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedBody:   api.ErrorResponse{Error: "图片过大，请上传 10MB 以内的图片。"},
		},
		{
			name: "capturer rejects size",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "image", []byte("x"))
			},
			capturerErr:    captureusecase.ErrImageTooLarge,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedBody:   api.ErrorResponse{Error: "图片过大，请上传 10MB 以内的图片。"},
		},
		{
			name: "recognition failure returns to camera",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "image", []byte("x"))
			},
			flowErr:        &usecase.RecognitionError{Kind: usecase.KindQuota, Message: usecase.MsgQuota},
			flowView:       viewstate.Camera,
			expectedStatus: http.StatusBadGateway,
			expectedBody:   api.ErrorResponse{Error: usecase.MsgQuota, View: "camera"},
		},
		{
			name: "untranslated failure is translated",
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "image", []byte("x"))
			},
			flowErr:        errors.New("boom"),
			flowView:       viewstate.Camera,
			expectedStatus: http.StatusBadGateway,
			expectedBody:   api.ErrorResponse{Error: usecase.MsgGeneric, View: "camera"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			flow := &mockFlowUsecase{
				RecognizeFunc: func(ctx context.Context, img entity.Image) (usecase.Outcome, error) {
					if tc.flowErr != nil {
						return usecase.Outcome{View: tc.flowView}, tc.flowErr
					}
					return usecase.Outcome{Characters: apple, View: viewstate.Result}, nil
				},
			}
			router := setupRouter(flow, &mockCapturer{err: tc.capturerErr}, 1024)

			body, contentType := tc.build(t)
			req := httptest.NewRequest(http.MethodPost, "/v1/recognize", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			var got api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tc.expectedBody, got)
		})
	}
}

func TestRecognitionHandler_RecognizeText(t *testing.T) {
	flow := &mockFlowUsecase{
		ReadTextFunc: func(ctx context.Context, img entity.Image) (usecase.Outcome, error) {
			return usecase.Outcome{Route: entity.RouteText, Characters: apple, Word: "苹果", View: viewstate.Result}, nil
		},
	}
	router := setupRouter(flow, &mockCapturer{}, 1024)

	body, contentType := multipartBody(t, "image", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/v1/recognize/text", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"route":"text"`))
}

func TestRecognitionHandler_Status(t *testing.T) {
	flow := &mockFlowUsecase{
		StatusFunc: func(ctx context.Context) usecase.Status {
			return usecase.Status{Ready: false, Route: entity.RouteDefault, NextView: viewstate.Settings}
		},
	}
	router := setupRouter(flow, &mockCapturer{}, 1024)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got api.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, api.StatusResponse{Ready: false, Route: "default", NextView: "settings"}, got)
}
