// Package vision はGoogle Cloud Vision APIを使用して写真内の文字を読み取ります。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"

	"hanzi_backend/internal/feature/recognition/domain/entity"
	"hanzi_backend/internal/feature/recognition/usecase"
)

// annotator は ImageAnnotatorClient のうち使用するメソッドです。
type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionTextReader はTEXT_DETECTIONで画像内の中国語テキストを読み取ります。
type VisionTextReader struct {
	client annotator
}

// VisionTextReaderがTextReaderを実装していることをコンパイル時に検証します。
var _ usecase.TextReader = (*VisionTextReader)(nil)

// NewVisionTextReader はADCを使用してVisionTextReaderの新しいインスタンスを生成します。
func NewVisionTextReader(ctx context.Context) (*VisionTextReader, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionTextReader{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionTextReader) Close() error {
	return v.client.Close()
}

// ReadText は画像内のテキスト全体を返します。文字が無い場合は空文字です。
func (v *VisionTextReader) ReadText(ctx context.Context, img entity.Image) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: img.Data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: []string{"zh"}},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return "", nil
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return "", fmt.Errorf("vision API error: %s", r.Error.Message)
	}

	// 先頭のアノテーションが画像全体のテキスト
	if r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "" {
		return r.FullTextAnnotation.Text, nil
	}
	if len(r.TextAnnotations) > 0 {
		return r.TextAnnotations[0].Description, nil
	}
	return "", nil
}
