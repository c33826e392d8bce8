// Package vision はGoogle Cloud Vision APIを使用したレシートOCRクライアントを提供します。
package vision

import (
	"context"
	"errors"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"expense_backend/internal/feature/assistant/usecase"
	"expense_backend/internal/platform/external"
)

// annotator はImageAnnotatorClientのうち、本パッケージが使うメソッドです。
type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// TextDetector はGoogle Cloud Vision APIを使用してレシートの文字を読み取ります。
type TextDetector struct {
	client annotator
}

// TextDetectorがusecase.TextDetectorを実装していることをコンパイル時に検証します。
var _ usecase.TextDetector = (*TextDetector)(nil)

// NewTextDetector はADCを使用してTextDetectorの新しいインスタンスを生成します。
func NewTextDetector(ctx context.Context, opts ...option.ClientOption) (*TextDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &TextDetector{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *TextDetector) Close() error {
	return v.client.Close()
}

// DetectText は画像バイト列から文書テキストを検出します。
func (v *TextDetector) DetectText(ctx context.Context, imageData []byte) external.Result[string] {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return external.Fail[string](external.KindUnavailable, fmt.Errorf("vision API request failed: %w", err))
	}

	if len(resp.GetResponses()) == 0 {
		return external.Fail[string](external.KindInvalidResponse, errors.New("vision API returned no responses"))
	}

	r := resp.GetResponses()[0]
	if r.GetError() != nil {
		return external.Fail[string](external.KindRejected, fmt.Errorf("vision API error: %s", r.GetError().GetMessage()))
	}

	if text := r.GetFullTextAnnotation().GetText(); text != "" {
		return external.OK(text)
	}
	// 文書としての構造が取れない画像でも単語単位の注釈は返ることがある
	if anns := r.GetTextAnnotations(); len(anns) > 0 {
		return external.OK(anns[0].GetDescription())
	}
	return external.OK("")
}
