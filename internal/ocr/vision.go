package ocr

import (
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionEngine sends images to Google Cloud Vision document text detection.
// Tesseract tuning flags do not apply and are ignored.
type VisionEngine struct {
	annotate annotateFunc
	close    func() error
}

type annotateFunc func(context.Context, *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// NewVisionEngine dials Cloud Vision. An empty credPath uses application
// default credentials.
func NewVisionEngine(ctx context.Context, credPath string) (*VisionEngine, error) {
	var opts []option.ClientOption
	if credPath != "" {
		opts = append(opts, option.WithCredentialsFile(credPath))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: init vision client: %v", ErrUnavailable, err)
	}
	return &VisionEngine{
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
			return client.BatchAnnotateImages(ctx, req)
		},
		close: client.Close,
	}, nil
}

func (v *VisionEngine) Name() string { return "vision" }

func (v *VisionEngine) Recognize(ctx context.Context, png []byte, lang string, _ []string) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:        &visionpb.Image{Content: png},
			Features:     []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
			ImageContext: &visionpb.ImageContext{LanguageHints: visionHints(lang)},
		}},
	}
	resp, err := v.annotate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}
	r := resp.GetResponses()[0]
	if st := r.GetError(); st != nil && st.GetCode() != 0 {
		return "", fmt.Errorf("vision annotate: code %d: %s", st.GetCode(), st.GetMessage())
	}
	return r.GetFullTextAnnotation().GetText(), nil
}

// Close releases the underlying gRPC connection.
func (v *VisionEngine) Close() error {
	if v.close == nil {
		return nil
	}
	return v.close()
}

// visionHints maps tesseract language codes to BCP-47 hints.
func visionHints(lang string) []string {
	var hints []string
	for _, l := range strings.Split(lang, "+") {
		switch l {
		case "eng":
			hints = append(hints, "en")
		case "hin":
			hints = append(hints, "hi")
		}
	}
	return hints
}
