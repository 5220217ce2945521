package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const visionURL = "https://vision.googleapis.com/v1/images:annotate"

// ErrUpstream indicates the Vision API rejected or failed the request
var ErrUpstream = errors.New("vision backend failure")

// WebEntity is a recognized concept from web detection
type WebEntity struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// WebMatch is a page or image URL the picture was matched to
type WebMatch struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// WebDetection is the result of a reverse image lookup
type WebDetection struct {
	Entities      []WebEntity `json:"entities"`
	SimilarImages []WebMatch  `json:"similar_images"`
	MatchingPages []WebMatch  `json:"matching_pages"`
}

// VisionClient calls the Google Vision REST API
type VisionClient struct {
	apiKey string
	client *http.Client
}

// NewVisionClient creates a Vision client
func NewVisionClient(apiKey string) *VisionClient {
	return &VisionClient{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type annotateRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionRequest struct {
	Requests []annotateRequest `json:"requests"`
}

type visionResponse struct {
	Responses []struct {
		WebDetection *struct {
			WebEntities []struct {
				Description string  `json:"description"`
				Score       float64 `json:"score"`
			} `json:"webEntities"`
			VisuallySimilarImages []struct {
				URL string `json:"url"`
			} `json:"visuallySimilarImages"`
			PagesWithMatchingImages []struct {
				URL       string `json:"url"`
				PageTitle string `json:"pageTitle"`
			} `json:"pagesWithMatchingImages"`
		} `json:"webDetection"`
		FullTextAnnotation *struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

func (v *VisionClient) annotate(ctx context.Context, image []byte, feature string, maxResults int) (*visionResponse, error) {
	payload, err := json.Marshal(visionRequest{
		Requests: []annotateRequest{{
			Image:    visionImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []visionFeature{{Type: feature, MaxResults: maxResults}},
		}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		visionURL+"?key="+v.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var result visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(result.Responses) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrUpstream)
	}
	if apiErr := result.Responses[0].Error; apiErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, apiErr.Message)
	}
	return &result, nil
}

// DetectWeb runs a reverse image lookup on the picture
func (v *VisionClient) DetectWeb(ctx context.Context, image []byte) (*WebDetection, error) {
	result, err := v.annotate(ctx, image, "WEB_DETECTION", 10)
	if err != nil {
		return nil, err
	}

	detection := &WebDetection{}
	web := result.Responses[0].WebDetection
	if web == nil {
		return detection, nil
	}
	for _, entity := range web.WebEntities {
		if entity.Description == "" {
			continue
		}
		detection.Entities = append(detection.Entities, WebEntity{
			Description: entity.Description,
			Score:       entity.Score,
		})
	}
	for _, image := range web.VisuallySimilarImages {
		detection.SimilarImages = append(detection.SimilarImages, WebMatch{URL: image.URL})
	}
	for _, page := range web.PagesWithMatchingImages {
		detection.MatchingPages = append(detection.MatchingPages, WebMatch{
			URL:   page.URL,
			Title: page.PageTitle,
		})
	}
	return detection, nil
}

// ExtractText runs OCR on the picture and returns the detected text
func (v *VisionClient) ExtractText(ctx context.Context, image []byte) (string, error) {
	result, err := v.annotate(ctx, image, "TEXT_DETECTION", 1)
	if err != nil {
		return "", err
	}
	if annotation := result.Responses[0].FullTextAnnotation; annotation != nil {
		return annotation.Text, nil
	}
	return "", nil
}
