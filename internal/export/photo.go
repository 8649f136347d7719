package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

var photoClient = &http.Client{Timeout: 10 * time.Second}

// Photo is a processed candidate photo ready for document embedding.
type Photo struct {
	PNG    []byte
	Width  int
	Height int
}

// PreparePhoto center-crops the candidate photo to a square and scales it
// to the standard CV size. Landscape originals come out smaller so wide
// shots don't dominate the page.
func PreparePhoto(data []byte) (*Photo, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("export: decode photo: %w", err)
	}

	size := photoSizePx
	bounds := img.Bounds()
	if bounds.Dx() > bounds.Dy() {
		size = int(float64(photoSizePx)*0.75 + 0.5)
	}

	square := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.PNG); err != nil {
		return nil, fmt.Errorf("export: encode photo: %w", err)
	}
	return &Photo{PNG: buf.Bytes(), Width: size, Height: size}, nil
}

// FetchPhoto downloads and prepares a photo from a URL. Any failure
// returns nil: a CV without a photo is still a valid CV.
func FetchPhoto(ctx context.Context, url string) *Photo {
	if url == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := photoClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil
	}
	photo, err := PreparePhoto(data)
	if err != nil {
		return nil
	}
	return photo
}

// imageBounds is a decode-only helper used by tests.
func imageBounds(data []byte) (image.Rectangle, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return image.Rectangle{}, err
	}
	return img.Bounds(), nil
}
