package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Loader fetches an asset and reports its natural size.
type Loader interface {
	Load(ctx context.Context, src string) (image.Point, error)
}

var (
	ErrAssetStatus = errors.New("asset request failed")
	ErrAssetDecode = errors.New("asset is not a decodable image")
)

const DefaultCacheSize = 128

// HTTPLoader resolves candidate locations against the server origin and
// remembers the size of every asset it has decoded.
type HTTPLoader struct {
	origin *url.URL
	client *http.Client
	sizes  *lru.Cache[string, image.Point]
}

func NewHTTPLoader(origin string, client *http.Client, cacheSize int) (*HTTPLoader, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse asset origin: %w", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	sizes, err := lru.New[string, image.Point](cacheSize)
	if err != nil {
		return nil, err
	}
	return &HTTPLoader{origin: u, client: client, sizes: sizes}, nil
}

// URL returns the absolute location for a candidate.
func (l *HTTPLoader) URL(src string) (string, error) {
	ref, err := url.Parse(src)
	if err != nil {
		return "", err
	}
	return l.origin.ResolveReference(ref).String(), nil
}

func (l *HTTPLoader) Load(ctx context.Context, src string) (image.Point, error) {
	abs, err := l.URL(src)
	if err != nil {
		return image.Point{}, err
	}
	if p, ok := l.sizes.Get(abs); ok {
		return p, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, abs, nil)
	if err != nil {
		return image.Point{}, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return image.Point{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return image.Point{}, fmt.Errorf("%w: %s: %s", ErrAssetStatus, abs, resp.Status)
	}
	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: %s: %v", ErrAssetDecode, abs, err)
	}
	p := image.Point{X: cfg.Width, Y: cfg.Height}
	l.sizes.Add(abs, p)
	return p, nil
}
