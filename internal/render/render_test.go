package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gifBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

// assetServer serves a 40x60 gif under the given prefixes only.
func assetServer(t *testing.T, hits *int32, prefixes ...string) *httptest.Server {
	t.Helper()
	body := gifBytes(t, 40, 60)
	mux := http.NewServeMux()
	for _, p := range prefixes {
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			if hits != nil {
				atomic.AddInt32(hits, 1)
			}
			w.Header().Set("Content-Type", "image/gif")
			_, _ = w.Write(body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type fakeLoader map[string]error

func (f fakeLoader) Load(_ context.Context, src string) (image.Point, error) {
	if err, ok := f[src]; ok {
		return image.Point{}, err
	}
	return image.Point{X: 40, Y: 60}, nil
}

func TestCandidates_Order(t *testing.T) {
	got := Candidates("/custom", "man1.gif")
	assert.Equal(t, []string{
		"/custom/man1.gif",
		"/static/assets/tiles/man1.gif",
		"assets/tiles/man1.gif",
	}, got)

	assert.Equal(t, DefaultAssetBase+"ura.gif", Candidates("", "ura.gif")[0])
}

func TestNextCandidate(t *testing.T) {
	c := Candidates("", "pin5.gif")
	for i := range c {
		src, ok := NextCandidate(i, c)
		require.True(t, ok)
		assert.Equal(t, c[i], src)
	}
	_, ok := NextCandidate(len(c), c)
	assert.False(t, ok)
	_, ok = NextCandidate(-1, c)
	assert.False(t, ok)
}

func TestRetry_ExhaustsAfterEveryCandidate(t *testing.T) {
	r := Retry{Candidates: Candidates("", "sou9.gif")}
	seen := []string{}
	for src, ok := r.Current(); ok; src, ok = r.Fail() {
		seen = append(seen, src)
	}
	assert.Equal(t, r.Candidates, seen)
	assert.True(t, r.Exhausted())
}

func TestAssetRenderer_Tile(t *testing.T) {
	r := NewAssetRenderer("/tiles")

	n := r.Tile("0m", Options{})
	assert.Equal(t, KindImage, n.Kind)
	assert.Equal(t, "man-aka5.gif", n.Asset)
	assert.Equal(t, "/tiles/man-aka5.gif", n.Src)
	assert.Equal(t, "0m", n.Alt)
	assert.Equal(t, HeightNormal, n.Height)
	assert.Equal(t, LoadPending, n.State)
	assert.Zero(t, n.Width)

	small := r.Tile("東", Options{Small: true})
	assert.Equal(t, "ji1-ton.gif", small.Asset)
	assert.Equal(t, HeightSmall, small.Height)

	back := r.Tile(" BACK ", Options{})
	assert.True(t, back.Back)
	assert.Equal(t, "ura.gif", back.Asset)
	assert.Equal(t, "tile-back", back.Alt)

	down := r.Tile("5p", Options{FaceDown: true})
	assert.Equal(t, "ura.gif", down.Asset)

	junk := r.Tile("??", Options{})
	assert.Equal(t, "ura.gif", junk.Asset)
	assert.Equal(t, "??", junk.Alt)
}

func TestTextRenderer_Tile(t *testing.T) {
	var r TextRenderer
	assert.Equal(t, "五萬", r.Tile("五萬", Options{}).Text)
	assert.Equal(t, "\U0001F02B", r.Tile("BACK", Options{}).Text)
	n := r.Tile("1z", Options{Small: true})
	assert.Equal(t, KindText, n.Kind)
	assert.Equal(t, HeightSmall, n.Height)
	assert.Equal(t, LoadNone, n.State)
}

func TestNode_ForceHeight(t *testing.T) {
	n := Node{NaturalW: 40, NaturalH: 60}
	n.ForceHeight(64, 43)
	assert.Equal(t, 64, n.Height)
	assert.Equal(t, 43, n.Width)

	unknown := Node{}
	unknown.ForceHeight(64, 43)
	assert.Equal(t, 43, unknown.Width)

	wide := Node{NaturalW: 60, NaturalH: 60}
	wide.ForceHeight(64, 43)
	assert.Equal(t, 64, wide.Width)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("404")

	r, err := Resolve(ctx, "", true, fakeLoader{})
	require.NoError(t, err)
	assert.Equal(t, "asset", r.Name())

	// Primary base missing but a fallback serves the back image.
	r, err = Resolve(ctx, "", true, fakeLoader{"/assets/tiles/ura.gif": boom})
	require.NoError(t, err)
	assert.Equal(t, "asset", r.Name())

	all := fakeLoader{}
	for _, c := range Candidates("", "ura.gif") {
		all[c] = boom
	}
	r, err = Resolve(ctx, "", true, all)
	assert.ErrorIs(t, err, ErrCapabilityAbsent)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "text", r.Name())

	r, err = Resolve(ctx, "", false, fakeLoader{})
	assert.ErrorIs(t, err, ErrCapabilityAbsent)
	assert.Equal(t, "text", r.Name())

	r, err = Resolve(ctx, "", true, nil)
	assert.ErrorIs(t, err, ErrCapabilityAbsent)
	assert.Equal(t, "text", r.Name())
}

func TestHTTPLoader_LoadAndCache(t *testing.T) {
	var hits int32
	srv := assetServer(t, &hits, "/static/assets/tiles/")

	l, err := NewHTTPLoader(srv.URL, srv.Client(), 4)
	require.NoError(t, err)

	_, err = l.Load(context.Background(), "/assets/tiles/ura.gif")
	assert.ErrorIs(t, err, ErrAssetStatus)

	p, err := l.Load(context.Background(), "/static/assets/tiles/ura.gif")
	require.NoError(t, err)
	assert.Equal(t, image.Point{X: 40, Y: 60}, p)

	_, err = l.Load(context.Background(), "/static/assets/tiles/ura.gif")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "second load is served from cache")
}

func TestHTTPLoader_RelativeCandidate(t *testing.T) {
	srv := assetServer(t, nil, "/assets/tiles/")
	l, err := NewHTTPLoader(srv.URL, srv.Client(), 0)
	require.NoError(t, err)

	abs, err := l.URL("assets/tiles/man1.gif")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/assets/tiles/man1.gif", abs)

	_, err = l.Load(context.Background(), "assets/tiles/man1.gif")
	require.NoError(t, err)
}

func TestHTTPLoader_RejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not found</html>"))
	}))
	t.Cleanup(srv.Close)

	l, err := NewHTTPLoader(srv.URL, srv.Client(), 0)
	require.NoError(t, err)
	_, err = l.Load(context.Background(), "/assets/tiles/ura.gif")
	assert.ErrorIs(t, err, ErrAssetDecode)
}

func TestResolve_OverHTTP(t *testing.T) {
	srv := assetServer(t, nil, "/static/assets/tiles/")
	l, err := NewHTTPLoader(srv.URL, srv.Client(), 0)
	require.NoError(t, err)

	r, err := Resolve(context.Background(), "", true, l)
	require.NoError(t, err)
	assert.Equal(t, "asset", r.Name())
}
