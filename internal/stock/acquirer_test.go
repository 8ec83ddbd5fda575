package stock

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookreel/internal/types"
)

type fakePexels struct {
	videos        int
	failDownloads map[int]bool
	perPage       string
	server        *httptest.Server
}

func newFakePexels(t *testing.T, videos int, failDownloads map[int]bool) *fakePexels {
	t.Helper()
	f := &fakePexels{videos: videos, failDownloads: failDownloads}

	mux := http.NewServeMux()
	mux.HandleFunc("/videos/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		f.perPage = r.URL.Query().Get("per_page")
		var entries []string
		for i := 1; i <= f.videos; i++ {
			entries = append(entries, fmt.Sprintf(
				`{"id":%d,"width":1080,"height":1920,"duration":12,"user":{"name":"Creator %d"},
				  "video_files":[{"quality":"hd","width":1080,"height":1920,"file_type":"video/mp4","link":"%s/dl/%d"}]}`,
				i, i, f.server.URL, i))
		}
		fmt.Fprintf(w, `{"videos":[%s]}`, strings.Join(entries, ","))
	})
	mux.HandleFunc("/dl/", func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/dl/"), "%d", &id)
		if f.failDownloads[id] {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("fake mp4 payload"))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakePexels) provider() *Pexels {
	return NewPexels("pexels-key", f.server.URL, 5*time.Second, zap.NewNop())
}

type fakePixabay struct {
	hits    int
	perPage string
	server  *httptest.Server
}

func newFakePixabay(t *testing.T, hits int) *fakePixabay {
	t.Helper()
	f := &fakePixabay{hits: hits}

	mux := http.NewServeMux()
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake jpg payload"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		f.perPage = r.URL.Query().Get("per_page")
		var entries []string
		for i := 1; i <= f.hits; i++ {
			entries = append(entries, fmt.Sprintf(
				`{"id":%d,"largeImageURL":"%s/img/%d.jpg","imageWidth":1080,"imageHeight":1920,"user":"Artist %d"}`,
				i, f.server.URL, i, i))
		}
		fmt.Fprintf(w, `{"hits":[%s]}`, strings.Join(entries, ","))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakePixabay) provider() *Pixabay {
	return NewPixabay("pixabay-key", f.server.URL, 5*time.Second, zap.NewNop())
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "morning routine sunrise", BuildQuery("Atomic Habits", "Tiny habits, remarkable results"))
	assert.Equal(t, "night city neon street", BuildQuery("True Crime Stories", "crime and consequence"))
	assert.Equal(t, defaultQuery, BuildQuery("Xylophone", "an unusual memoir"))
}

func TestAcquirePrimaryOverfetches(t *testing.T) {
	pexels := newFakePexels(t, 6, nil)
	acq := NewWithProviders(zap.NewNop(), pexels.provider())

	assets, err := acq.Acquire(context.Background(), "Atomic Habits", "Tiny habits", Options{Count: 2}, t.TempDir())
	require.NoError(t, err)

	assert.Len(t, assets, 2)
	assert.Equal(t, "4", pexels.perPage, "primary provider queries twice the requested count")
}

func TestAcquireFillsShortfallFromSecondary(t *testing.T) {
	pexels := newFakePexels(t, 1, nil)
	pixabay := newFakePixabay(t, 5)
	acq := NewWithProviders(zap.NewNop(), pexels.provider(), pixabay.provider())

	assets, err := acq.Acquire(context.Background(), "Deep Focus", "focus and attention", Options{Count: 3}, t.TempDir())
	require.NoError(t, err)
	require.Len(t, assets, 3)

	assert.Equal(t, types.KindVideo, assets[0].Kind)
	assert.Equal(t, types.KindImage, assets[1].Kind)
	assert.Equal(t, types.KindImage, assets[2].Kind)
	assert.Contains(t, assets[0].Attribution, "Pexels")
	assert.Contains(t, assets[1].Attribution, "Pixabay")
}

func TestAcquireSkipsFailedDownloads(t *testing.T) {
	pexels := newFakePexels(t, 4, map[int]bool{1: true, 2: true})
	acq := NewWithProviders(zap.NewNop(), pexels.provider())

	assets, err := acq.Acquire(context.Background(), "Deep Focus", "focus", Options{Count: 2}, t.TempDir())
	require.NoError(t, err)

	require.Len(t, assets, 2, "overfetch must absorb per-item download failures")
	assert.Contains(t, assets[0].Path, "pexels_3")
	assert.Contains(t, assets[1].Path, "pexels_4")
}

func TestAcquireAcceptsPartialYield(t *testing.T) {
	pexels := newFakePexels(t, 1, nil)
	pixabay := newFakePixabay(t, 0)
	acq := NewWithProviders(zap.NewNop(), pexels.provider(), pixabay.provider())

	assets, err := acq.Acquire(context.Background(), "Deep Focus", "focus", Options{Count: 5}, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}

func TestAcquireErrorsOnlyOnZeroYield(t *testing.T) {
	pexels := newFakePexels(t, 0, nil)
	pixabay := newFakePixabay(t, 0)
	acq := NewWithProviders(zap.NewNop(), pexels.provider(), pixabay.provider())

	_, err := acq.Acquire(context.Background(), "Deep Focus", "focus", Options{Count: 3}, t.TempDir())
	assert.ErrorIs(t, err, ErrNoAssets)
}

func TestAcquireSurvivesMissingPrimaryCredential(t *testing.T) {
	pixabay := newFakePixabay(t, 3)
	brokenPexels := NewPexels("", "http://unused", time.Second, zap.NewNop())
	acq := NewWithProviders(zap.NewNop(), brokenPexels, pixabay.provider())

	assets, err := acq.Acquire(context.Background(), "Deep Focus", "focus", Options{Count: 2}, t.TempDir())
	require.NoError(t, err)

	assert.Len(t, assets, 2)
	for _, a := range assets {
		assert.Equal(t, types.KindImage, a.Kind)
	}
}

func TestAcquireNeverExceedsCount(t *testing.T) {
	pexels := newFakePexels(t, 10, nil)
	pixabay := newFakePixabay(t, 10)
	acq := NewWithProviders(zap.NewNop(), pexels.provider(), pixabay.provider())

	assets, err := acq.Acquire(context.Background(), "Deep Focus", "focus", Options{Count: 4}, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, assets, 4)
}

func TestBestFilePrefersConfiguredTierOrder(t *testing.T) {
	files := []pexelsVideoFile{
		{Quality: "uhd", Link: "uhd.mp4"},
		{Quality: "sd", Link: "sd.mp4"},
		{Quality: "hd", Link: "hd.mp4"},
	}

	chosen, ok := bestFile(files, nil)
	require.True(t, ok)
	assert.Equal(t, "hd", chosen.Quality)

	chosen, ok = bestFile(files, []string{"uhd", "hd", "sd"})
	require.True(t, ok)
	assert.Equal(t, "uhd", chosen.Quality)

	chosen, ok = bestFile([]pexelsVideoFile{{Quality: "odd", Link: "x.mp4"}}, nil)
	require.True(t, ok)
	assert.Equal(t, "odd", chosen.Quality)

	_, ok = bestFile(nil, nil)
	assert.False(t, ok)
}
