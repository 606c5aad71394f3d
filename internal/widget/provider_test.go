package widget

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/capability"
	"github.com/dkoosis/deezerwidget/internal/mcperrors"
	"github.com/dkoosis/deezerwidget/internal/mcptypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	text string
	err  error
	urls []string
}

func (s *stubFetcher) FetchText(_ context.Context, url string) (string, error) {
	s.urls = append(s.urls, url)
	return s.text, s.err
}

func TestProvider_Produce(t *testing.T) {
	f := &stubFetcher{text: "<body>Hello</body>"}
	p := NewProvider(ContentWidget("https://nextjs.org/docs"), "http://localhost:3000/", "/", f)

	doc, err := p.Produce(context.Background(), TemplateURI)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>Hello</body></html>", doc.Text)
	assert.Equal(t, "text/html+skybridge", doc.MIMEType)
	assert.Equal(t, "https://nextjs.org/docs", doc.Meta[mcptypes.MetaWidgetDomain])
	assert.Equal(t, []string{"http://localhost:3000/"}, f.urls)
}

func TestProvider_FetchesEveryRead(t *testing.T) {
	f := &stubFetcher{text: "x"}
	p := NewProvider(ContentWidget("d"), "http://h", "/", f)
	for i := 0; i < 3; i++ {
		_, err := p.Produce(context.Background(), TemplateURI)
		require.NoError(t, err)
	}
	assert.Len(t, f.urls, 3)
}

func TestProvider_FetchFailureThroughRegistry(t *testing.T) {
	f := &stubFetcher{err: errors.New("dial tcp: connection refused")}
	p := NewProvider(ContentWidget("d"), "http://h", "/", f)

	reg := capability.NewRegistry()
	require.NoError(t, reg.Register(p.Resource()))

	_, err := reg.ReadResource(context.Background(), TemplateURI)
	var ru *mcperrors.ResourceUnavailableError
	require.True(t, errors.As(err, &ru), "got %v", err)
	code, _, data := mcperrors.MapErrorToJSONRPC(err)
	assert.Equal(t, int(mcperrors.ErrResourceUnavailable), code)
	assert.Equal(t, TemplateURI, data["uri"])
}

func TestProvider_ReadThroughRegistry(t *testing.T) {
	var hits int32
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte("<head></head><body>Homepage</body>"))
	}))
	defer page.Close()

	p := NewProvider(ContentWidget("https://nextjs.org/docs"), page.URL, "/", NewHTTPFetcher(time.Second))
	reg := capability.NewRegistry()
	require.NoError(t, reg.Register(p.Resource()))

	res, err := reg.ReadResource(context.Background(), TemplateURI)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	c := res.Contents[0]
	assert.Equal(t, TemplateURI, c.URI)
	assert.Equal(t, "text/html+skybridge", c.MimeType)
	assert.Equal(t, "<html><head></head><body>Homepage</body></html>", c.Text)
	assert.Equal(t, "Displays the homepage content", c.Meta[mcptypes.MetaWidgetDescription])
	assert.Equal(t, true, c.Meta[mcptypes.MetaWidgetPrefersBorder])
	assert.Equal(t, "https://nextjs.org/docs", c.Meta[mcptypes.MetaWidgetDomain])
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	listed := reg.Resources()
	require.Len(t, listed, 1)
	assert.Equal(t, "content-widget", listed[0].Name)
	assert.Equal(t, "Show Content", listed[0].Title)
	assert.NotContains(t, listed[0].Meta, mcptypes.MetaWidgetDomain)
}

func TestHTTPFetcher_NonSuccessStatusStillReturnsBody(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not here"))
	}))
	defer page.Close()

	text, err := NewHTTPFetcher(time.Second).FetchText(context.Background(), page.URL)
	require.NoError(t, err)
	assert.Equal(t, "not here", text)
}

func TestHTTPFetcher_PageSizeLimit(t *testing.T) {
	var size atomic.Int64
	size.Store(MaxPageSize)
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", int(size.Load()))))
	}))
	defer page.Close()
	f := NewHTTPFetcher(5 * time.Second)

	text, err := f.FetchText(context.Background(), page.URL)
	require.NoError(t, err)
	assert.Len(t, text, MaxPageSize)

	size.Store(MaxPageSize + 1)
	_, err = f.FetchText(context.Background(), page.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestWidgetMeta(t *testing.T) {
	w := ContentWidget("https://nextjs.org/docs")
	meta := w.ToolMeta()
	assert.Equal(t, TemplateURI, meta[mcptypes.MetaOutputTemplate])
	assert.Equal(t, "Loading content...", meta[mcptypes.MetaInvoking])
	assert.Equal(t, "Content loaded", meta[mcptypes.MetaInvoked])
	assert.Equal(t, false, meta[mcptypes.MetaWidgetAccessible])
	assert.Equal(t, true, meta[mcptypes.MetaResultCanProduce])
}
