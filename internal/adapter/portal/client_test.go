package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

const testTemplate = "https://portal.example/getsnowtam?ad={icao}"

type fakeGetter struct {
	body string
	err  error
	urls []string
}

func (f *fakeGetter) Get(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.body, f.err
}

func TestClient_PageURL(t *testing.T) {
	c := NewClient(&fakeGetter{}, testTemplate)
	assert.Equal(t, "https://portal.example/getsnowtam?ad=LROP", c.PageURL("LROP"))
}

func TestClient_Source(t *testing.T) {
	src := NewClient(&fakeGetter{}, testTemplate).Source("LHBP")
	assert.Equal(t, domain.PortalSourceName, src.Name)
	assert.Equal(t, "https://portal.example/getsnowtam?ad=LHBP", src.URL)
}

func TestClient_FetchPage(t *testing.T) {
	g := &fakeGetter{body: "<html></html>"}
	body, err := NewClient(g, testTemplate).FetchPage(context.Background(), "LROP")
	require.NoError(t, err)

	assert.Equal(t, "<html></html>", body)
	assert.Equal(t, []string{"https://portal.example/getsnowtam?ad=LROP"}, g.urls)
}

func TestClient_FetchPage_Error(t *testing.T) {
	cause := errors.New("status 503")
	_, err := NewClient(&fakeGetter{err: cause}, testTemplate).FetchPage(context.Background(), "LROP")
	require.Error(t, err)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "LROP")
}
