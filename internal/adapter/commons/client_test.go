package commons

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eslsoft/depictor/internal/adapter/mwapi"
	"github.com/eslsoft/depictor/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, body string, check func(r *http.Request)) *Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(mwapi.New(mwapi.Options{Endpoint: srv.URL}))
}

func TestImageInfoFollowsNormalization(t *testing.T) {
	body := `{"query":{"normalized":[{"from":"File:dura fresco.jpg","to":"File:Dura fresco.jpg"}],
	  "pages":[{"pageid":42,"title":"File:Dura fresco.jpg","imageinfo":[{"url":"https://upload/full.jpg","mime":"image/jpeg",
	  "width":4000,"height":3000,"thumburl":"https://upload/thumb.jpg","thumbwidth":4000,"thumbheight":3000}]}]}}`
	client := newTestClient(t, body, func(r *http.Request) {
		assert.Equal(t, "8000", r.URL.Query().Get("iiurlwidth"))
		assert.Equal(t, "url|mime|size", r.URL.Query().Get("iiprop"))
	})

	info, err := client.ImageInfo(context.Background(), "dura fresco.jpg", 8000)
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.PageID)
	assert.Equal(t, "image/jpeg", info.Mime)
	assert.Equal(t, 3000, info.ThumbHeight)
}

func TestImageInfoMissing(t *testing.T) {
	body := `{"query":{"pages":[{"title":"File:Nope.jpg","missing":true}]}}`
	client := newTestClient(t, body, nil)
	_, err := client.ImageInfo(context.Background(), "Nope.jpg", 0)
	assert.ErrorIs(t, err, entity.ErrImageNotFound)
}

func TestAttribution(t *testing.T) {
	body := `{"query":{"pages":[{"title":"File:A.jpg","imageinfo":[{"extmetadata":{
	  "AttributionRequired":{"value":"true"},
	  "Artist":{"value":"<a href=\"//commons/User:Marsyas\">Marsyas</a>"},
	  "LicenseShortName":{"value":"CC BY-SA 3.0"},
	  "LicenseUrl":{"value":"https://creativecommons.org/licenses/by-sa/3.0"},
	  "Credit":{"value":"Own work"}}}]}]}}`
	client := newTestClient(t, body, func(r *http.Request) {
		assert.Equal(t, "de", r.URL.Query().Get("iiextmetadatalanguage"))
	})

	attr, err := client.Attribution(context.Background(), "A.jpg", "de")
	require.NoError(t, err)
	require.NotNil(t, attr)
	assert.Equal(t, "Marsyas, CC BY-SA 3.0 (Own work)", attr.Text)
	assert.Contains(t, attr.HTML, `<a href="https://creativecommons.org/licenses/by-sa/3.0">CC BY-SA 3.0</a>`)
	assert.Equal(t, "https://creativecommons.org/licenses/by-sa/3.0", attr.LicenseURL)
}

func TestAttributionNotRequired(t *testing.T) {
	body := `{"query":{"pages":[{"title":"File:A.jpg","imageinfo":[{"extmetadata":{"AttributionRequired":{"value":"false"}}}]}]}}`
	client := newTestClient(t, body, nil)
	attr, err := client.Attribution(context.Background(), "A.jpg", "en")
	require.NoError(t, err)
	assert.Nil(t, attr)
}
