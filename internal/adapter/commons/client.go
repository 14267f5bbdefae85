// Package commons reads file metadata from the media repository.
package commons

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/eslsoft/depictor/internal/adapter/mwapi"
	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

const filePrefix = "File:"

// Client implements repository.MediaRepository.
type Client struct {
	api *mwapi.Client
}

var _ repository.MediaRepository = (*Client)(nil)

// NewClient wraps an Action API client.
func NewClient(api *mwapi.Client) *Client {
	return &Client{api: api}
}

func (c *Client) ImageInfo(ctx context.Context, title string, thumbWidth int) (*entity.ImageInfo, error) {
	params := url.Values{
		"action":        {"query"},
		"formatversion": {"2"},
		"prop":          {"imageinfo"},
		"iiprop":        {"url|mime|size"},
		"titles":        {filePrefix + title},
	}
	if thumbWidth > 0 {
		params.Set("iiurlwidth", strconv.Itoa(thumbWidth))
	}
	res, err := c.api.Get(ctx, params, "")
	if err != nil {
		return nil, fmt.Errorf("image info %s: %w", title, err)
	}

	page, err := responsePage(res, filePrefix+title)
	if err != nil {
		return nil, err
	}
	info := page.Get("imageinfo.0")
	if !info.Exists() {
		return nil, fmt.Errorf("%s: %w", title, entity.ErrImageNotFound)
	}
	return &entity.ImageInfo{
		Title:       title,
		PageID:      page.Get("pageid").Int(),
		URL:         info.Get("url").String(),
		Mime:        info.Get("mime").String(),
		Width:       int(info.Get("width").Int()),
		Height:      int(info.Get("height").Int()),
		ThumbURL:    info.Get("thumburl").String(),
		ThumbWidth:  int(info.Get("thumbwidth").Int()),
		ThumbHeight: int(info.Get("thumbheight").Int()),
	}, nil
}

func (c *Client) Attribution(ctx context.Context, title, language string) (*entity.Attribution, error) {
	params := url.Values{
		"action":                {"query"},
		"formatversion":         {"2"},
		"prop":                  {"imageinfo"},
		"iiprop":                {"extmetadata"},
		"iiextmetadatalanguage": {language},
		"titles":                {filePrefix + title},
	}
	res, err := c.api.Get(ctx, params, "")
	if err != nil {
		return nil, fmt.Errorf("attribution %s: %w", title, err)
	}
	page, err := responsePage(res, filePrefix+title)
	if err != nil {
		return nil, err
	}
	return buildAttribution(page.Get("imageinfo.0.extmetadata")), nil
}

// buildAttribution renders "Artist, <license link> (Credit)". Artist and Credit are HTML from the repository.
func buildAttribution(meta gjson.Result) *entity.Attribution {
	if meta.Get("AttributionRequired.value").String() != "true" {
		return nil
	}

	var b strings.Builder
	if artist := meta.Get("Artist.value").String(); artist != "" {
		b.WriteString(", " + artist)
	}
	licenseName := meta.Get("LicenseShortName.value").String()
	licenseURL := meta.Get("LicenseUrl.value").String()
	if licenseName != "" && licenseURL != "" {
		fmt.Fprintf(&b, `, <a href="%s">%s</a>`, html.EscapeString(licenseURL), html.EscapeString(licenseName))
	}
	if credit := meta.Get("Credit.value").String(); credit != "" {
		b.WriteString(" (" + credit + ")")
	}

	markup := strings.TrimPrefix(b.String(), ", ")
	return &entity.Attribution{
		Text:       stripTags(markup),
		HTML:       markup,
		LicenseURL: licenseURL,
	}
}

func stripTags(markup string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed markup; either way keep what was read.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// responsePage finds the page for title, following title normalization.
func responsePage(res gjson.Result, title string) (gjson.Result, error) {
	for _, n := range res.Get("query.normalized").Array() {
		if n.Get("from").String() == title {
			title = n.Get("to").String()
			break
		}
	}
	for _, page := range res.Get("query.pages").Array() {
		if page.Get("title").String() != title {
			continue
		}
		if page.Get("missing").Bool() || page.Get("invalid").Bool() {
			break
		}
		return page, nil
	}
	return gjson.Result{}, fmt.Errorf("%s: %w", title, entity.ErrImageNotFound)
}
