package mapping

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"

	"github.com/eslsoft/depictor/internal/entity"
)

const conceptURIPrefix = "http://www.wikidata.org/entity/"

// Depicted is the JSON form of a depicted row.
type Depicted struct {
	StatementID   string       `json:"statement_id"`
	PropertyID    string       `json:"property_id"`
	SnakType      string       `json:"snaktype"`
	ItemID        string       `json:"item_id,omitempty"`
	Label         entity.Label `json:"label"`
	IIIFRegion    string       `json:"iiif_region,omitempty"`
	QualifierHash string       `json:"qualifier_hash,omitempty"`
	Local         bool         `json:"local"`
	// Style positions the region overlay on the rendered image.
	Style string `json:"style,omitempty"`
}

func ToDepicted(in *entity.Depicted) *Depicted {
	out := &Depicted{
		StatementID:   in.StatementID,
		PropertyID:    in.PropertyID,
		SnakType:      string(in.SnakType),
		ItemID:        in.ItemID,
		Label:         in.Label,
		IIIFRegion:    in.IIIFRegion,
		QualifierHash: in.QualifierHash,
		Local:         in.Local,
	}
	if in.HasRegion() {
		// Regions written by other tools may not parse; they are shown without an overlay.
		if region, err := entity.ParseRegion(in.IIIFRegion); err == nil {
			out.Style = region.Box().Style()
		}
	}
	return out
}

func ToDepicteds(in []entity.Depicted) []*Depicted {
	return lo.Map(in, func(d entity.Depicted, _ int) *Depicted { return ToDepicted(&d) })
}

// DepictedLink renders a depicted row as an HTML fragment: a link to the depicted item,
// or a span for unknown and no value rows.
func DepictedLink(in *entity.Depicted) string {
	if in.ItemID != "" {
		return ItemLink(in.ItemID, in.Label)
	}
	return fmt.Sprintf(`<span class="wd-image-positions--snaktype-not-value" lang="%s">%s</span>`,
		html.EscapeString(in.Label.Language), html.EscapeString(in.Label.Value))
}

// ItemLink renders a link to an item's concept URI.
func ItemLink(itemID string, label entity.Label) string {
	id := html.EscapeString(itemID)
	return fmt.Sprintf(`<a href="%s%s" lang="%s" data-entity-id="%s">%s</a>`,
		conceptURIPrefix, id, html.EscapeString(label.Language), id, html.EscapeString(label.Value))
}

// Image is the JSON form of a file's image info.
type Image struct {
	Title       string `json:"title"`
	PageID      int64  `json:"page_id"`
	URL         string `json:"url"`
	Mime        string `json:"mime,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ThumbURL    string `json:"thumb_url,omitempty"`
	ThumbWidth  int    `json:"thumb_width,omitempty"`
	ThumbHeight int    `json:"thumb_height,omitempty"`
}

type Attribution struct {
	Text       string `json:"text"`
	HTML       string `json:"html"`
	LicenseURL string `json:"license_url,omitempty"`
}

// Item is the JSON form of the item view.
type Item struct {
	EntityID    string        `json:"entity_id"`
	Label       entity.Label  `json:"label"`
	Description *entity.Label `json:"description,omitempty"`
	ImageTitle  string        `json:"image_title,omitempty"`
	Image       *Image        `json:"image,omitempty"`
	Attribution *Attribution  `json:"attribution,omitempty"`
	Depicteds   []*Depicted   `json:"depicteds"`
}

func ToItem(in *entity.Item) *Item {
	out := &Item{
		EntityID:    in.EntityID,
		Label:       in.Label,
		Description: in.Description,
		ImageTitle:  in.ImageTitle,
		Depicteds:   ToDepicteds(in.Depicteds),
	}
	if img := in.Image; img != nil {
		out.Image = &Image{
			Title:       img.Title,
			PageID:      img.PageID,
			URL:         img.URL,
			Mime:        img.Mime,
			Width:       img.Width,
			Height:      img.Height,
			ThumbURL:    img.ThumbURL,
			ThumbWidth:  img.ThumbWidth,
			ThumbHeight: img.ThumbHeight,
		}
	}
	if a := in.Attribution; a != nil {
		out.Attribution = &Attribution{Text: a.Text, HTML: a.HTML, LicenseURL: a.LicenseURL}
	}
	return out
}

// Statement is the JSON form of a staged statement.
type Statement struct {
	StatementID    int64  `json:"statement_id"`
	ItemID         string `json:"item_id"`
	PropertyID     string `json:"property_id"`
	SnakType       string `json:"snaktype"`
	ValueID        string `json:"value_id,omitempty"`
	Username       string `json:"username"`
	ReferenceType  string `json:"reference_type,omitempty"`
	ReferenceValue string `json:"reference_value,omitempty"`
	PagesValue     string `json:"pages_value,omitempty"`
}

func ToStatement(in *entity.Statement) *Statement {
	out := &Statement{
		StatementID: in.ID,
		ItemID:      in.ItemID,
		PropertyID:  in.PropertyID,
		SnakType:    string(in.Snak.Type),
		ValueID:     in.Snak.ValueID,
		Username:    in.Username,
	}
	if ref := in.Reference; ref != nil {
		out.ReferenceType = ref.Property
		out.ReferenceValue = ref.Value
		out.PagesValue = ref.Pages
	}
	return out
}

func ToStatements(in []entity.Statement) []*Statement {
	return lo.Map(in, func(s entity.Statement, _ int) *Statement { return ToStatement(&s) })
}

// StatementInput is the request body for staging or writing a statement.
// Field names follow the form fields of the annotation UI.
type StatementInput struct {
	ItemID         string `json:"item_id"`
	PropertyID     string `json:"property_id"`
	SnakType       string `json:"snaktype"`
	ValueID        string `json:"value_id"`
	ReferenceType  string `json:"reference_type"`
	ReferenceValue string `json:"reference_value"`
	PagesValue     string `json:"pages_value"`
}

func FromStatementInput(in *StatementInput) entity.StatementDraft {
	return entity.StatementDraft{
		ItemID:         strings.TrimSpace(in.ItemID),
		PropertyID:     strings.TrimSpace(in.PropertyID),
		ValueID:        strings.TrimSpace(in.ValueID),
		SnakType:       strings.TrimSpace(in.SnakType),
		ReferenceType:  in.ReferenceType,
		ReferenceValue: in.ReferenceValue,
		PagesValue:     in.PagesValue,
	}
}
