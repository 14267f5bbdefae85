package mapping

import (
	"fmt"
	"strings"

	"github.com/eslsoft/depictor/internal/entity"
)

const annotationListSuffix = "list/annotations.json"

// AnnotationList is a IIIF Presentation 2 sc:AnnotationList.
type AnnotationList struct {
	ID        string       `json:"@id"`
	Type      string       `json:"@type"`
	Label     string       `json:"label"`
	Resources []Annotation `json:"resources"`
}

type Annotation struct {
	ID         string         `json:"@id"`
	Type       string         `json:"@type"`
	Motivation string         `json:"motivation"`
	On         string         `json:"on"`
	Resource   AnnotationBody `json:"resource"`
}

type AnnotationBody struct {
	ID     string `json:"@id"`
	Format string `json:"format"`
	Chars  string `json:"chars"`
}

// ToAnnotationList renders the item's depicted rows as annotations on the image canvas.
// Regions target canvas coordinates, which are those of the thumbnail. Rows without an
// item value are skipped.
func ToAnnotationList(listURL string, item *entity.Item) *AnnotationList {
	out := &AnnotationList{
		ID:        listURL,
		Type:      "sc:AnnotationList",
		Label:     "Annotations for " + item.Label.Value,
		Resources: []Annotation{},
	}
	if item.ImageTitle == "" || item.Image == nil {
		return out
	}

	canvas := strings.TrimSuffix(listURL, annotationListSuffix) + "canvas/c0.json"
	width, height := item.Image.ThumbWidth, item.Image.ThumbHeight
	for _, d := range item.Depicteds {
		if d.ItemID == "" {
			continue
		}
		anno := Annotation{
			ID:         "#" + d.StatementID,
			Type:       "oa:Annotation",
			Motivation: "identifying",
			On:         canvas,
			Resource: AnnotationBody{
				ID:     conceptURIPrefix + d.ItemID,
				Format: "text/plain",
				Chars:  d.Label.Value,
			},
		}
		if d.HasRegion() {
			if region, err := entity.ParseRegion(d.IIIFRegion); err == nil {
				x, y, w, h := region.PixelRect(width, height)
				anno.On += fmt.Sprintf("#xywh=%d,%d,%d,%d", x, y, w, h)
			}
		}
		out.Resources = append(out.Resources, anno)
	}
	return out
}
