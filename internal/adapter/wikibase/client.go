// Package wikibase talks to the knowledge base's Action API: entity reads, label lookups and claim edits.
package wikibase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/eslsoft/depictor/internal/adapter/mwapi"
	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

const labelChunkSize = 50

// Client implements the entity, label and knowledge base ports.
type Client struct {
	api *mwapi.Client
}

var (
	_ repository.EntityRepository = (*Client)(nil)
	_ repository.LabelRepository  = (*Client)(nil)
	_ repository.KnowledgeBase    = (*Client)(nil)
)

// NewClient wraps an Action API client.
func NewClient(api *mwapi.Client) *Client {
	return &Client{api: api}
}

func (c *Client) GetEntity(ctx context.Context, id string, langs entity.Languages) (*entity.EntityDocument, error) {
	params := url.Values{
		"action":    {"wbgetentities"},
		"props":     {"claims|descriptions"},
		"ids":       {id},
		"languages": {strings.Join(lo.Uniq(langs), "|")},
	}
	res, err := c.api.Get(ctx, params, "")
	if err != nil {
		var remote *entity.RemoteError
		if errors.As(err, &remote) && remote.Code == "no-such-entity" {
			return nil, fmt.Errorf("%s: %w", id, entity.ErrEntityNotFound)
		}
		return nil, fmt.Errorf("get entity %s: %w", id, err)
	}

	var doc gjson.Result
	res.Get("entities").ForEach(func(_, value gjson.Result) bool {
		doc = value
		return false
	})
	if !doc.Exists() || doc.Get("missing").Exists() {
		return nil, fmt.Errorf("%s: %w", id, entity.ErrEntityNotFound)
	}
	return parseEntity(doc), nil
}

func (c *Client) ResolveLabels(ctx context.Context, ids []string, langs entity.Languages) (map[string]entity.Label, error) {
	labels := make(map[string]entity.Label, len(ids))
	languages := strings.Join(lo.Uniq(langs), "|")
	for _, chunk := range lo.Chunk(lo.Uniq(ids), labelChunkSize) {
		params := url.Values{
			"action":    {"wbgetentities"},
			"props":     {"labels"},
			"ids":       {strings.Join(chunk, "|")},
			"languages": {languages},
		}
		res, err := c.api.Get(ctx, params, "")
		if err != nil {
			return nil, fmt.Errorf("resolve labels: %w", err)
		}
		res.Get("entities").ForEach(func(key, value gjson.Result) bool {
			for _, lang := range langs {
				if label := value.Get("labels." + lang); label.Exists() {
					labels[key.String()] = entity.Label{Language: label.Get("language").String(), Value: label.Get("value").String()}
					break
				}
			}
			return true
		})
	}
	return labels, nil
}

func parseEntity(doc gjson.Result) *entity.EntityDocument {
	out := &entity.EntityDocument{
		ID:           doc.Get("id").String(),
		Claims:       map[string][]entity.RemoteClaim{},
		Descriptions: map[string]entity.Label{},
	}

	claims := doc.Get("claims")
	if !claims.Exists() {
		claims = doc.Get("statements")
	}
	// An entity without statements serializes them as an empty list.
	if claims.IsObject() {
		claims.ForEach(func(property, list gjson.Result) bool {
			for _, raw := range list.Array() {
				out.Claims[property.String()] = append(out.Claims[property.String()], parseClaim(property.String(), raw))
			}
			return true
		})
	}

	doc.Get("descriptions").ForEach(func(lang, value gjson.Result) bool {
		out.Descriptions[lang.String()] = entity.Label{Language: value.Get("language").String(), Value: value.Get("value").String()}
		return true
	})
	return out
}

func parseClaim(property string, raw gjson.Result) entity.RemoteClaim {
	mainsnak := raw.Get("mainsnak")
	claim := entity.RemoteClaim{
		ID:         raw.Get("id").String(),
		PropertyID: property,
		SnakType:   entity.SnakType(mainsnak.Get("snaktype").String()),
		Rank:       raw.Get("rank").String(),
	}
	if claim.SnakType == entity.SnakTypeValue {
		datavalue := mainsnak.Get("datavalue")
		claim.Value.Type = datavalue.Get("type").String()
		switch claim.Value.Type {
		case entity.DataValueEntityID:
			claim.Value.EntityID = datavalue.Get("value.id").String()
		case entity.DataValueString:
			claim.Value.String = datavalue.Get("value").String()
		}
	}

	for _, q := range raw.Get("qualifiers." + entity.PropertyIIIFRegion).Array() {
		if q.Get("snaktype").String() != string(entity.SnakTypeValue) {
			continue
		}
		claim.Region = q.Get("datavalue.value").String()
		claim.QualifierHash = q.Get("hash").String()
		break
	}
	return claim
}
