package wikibase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/eslsoft/depictor/internal/adapter/mwapi"
	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/tidwall/gjson"
)

const qualifierSummary = "region drawn manually using Dura Europos Wikidata Annotation Tool"

type session struct {
	api   *mwapi.Client
	token string

	mu   sync.Mutex
	csrf string
}

// Session opens a write session for the identity. The CSRF token is fetched once per session.
func (c *Client) Session(identity *entity.Identity) (repository.KnowledgeSession, error) {
	if !identity.LoggedIn() {
		return nil, entity.Unauthorized(entity.ErrNotLoggedIn, "remote edits require a logged in user")
	}
	return &session{api: c.api, token: identity.AccessToken}, nil
}

func (s *session) csrfToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.csrf != "" {
		return s.csrf, nil
	}
	res, err := s.api.Get(ctx, url.Values{"action": {"query"}, "meta": {"tokens"}, "type": {"csrf"}}, s.token)
	if err != nil {
		return "", fmt.Errorf("fetch csrf token: %w", err)
	}
	token := res.Get("query.tokens.csrftoken").String()
	if token == "" || token == "+\\" {
		return "", entity.Unauthorized(entity.ErrNotLoggedIn, "remote session is not authenticated")
	}
	s.csrf = token
	return token, nil
}

func (s *session) post(ctx context.Context, params url.Values) (gjson.Result, error) {
	token, err := s.csrfToken(ctx)
	if err != nil {
		return gjson.Result{}, err
	}
	params.Set("token", token)
	return s.api.Post(ctx, params, s.token)
}

func (s *session) CreateClaim(ctx context.Context, itemID, propertyID string, snak entity.Snak) (string, error) {
	params := url.Values{
		"action":   {"wbcreateclaim"},
		"entity":   {itemID},
		"snaktype": {string(snak.Type)},
		"property": {propertyID},
	}
	if snak.HasValue() {
		value, err := json.Marshal(entityValue(snak.ValueID))
		if err != nil {
			return "", err
		}
		params.Set("value", string(value))
	}
	res, err := s.post(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create claim on %s: %w", itemID, err)
	}
	claimID := res.Get("claim.id").String()
	if claimID == "" {
		return "", &entity.RemoteError{Code: "missing-claim-id", Info: "wbcreateclaim returned no claim id"}
	}
	return claimID, nil
}

func (s *session) SetQualifier(ctx context.Context, claimID string, region entity.Region, hash string) (string, error) {
	raw := region.String()
	value, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	params := url.Values{
		"action":   {"wbsetqualifier"},
		"claim":    {claimID},
		"property": {entity.PropertyIIIFRegion},
		"snaktype": {string(entity.SnakTypeValue)},
		"value":    {string(value)},
		"summary":  {qualifierSummary},
	}
	if hash != "" {
		params.Set("snakhash", hash)
	}
	res, err := s.post(ctx, params)
	if err != nil {
		return "", fmt.Errorf("set qualifier on %s: %w", claimID, err)
	}

	for _, q := range res.Get("claim.qualifiers." + entity.PropertyIIIFRegion).Array() {
		if q.Get("snaktype").String() == string(entity.SnakTypeValue) && q.Get("datavalue.value").String() == raw {
			return q.Get("hash").String(), nil
		}
	}
	return "", nil
}

func (s *session) SetReference(ctx context.Context, claimID string, ref entity.Reference) error {
	snaks := map[string][]referenceSnak{
		ref.Property: {newReferenceSnak(ref)},
	}
	if ref.Pages != "" {
		snaks[entity.PropertyPages] = []referenceSnak{{
			SnakType:  string(entity.SnakTypeValue),
			Property:  entity.PropertyPages,
			DataValue: dataValue{Type: entity.DataValueString, Value: ref.Pages},
			DataType:  "string",
		}}
	}
	encoded, err := json.Marshal(snaks)
	if err != nil {
		return err
	}

	params := url.Values{
		"action":    {"wbsetreference"},
		"statement": {claimID},
		"snaks":     {string(encoded)},
	}
	if ref.Pages != "" {
		order, err := json.Marshal(ref.SnakOrder())
		if err != nil {
			return err
		}
		params.Set("snaks-order", string(order))
	}
	if _, err := s.post(ctx, params); err != nil {
		return fmt.Errorf("set reference on %s: %w", claimID, err)
	}
	return nil
}

func (s *session) SendMessage(ctx context.Context, username, subject, body string) error {
	params := url.Values{
		"action":  {"emailuser"},
		"target":  {username},
		"subject": {subject},
		"text":    {body},
	}
	if _, err := s.post(ctx, params); err != nil {
		return fmt.Errorf("email %s: %w", username, err)
	}
	return nil
}

type dataValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type referenceSnak struct {
	SnakType  string    `json:"snaktype"`
	Property  string    `json:"property"`
	DataValue dataValue `json:"datavalue"`
	DataType  string    `json:"datatype,omitempty"`
}

func newReferenceSnak(ref entity.Reference) referenceSnak {
	if ref.Kind == entity.ReferenceStatedIn {
		return referenceSnak{
			SnakType:  string(entity.SnakTypeValue),
			Property:  ref.Property,
			DataValue: dataValue{Type: entity.DataValueEntityID, Value: entityValue(ref.Value)},
			DataType:  "wikibase-item",
		}
	}
	return referenceSnak{
		SnakType:  string(entity.SnakTypeValue),
		Property:  ref.Property,
		DataValue: dataValue{Type: entity.DataValueString, Value: ref.Value},
	}
}

func entityValue(id string) map[string]string {
	entityType := "item"
	switch {
	case strings.Contains(id, "-F"):
		entityType = "form"
	case strings.Contains(id, "-S"):
		entityType = "sense"
	case strings.HasPrefix(id, "P"):
		entityType = "property"
	case strings.HasPrefix(id, "L"):
		entityType = "lexeme"
	}
	return map[string]string{"entity-type": entityType, "id": id}
}
