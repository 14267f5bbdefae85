package usecase

import (
	"context"
	"fmt"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
	"github.com/samber/lo"
)

// Assembler merges remote claims and staged statements into depicted rows.
type Assembler struct {
	labels     repository.LabelRepository
	properties entity.PropertySet
}

func NewAssembler(labels repository.LabelRepository, settings Settings) *Assembler {
	return &Assembler{labels: labels, properties: settings.properties()}
}

// Collect builds unlabelled rows: allow-listed remote claims first, then staged statements, each group in source order.
func (a *Assembler) Collect(remote []entity.RemoteClaim, local []entity.Statement, qualifiers map[string]entity.Qualifier) ([]entity.Depicted, error) {
	depicteds := make([]entity.Depicted, 0, len(remote)+len(local))
	for _, claim := range remote {
		if !a.properties.Contains(claim.PropertyID) {
			continue
		}
		snak, err := claim.Snak()
		if err != nil {
			return nil, fmt.Errorf("claim %s: %w", claim.ID, err)
		}
		depicteds = append(depicteds, entity.Depicted{
			StatementID:   claim.ID,
			PropertyID:    claim.PropertyID,
			SnakType:      snak.Type,
			ItemID:        snak.ValueID,
			IIIFRegion:    claim.Region,
			QualifierHash: claim.QualifierHash,
		})
	}

	for i := range local {
		stmt := &local[i]
		if !a.properties.Contains(stmt.PropertyID) {
			continue
		}
		d := entity.Depicted{
			StatementID: stmt.Ref(),
			PropertyID:  stmt.PropertyID,
			SnakType:    stmt.Snak.Type,
			ItemID:      stmt.Snak.ValueID,
			Local:       true,
		}
		if q, ok := qualifiers[d.StatementID]; ok {
			d.IIIFRegion = q.Region.String()
			d.QualifierHash = q.Hash
		}
		depicteds = append(depicteds, d)
	}
	return depicteds, nil
}

// Label fills in the display labels of depicteds in place. Labels for the extra ids are resolved in the
// same lookup and returned.
func (a *Assembler) Label(ctx context.Context, depicteds []entity.Depicted, langs entity.Languages, extra ...string) (map[string]entity.Label, error) {
	ids := append([]string{}, extra...)
	for _, d := range depicteds {
		if d.SnakType == entity.SnakTypeValue {
			ids = append(ids, d.ItemID)
		}
	}
	ids = lo.Uniq(ids)

	resolved := map[string]entity.Label{}
	if len(ids) > 0 {
		var err error
		if resolved, err = a.labels.ResolveLabels(ctx, ids, langs); err != nil {
			return nil, err
		}
	}
	label := func(id string) entity.Label {
		if l, ok := resolved[id]; ok {
			return l
		}
		return entity.FallbackLabel(id)
	}

	for i := range depicteds {
		d := &depicteds[i]
		if placeholder, ok := entity.SnakLabel(d.SnakType, langs.Primary()); ok {
			d.Label = placeholder
			continue
		}
		d.Label = label(d.ItemID)
	}

	out := make(map[string]entity.Label, len(extra))
	for _, id := range extra {
		out[id] = label(id)
	}
	return out, nil
}

// Assemble is Collect followed by Label.
func (a *Assembler) Assemble(ctx context.Context, remote []entity.RemoteClaim, local []entity.Statement,
	qualifiers map[string]entity.Qualifier, langs entity.Languages) ([]entity.Depicted, error) {
	depicteds, err := a.Collect(remote, local, qualifiers)
	if err != nil {
		return nil, err
	}
	if _, err := a.Label(ctx, depicteds, langs); err != nil {
		return nil, err
	}
	return depicteds, nil
}
