package entity

// Data value types used by the knowledge base.
const (
	DataValueEntityID = "wikibase-entityid"
	DataValueString   = "string"
)

// Statement ranks.
const (
	RankPreferred  = "preferred"
	RankNormal     = "normal"
	RankDeprecated = "deprecated"
)

// DataValue is the decoded main value of a remote claim.
type DataValue struct {
	Type     string
	EntityID string
	String   string
}

// RemoteClaim is a claim already stored in the knowledge base.
type RemoteClaim struct {
	ID            string
	PropertyID    string
	SnakType      SnakType
	Value         DataValue
	Rank          string
	Region        string
	QualifierHash string
}

// Snak converts the claim's main snak into its variant, insisting that value snaks point at an entity.
func (c RemoteClaim) Snak() (Snak, error) {
	switch c.SnakType {
	case SnakTypeSomeValue:
		return SomeValueSnak(), nil
	case SnakTypeNoValue:
		return NoValueSnak(), nil
	case SnakTypeValue:
	default:
		return Snak{}, &UnexpectedValueTypeError{Expected: "value|somevalue|novalue", Actual: string(c.SnakType)}
	}
	if c.Value.Type != DataValueEntityID {
		return Snak{}, &UnexpectedValueTypeError{Expected: DataValueEntityID, Actual: c.Value.Type}
	}
	if !IsEntityID(c.Value.EntityID) {
		return Snak{}, &UnexpectedValueTypeError{Expected: "entity id", Actual: c.Value.EntityID}
	}
	return ValueSnak(c.Value.EntityID), nil
}

// EntityDocument is the subset of a remote entity the tool reads.
type EntityDocument struct {
	ID           string
	Claims       map[string][]RemoteClaim
	Descriptions map[string]Label
}

// ClaimsFor returns the claims of the given properties, grouped by property in the given order.
func (d *EntityDocument) ClaimsFor(properties []string) []RemoteClaim {
	var claims []RemoteClaim
	for _, property := range properties {
		claims = append(claims, d.Claims[property]...)
	}
	return claims
}

// BestValue picks the value of the best ranked value claim: preferred, then normal, then deprecated.
func (d *EntityDocument) BestValue(property string) (DataValue, bool) {
	var normal, deprecated *DataValue
	for i := range d.Claims[property] {
		claim := &d.Claims[property][i]
		if claim.SnakType != SnakTypeValue {
			continue
		}
		switch claim.Rank {
		case RankPreferred:
			return claim.Value, true
		case RankNormal:
			normal = &claim.Value
		default:
			deprecated = &claim.Value
		}
	}
	if normal != nil {
		return *normal, true
	}
	if deprecated != nil {
		return *deprecated, true
	}
	return DataValue{}, false
}

// ImageTitle returns the file name held by the image property, or "" when the entity has no image.
func (d *EntityDocument) ImageTitle(property string) (string, error) {
	value, ok := d.BestValue(property)
	if !ok {
		return "", nil
	}
	if value.Type != DataValueString {
		return "", &UnexpectedValueTypeError{Expected: DataValueString, Actual: value.Type}
	}
	return value.String, nil
}

// Description picks the first description available in the preferred languages.
func (d *EntityDocument) Description(langs Languages) (Label, bool) {
	for _, lang := range langs {
		if label, ok := d.Descriptions[lang]; ok {
			return label, true
		}
	}
	return Label{}, false
}

// ImageInfo describes a file on the media repository.
type ImageInfo struct {
	Title       string
	PageID      int64
	URL         string
	Mime        string
	Width       int
	Height      int
	ThumbURL    string
	ThumbWidth  int
	ThumbHeight int
}

// Attribution is the credit line a file requires when reused.
type Attribution struct {
	Text       string
	HTML       string
	LicenseURL string
}
