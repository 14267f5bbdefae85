package entity

// Depicted is one row of the "depicted items" view of an entity, combining a remote claim
// or a staged statement with its display label and optional region.
type Depicted struct {
	StatementID   string
	PropertyID    string
	SnakType      SnakType
	ItemID        string
	Label         Label
	IIIFRegion    string
	QualifierHash string
	Local         bool
}

// HasRegion reports whether the row carries a region.
func (d *Depicted) HasRegion() bool { return d.IIIFRegion != "" }

// Item is the assembled view of an annotated object.
type Item struct {
	EntityID    string
	Label       Label
	Description *Label
	ImageTitle  string
	Image       *ImageInfo
	Attribution *Attribution
	Depicteds   []Depicted
}
