package models

// AssetKind represents the type of a deliverable asset
type AssetKind string

const (
	AssetKindPDF   AssetKind = "PDF"
	AssetKindLink  AssetKind = "LINK"
	AssetKindImage AssetKind = "IMAGE"
)

// ValidAssetKinds defines allowed asset kinds
var ValidAssetKinds = map[AssetKind]bool{
	AssetKindPDF:   true,
	AssetKindLink:  true,
	AssetKindImage: true,
}

// Asset is a resource delivered by DM when a rule matches
type Asset struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Kind          AssetKind `json:"kind" yaml:"kind"`
	URL           string    `json:"url" yaml:"url"`
	DeliveryCount int       `json:"delivery_count" yaml:"delivery_count"`
}
