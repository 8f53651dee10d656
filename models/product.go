package models

import "github.com/jrsteele09/go-ordercloud/internal/utils"

// Product is a sellable item. Optional fields are pointers so that a Patch
// only sends what was set.
type Product struct {
	OwnerID                string         `json:"OwnerID,omitempty"`
	DefaultPriceScheduleID string         `json:"DefaultPriceScheduleID,omitempty"`
	AutoForward            *bool          `json:"AutoForward,omitempty"`
	ID                     string         `json:"ID,omitempty"`
	ParentID               string         `json:"ParentID,omitempty"`
	Name                   string         `json:"Name,omitempty"`
	Description            string         `json:"Description,omitempty"`
	QuantityMultiplier     *int           `json:"QuantityMultiplier,omitempty"`
	ShipWeight             *float64       `json:"ShipWeight,omitempty"`
	ShipHeight             *float64       `json:"ShipHeight,omitempty"`
	ShipWidth              *float64       `json:"ShipWidth,omitempty"`
	ShipLength             *float64       `json:"ShipLength,omitempty"`
	Active                 *bool          `json:"Active,omitempty"`
	SpecCount              int            `json:"SpecCount,omitempty"`
	VariantCount           int            `json:"VariantCount,omitempty"`
	ShipFromAddressID      string         `json:"ShipFromAddressID,omitempty"`
	Inventory              *Inventory     `json:"Inventory,omitempty"`
	DefaultSupplierID      string         `json:"DefaultSupplierID,omitempty"`
	AllSuppliersCanSell    *bool          `json:"AllSuppliersCanSell,omitempty"`
	Returnable             *bool          `json:"Returnable,omitempty"`
	XP                     map[string]any `json:"xp,omitempty"`
}

// Inventory tracks stock for a product.
type Inventory struct {
	Enabled              *bool  `json:"Enabled,omitempty"`
	NotificationPoint    *int   `json:"NotificationPoint,omitempty"`
	VariantLevelTracking *bool  `json:"VariantLevelTracking,omitempty"`
	OrderCanExceed       *bool  `json:"OrderCanExceed,omitempty"`
	QuantityAvailable    *int   `json:"QuantityAvailable,omitempty"`
	LastUpdated          string `json:"LastUpdated,omitempty"`
}

// IsActive reports whether the product is active. Unset means inactive.
func (p Product) IsActive() bool {
	return utils.Value(p.Active)
}

// Available returns the quantity in stock, zero when inventory is untracked.
func (p Product) Available() int {
	if p.Inventory == nil {
		return 0
	}
	return utils.Value(p.Inventory.QuantityAvailable)
}
