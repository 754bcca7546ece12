package models

// Ingredient is static reference data shared by recipes, extras and grocery items.
type Ingredient struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	FdcID *int   `gorm:"uniqueIndex" json:"fdc_id,omitempty"`
}

// Unit is a named measurement unit such as "g" or "cup".
type Unit struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}
