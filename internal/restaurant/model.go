package restaurant

// Restaurant is a place resolved once through the lookup provider and cached
// locally under its provider-assigned identifier. Rows are created on first
// rating submission and never updated afterwards.
type Restaurant struct {
	ID               string  `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	PlaceID          string  `gorm:"column:place_id;size:190;not null;uniqueIndex:idx_restaurants_place_id" json:"placeId"`
	Name             string  `gorm:"column:name;size:255;not null" json:"name"`
	Address          string  `gorm:"column:address;size:512;not null" json:"address"`
	Latitude         float64 `gorm:"column:latitude;not null" json:"latitude"`
	Longitude        float64 `gorm:"column:longitude;not null" json:"longitude"`
	CreatedAtSeconds int64   `gorm:"column:created_at_s;not null" json:"-"`
}

// TableName provides the explicit table binding for GORM.
func (Restaurant) TableName() string {
	return "restaurants"
}
