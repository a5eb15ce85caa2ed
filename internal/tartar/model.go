package tartar

import (
	"github.com/Impre-visible/tartar/internal/restaurant"
)

// Rating models one persisted tartare review. The normalized price is a
// snapshot taken from the rate table at creation time; it is never recomputed
// when rates change or when the record is updated.
type Rating struct {
	ID                 string                `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	RestaurantID       string                `gorm:"column:restaurant_id;size:190;not null;index:idx_tartars_restaurant" json:"restaurantId"`
	Restaurant         restaurant.Restaurant `gorm:"foreignKey:RestaurantID;references:ID" json:"restaurant"`
	Price              float64               `gorm:"column:price;not null" json:"price"`
	Currency           string                `gorm:"column:currency;size:8;not null" json:"currency"`
	USDPrice           float64               `gorm:"column:usd_price;not null" json:"usd_price"`
	TextureRating      float64               `gorm:"column:texture_rating;not null" json:"texture_rating"`
	TasteRating        float64               `gorm:"column:taste_rating;not null" json:"taste_rating"`
	PresentationRating float64               `gorm:"column:presentation_rating;not null" json:"presentation_rating"`
	TotalRating        float64               `gorm:"column:total_rating;not null" json:"total_rating"`
	CreatedAtSeconds   int64                 `gorm:"column:created_at_s;not null" json:"created_at_s"`
	RecordedAtSeconds  int64                 `gorm:"column:recorded_at_s;not null" json:"recorded_at_s"`
}

// TableName provides the explicit table binding for GORM.
func (Rating) TableName() string {
	return "tartars"
}
