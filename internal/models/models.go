package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	Name         string `gorm:"not null"                 json:"name"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

// CartItem with a nil UserID is unclaimed: it was added before the visitor
// authenticated. ClaimToken is set while unclaimed and cleared on claim, so a
// line can be claimed at most once.
type CartItem struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *uint   `gorm:"index"                    json:"user_id,omitempty"`
	ClaimToken string  `gorm:"index"                    json:"-"`
	Name       string  `gorm:"not null"                 json:"name"`
	Price      float64 `gorm:"not null"                 json:"price"`
	Quantity   uint    `json:"quantity"`
}

type Product struct {
	ID          int     `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"not null"                  json:"name"`
	Description string  `gorm:"not null"                  json:"description"`
	Price       float64 `gorm:"not null"                  json:"price"`
}
