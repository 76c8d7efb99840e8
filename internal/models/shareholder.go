package models

// Shareholder mirrors one row of the uploaded shareholder registry. The
// registry is reference data: this service only reads it, and a separate
// loading process owns its lifecycle.
type Shareholder struct {
	ACNO        string `gorm:"column:acno;primaryKey" json:"acno"`
	Name        string `gorm:"index" json:"name"`
	Address     string `json:"address"`
	Holdings    string `json:"holdings"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	CHN         string `gorm:"column:chn;index" json:"chn"`
	RIN         string `gorm:"column:rin" json:"rin"`
	HasVoted    bool   `gorm:"not null;default:false" json:"has_voted"`
}

// TableName keeps the table name used by the registry loader.
func (Shareholder) TableName() string { return "shareholders" }
