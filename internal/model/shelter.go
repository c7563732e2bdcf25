package model

import "time"

// Shelter は動物保護シェルターを表す。
type Shelter struct {
	ID           int64
	Name         string
	VAT          string
	Email        string
	Address1     string
	Address2     string
	PostalCode   string
	Phone        string
	Size         string
	IsActive     bool
	CreationDate time.Time
	Description  string
	FacebookURL  string
	InstagramURL string
	WebPageURL   string
	DeletedAt    *time.Time
}

// Donation は人物からシェルターへの寄付を表す。
type Donation struct {
	ID           int64
	PersonID     int64
	ShelterID    int64
	Total        float64
	DonationDate time.Time
}
