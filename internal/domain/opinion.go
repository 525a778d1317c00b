package domain

import "time"

// ReviewRequest lets a customer rate the products of a delivered order.
type ReviewRequest struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Products  []string  `json:"products"`
	Complete  bool      `json:"complete"`
	CreatedAt time.Time `json:"created_at"`
}

type Opinion struct {
	Name      string    `json:"name"`
	Product   string    `json:"product"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

type RatedProduct struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Review aggregates the opinions left under one order code.
type Review struct {
	ID         string         `json:"id"`
	ClientName string         `json:"client_name"`
	Date       time.Time      `json:"date"`
	Products   []RatedProduct `json:"products"`
	Average    string         `json:"average"`
}

type BlockedDay struct {
	Day    time.Time `json:"day"`
	Reason string    `json:"reason,omitempty"`
}
