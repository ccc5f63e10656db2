package models

import "github.com/shopspring/decimal"

type Service struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Duration int             `json:"duration"` // minutes
	Price    decimal.Decimal `json:"price"`
}
