package gormstore

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tillpoint/internal/models"
)

type userRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	Code         string `gorm:"size:64;not null;uniqueIndex"`
	DisplayName  string `gorm:"not null"`
	Role         string `gorm:"size:16;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    int64
	UpdatedAt    int64
}

func (userRow) TableName() string { return "users" }

func (r userRow) model() *models.User {
	return &models.User{
		ID:           r.ID,
		Code:         r.Code,
		DisplayName:  r.DisplayName,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type productRow struct {
	ItemCode       string          `gorm:"primaryKey;size:64"`
	Name           string          `gorm:"not null"`
	RetailPrice    decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	CategoryCode   string          `gorm:"size:32"`
	LocationCode   string          `gorm:"size:32"`
	ManufacturerID string          `gorm:"size:64;index"`
	AltCodes       string
	UOM            string `gorm:"size:16"`
}

func (productRow) TableName() string { return "products" }

func productRowFrom(p models.Product) productRow {
	return productRow{
		ItemCode:       p.ID,
		Name:           p.Name,
		RetailPrice:    p.Price,
		CategoryCode:   p.Category,
		LocationCode:   p.LocationCode,
		ManufacturerID: p.ManufacturerID,
		AltCodes:       strings.Join(p.AlternateCodes, ","),
		UOM:            p.UOM,
	}
}

func (r productRow) model() models.Product {
	p := models.Product{
		ID:             r.ItemCode,
		Name:           r.Name,
		Price:          r.RetailPrice,
		Category:       r.CategoryCode,
		LocationCode:   r.LocationCode,
		ManufacturerID: r.ManufacturerID,
		UOM:            r.UOM,
	}
	if r.AltCodes != "" {
		p.AlternateCodes = strings.Split(r.AltCodes, ",")
	}
	return p
}

type customerRow struct {
	Code          string `gorm:"primaryKey;size:64"`
	Name          string
	FullName      string
	Category      string `gorm:"size:32"`
	LocationCode  string `gorm:"size:32"`
	LockFlag      string `gorm:"size:1;not null;default:N"`
	LoyaltyPoints int64  `gorm:"not null;default:0"`
}

func (customerRow) TableName() string { return "customers" }

func (r customerRow) model() models.Customer {
	return models.Customer(r)
}

type cartSnapshotRow struct {
	BillNo       int64  `gorm:"primaryKey;autoIncrement:false"`
	LocationCode string `gorm:"primaryKey;size:32"`
	SessionID    string `gorm:"size:64"`
	Seq          int64
	Items        string `gorm:"type:text;not null"`
	UpdatedAt    int64
}

func (cartSnapshotRow) TableName() string { return "cart_snapshots" }

type heldBillRow struct {
	BillNo       int64  `gorm:"primaryKey;autoIncrement:false"`
	LocationCode string `gorm:"primaryKey;size:32;index:idx_held_location"`
	CounterCode  string `gorm:"size:32"`
	CustomerCode string `gorm:"size:64"`
	HeldAt       int64  `gorm:"index:idx_held_location"`
	Items        string `gorm:"type:text;not null"`
}

func (heldBillRow) TableName() string { return "held_bills" }

type billNumberRow struct {
	BillNo       int64  `gorm:"primaryKey;autoIncrement:false"`
	Flag         string `gorm:"size:1;not null;default:n"`
	CounterCode  string `gorm:"size:32"`
	LocationCode string `gorm:"size:32"`
	BillDate     int64
	PaidAt       *int64
}

func (billNumberRow) TableName() string { return "bill_numbers" }

type settlementRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	BillNo       int64  `gorm:"not null;uniqueIndex:idx_settlement_bill"`
	LocationCode string `gorm:"size:32;not null;uniqueIndex:idx_settlement_bill"`
	CounterCode  string `gorm:"size:32"`
	CustomerCode string `gorm:"size:64"`
	Method       string `gorm:"size:16;not null"`
	PointsUsed   int64
	Subtotal     decimal.Decimal `gorm:"type:numeric(14,4)"`
	Tax          decimal.Decimal `gorm:"type:numeric(14,4)"`
	Total        decimal.Decimal `gorm:"type:numeric(14,4)"`
	Tendered     decimal.Decimal `gorm:"type:numeric(14,4)"`
	Change       decimal.Decimal `gorm:"column:change_amount;type:numeric(14,4)"`
	CreatedAt    int64
	Lines        []detailRow `gorm:"foreignKey:SettlementID;constraint:OnDelete:CASCADE"`
}

func (settlementRow) TableName() string { return "bill_settlements" }

type detailRow struct {
	SettlementID string          `gorm:"primaryKey;size:36"`
	LineNo       int             `gorm:"primaryKey;autoIncrement:false"`
	ItemCode     string          `gorm:"size:64;not null"`
	Quantity     int64           `gorm:"not null"`
	Rate         decimal.Decimal `gorm:"type:numeric(14,4)"`
}

func (detailRow) TableName() string { return "bill_details" }

func settlementRowFrom(s *models.BillSettlement) settlementRow {
	row := settlementRow{
		ID:           s.ID,
		BillNo:       s.BillNo,
		LocationCode: s.LocationCode,
		CounterCode:  s.CounterCode,
		CustomerCode: s.CustomerCode,
		Method:       string(s.Method),
		PointsUsed:   s.PointsUsed,
		Subtotal:     s.Subtotal,
		Tax:          s.Tax,
		Total:        s.Total,
		Tendered:     s.Tendered,
		Change:       s.Change,
		CreatedAt:    s.CreatedAt,
	}
	for i, l := range s.Items {
		row.Lines = append(row.Lines, detailRow{
			SettlementID: s.ID,
			LineNo:       i + 1,
			ItemCode:     l.ItemCode,
			Quantity:     l.Quantity,
			Rate:         l.Rate,
		})
	}
	return row
}

func (r settlementRow) model() *models.BillSettlement {
	s := &models.BillSettlement{
		ID:           r.ID,
		BillNo:       r.BillNo,
		LocationCode: r.LocationCode,
		CounterCode:  r.CounterCode,
		CustomerCode: r.CustomerCode,
		Method:       models.PaymentMethod(r.Method),
		PointsUsed:   r.PointsUsed,
		Subtotal:     r.Subtotal,
		Tax:          r.Tax,
		Total:        r.Total,
		Tendered:     r.Tendered,
		Change:       r.Change,
		CreatedAt:    r.CreatedAt,
	}
	for _, l := range r.Lines {
		s.Items = append(s.Items, models.BillDetailLine{ItemCode: l.ItemCode, Quantity: l.Quantity, Rate: l.Rate})
	}
	return s
}

func encodeLines(lines []models.LineItem) (string, error) {
	b, err := json.Marshal(models.CloneLines(lines))
	return string(b), err
}

func decodeLines(s string) ([]models.LineItem, error) {
	var lines []models.LineItem
	if err := json.Unmarshal([]byte(s), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
