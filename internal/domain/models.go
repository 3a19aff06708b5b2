package domain

import (
	"slices"
	"time"
)

// DefaultLowStockThreshold applies when a product has no threshold of its own.
const DefaultLowStockThreshold = 5

type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionRefurbished Condition = "refurbished"
	ConditionUsed        Condition = "used"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionRefurbished, ConditionUsed:
		return true
	}
	return false
}

// Product is the catalog item. PriceARS is derived from Price and the
// store's total dollar rate; it is a cached value, not a source of truth.
type Product struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name" validate:"required,max=120"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Price              float64    `json:"price" validate:"gte=0"`
	PriceARS           int64      `json:"priceARS"`
	OriginalPrice      *float64   `json:"originalPrice,omitempty" validate:"required_if=IsOnSale true"`
	OriginalPriceARS   *int64     `json:"originalPriceARS,omitempty"`
	DiscountPercentage *float64   `json:"discountPercentage,omitempty" validate:"omitempty,gt=0,lt=100"`
	Stock              int        `json:"stock" validate:"gte=0"`
	LowStockThreshold  int        `json:"lowStockThreshold,omitempty" validate:"gte=0"`
	LastStockAlert     *time.Time `json:"lastStockAlert,omitempty"`
	IsNew              bool       `json:"isNew"`
	IsFeatured         bool       `json:"isFeatured"`
	IsOnSale           bool       `json:"isOnSale"`
	Condition          Condition  `json:"condition,omitempty" validate:"omitempty,oneof=new refurbished used"`
	Color              string     `json:"color,omitempty"`
	Colors             []string   `json:"colors,omitempty"`
	StorageCapacity    string     `json:"storageCapacity,omitempty"`
	BatteryPercentage  *int       `json:"batteryPercentage,omitempty" validate:"omitempty,min=0,max=100"`
	HasAppleWarranty   bool       `json:"hasAppleWarranty"`
	Image              string     `json:"image,omitempty"`
	Images             []string   `json:"images,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Threshold returns the effective low-stock threshold.
func (p Product) Threshold() int {
	if p.LowStockThreshold <= 0 {
		return DefaultLowStockThreshold
	}
	return p.LowStockThreshold
}

// ClearSale drops every sale field.
func (p *Product) ClearSale() {
	p.IsOnSale = false
	p.OriginalPrice = nil
	p.OriginalPriceARS = nil
	p.DiscountPercentage = nil
}

// Clone returns a copy that shares no pointers or slices with p.
func (p Product) Clone() Product {
	out := p
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		out.OriginalPrice = &v
	}
	if p.OriginalPriceARS != nil {
		v := *p.OriginalPriceARS
		out.OriginalPriceARS = &v
	}
	if p.DiscountPercentage != nil {
		v := *p.DiscountPercentage
		out.DiscountPercentage = &v
	}
	if p.LastStockAlert != nil {
		v := *p.LastStockAlert
		out.LastStockAlert = &v
	}
	if p.BatteryPercentage != nil {
		v := *p.BatteryPercentage
		out.BatteryPercentage = &v
	}
	out.Colors = slices.Clone(p.Colors)
	out.Images = slices.Clone(p.Images)
	return out
}

type Section string

const (
	SectionSale        Section = "sale"
	SectionRefurbished Section = "refurbished"
	SectionFeatured    Section = "featured"
	SectionFeatures    Section = "features"
)

// AllSections lists every homepage section in default order.
var AllSections = []Section{SectionSale, SectionRefurbished, SectionFeatured, SectionFeatures}

type FinancingOption struct {
	Installments int     `json:"installments" validate:"min=1,max=12"`
	Interest     float64 `json:"interest" validate:"gte=0"`
}

type FinancingOptions struct {
	Visa    []FinancingOption `json:"visa" validate:"unique=Installments,dive"`
	Naranja []FinancingOption `json:"naranja" validate:"unique=Installments,dive"`
}

// StoreConfig is the singleton store configuration.
type StoreConfig struct {
	ID                     int64            `json:"id,omitempty"`
	StoreName              string           `json:"storeName" validate:"required"`
	StoreDescription       string           `json:"storeDescription"`
	WhatsappNumber         string           `json:"whatsappNumber" validate:"omitempty,phone"`
	DollarRateOfficial     float64          `json:"dollarRateOfficial" validate:"gt=0"`
	DollarRateBlue         float64          `json:"dollarRateBlue" validate:"gt=0"`
	DollarRateMargin       float64          `json:"dollarRateMargin" validate:"gte=0"`
	LastDollarUpdate       *time.Time       `json:"lastDollarUpdate,omitempty"`
	ShowFeaturedProducts   bool             `json:"showFeaturedProducts"`
	ShowFinancingOptions   bool             `json:"showFinancingOptions"`
	ShowSaleSection        bool             `json:"showSaleSection"`
	ShowRefurbishedSection bool             `json:"showRefurbishedSection"`
	SectionsOrder          []Section        `json:"sectionsOrder" validate:"sections"`
	FinancingOptions       FinancingOptions `json:"financingOptions"`
	CreatedAt              time.Time        `json:"createdAt,omitempty"`
	UpdatedAt              time.Time        `json:"updatedAt,omitempty"`
}

// TotalRate is the pricing rate: blue plus the fixed margin.
func (c StoreConfig) TotalRate() float64 {
	return c.DollarRateBlue + c.DollarRateMargin
}

// SectionVisible reports whether a homepage section is switched on.
func (c StoreConfig) SectionVisible(s Section) bool {
	switch s {
	case SectionSale:
		return c.ShowSaleSection
	case SectionRefurbished:
		return c.ShowRefurbishedSection
	case SectionFeatured:
		return c.ShowFeaturedProducts
	case SectionFeatures:
		return true
	}
	return false
}

func (c StoreConfig) Clone() StoreConfig {
	out := c
	if c.LastDollarUpdate != nil {
		v := *c.LastDollarUpdate
		out.LastDollarUpdate = &v
	}
	out.SectionsOrder = slices.Clone(c.SectionsOrder)
	out.FinancingOptions = FinancingOptions{
		Visa:    slices.Clone(c.FinancingOptions.Visa),
		Naranja: slices.Clone(c.FinancingOptions.Naranja),
	}
	return out
}
