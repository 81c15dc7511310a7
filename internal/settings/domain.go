package settings

import (
	"errors"
	"time"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/ledger"
	"github.com/warungpos/warungpos/internal/sales"
)

var (
	ErrValidation    = errors.New("settings: validation failed")
	ErrInvalidBackup = errors.New("settings: invalid backup document")
)

// Settings is the store profile, persisted as a single row.
type Settings struct {
	StoreName      string    `json:"store_name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	ReceiptFooter  string    `json:"receipt_footer"`
	LowStockAlerts bool      `json:"low_stock_alerts"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Defaults is what a fresh installation starts with.
func Defaults() Settings {
	return Settings{
		StoreName:      "WarungPOS",
		ReceiptFooter:  "Terima kasih atas kunjungan Anda",
		LowStockAlerts: true,
	}
}

// BackupVersion is the current backup envelope version.
const BackupVersion = 1

// BackupDocument is the full-state export envelope.
type BackupDocument struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Settings   Settings          `json:"settings"`
	Products   []catalog.Product `json:"products"`
	Customers  []ledger.Customer `json:"customers"`
	Sales      []sales.Sale      `json:"sales"`
}
