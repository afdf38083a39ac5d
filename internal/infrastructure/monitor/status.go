package monitor

import "time"

type Status struct {
	Storage    bool      `json:"storage"`
	Redis      bool      `json:"redis"`
	Ledger     bool      `json:"ledger"`
	LedgerSize int       `json:"ledger_size"`
	LastCheck  time.Time `json:"last_check"`
}
