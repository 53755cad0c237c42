package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// NewFileNumber returns a unique file number such as PF-2025-3F2A9C01BE.
func NewFileNumber(now time.Time) string {
	return fmt.Sprintf("PF-%d-%s", now.Year(), shortID())
}

// NewReceiptNumber returns a unique payment receipt number.
func NewReceiptNumber() string {
	return "RCP-" + shortID()
}

// NewDealReference returns a unique deal reference.
func NewDealReference() string {
	return "DL-" + shortID()
}
