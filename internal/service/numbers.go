package service

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/konelease/leasing-workflow/internal/model"
)

// numberRetries bounds how often a colliding generated number is redrawn
// before the insert error is surfaced.
const numberRetries = 3

// generateReferenceNumber builds the human-readable application reference,
// e.g. LEA-2026-48213 or REF-2026-03970.
func generateReferenceNumber(appType model.ApplicationType, now time.Time) string {
	prefix := "LEA"
	if appType == model.ApplicationTypeRefinancing {
		prefix = "REF"
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, now.Year(), rand.Intn(100000))
}

// generateContractNumber builds the lessor-side contract number, e.g. A000379214.
func generateContractNumber() string {
	return fmt.Sprintf("A000%06d", rand.Intn(1000000))
}
