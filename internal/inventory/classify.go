// Package inventory provides pure classification, filtering, and aggregation
// helpers over inventory item lists. Nothing here performs I/O; callers fetch
// through the API gateway and hand the normalized list in.
package inventory

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/medilink/medilink/internal/models"
	"github.com/medilink/medilink/internal/util"
)

// Thresholds holds the fixed quantity cut-offs for absolute stock
// classification.
type Thresholds struct {
	Warning  int // below this is a warning
	Shortage int // at or below... shortage is quantity == 0 regardless
}

// DefaultThresholds returns the classification defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 3, Shortage: 1}
}

// Categorized buckets items by absolute quantity.
type Categorized struct {
	Sufficient []models.InventoryItem
	Warning    []models.InventoryItem
	Shortage   []models.InventoryItem
}

// CategorizeByQuantity buckets items into sufficient/warning/shortage using
// fixed thresholds: shortage when quantity is zero, warning below the
// warning threshold, sufficient otherwise.
func CategorizeByQuantity(items []models.InventoryItem, t Thresholds) Categorized {
	var c Categorized
	for _, item := range items {
		q := item.Quantity.Int()
		switch {
		case q == 0:
			c.Shortage = append(c.Shortage, item)
		case q < t.Warning:
			c.Warning = append(c.Warning, item)
		default:
			c.Sufficient = append(c.Sufficient, item)
		}
	}
	return c
}

// RequiredCategorized buckets items relative to their required quantity.
// The three buckets partition the input: every item lands in exactly one.
type RequiredCategorized struct {
	Sufficient   []models.InventoryItem // quantity >= required_quantity
	Insufficient []models.InventoryItem // 0 < quantity < required_quantity
	Shortage     []models.InventoryItem // quantity == 0
}

// CategorizeByRequired buckets items by comparing quantity against the
// server-set required quantity.
func CategorizeByRequired(items []models.InventoryItem) RequiredCategorized {
	var c RequiredCategorized
	for _, item := range items {
		q := item.Quantity.Int()
		required := item.RequiredQuantity.Int()
		switch {
		case q == 0:
			c.Shortage = append(c.Shortage, item)
		case q < required:
			c.Insufficient = append(c.Insufficient, item)
		default:
			c.Sufficient = append(c.Sufficient, item)
		}
	}
	return c
}

// Statistics summarizes a list for dashboard display.
type Statistics struct {
	Total      int
	Sufficient int
	Warning    int
	Shortage   int
	Categories Categorized
}

// Stats computes counts per absolute-quantity bucket.
func Stats(items []models.InventoryItem, t Thresholds) Statistics {
	c := CategorizeByQuantity(items, t)
	return Statistics{
		Total:      len(items),
		Sufficient: len(c.Sufficient),
		Warning:    len(c.Warning),
		Shortage:   len(c.Shortage),
		Categories: c,
	}
}

// ShortageCount returns how many items hold less than their required
// quantity.
func ShortageCount(items []models.InventoryItem) int {
	n := 0
	for _, item := range items {
		if item.Quantity.Int() < item.RequiredQuantity.Int() {
			n++
		}
	}
	return n
}

// ExcessCount returns how many items hold more than double their required
// quantity. Items without a required quantity never count as excess.
func ExcessCount(items []models.InventoryItem) int {
	n := 0
	for _, item := range items {
		required := item.RequiredQuantity.Int()
		if required > 0 && item.Quantity.Int() > required*2 {
			n++
		}
	}
	return n
}

// ShelterHolding is one shelter's stock of a specific medication.
type ShelterHolding struct {
	ShelterName      string
	MedicationName   string
	Quantity         int
	RequiredQuantity int
	ExpiryDate       *string
	Description      string
}

// SheltersWithMedication filters to shelters holding at least minQuantity of
// the named medication, sorted by descending quantity.
func SheltersWithMedication(items []models.InventoryItem, medicationName string, minQuantity int) []ShelterHolding {
	var holdings []ShelterHolding
	for _, item := range items {
		if item.MedicationName != medicationName || item.Quantity.Int() < minQuantity {
			continue
		}
		holdings = append(holdings, ShelterHolding{
			ShelterName:      item.ShelterName,
			MedicationName:   item.MedicationName,
			Quantity:         item.Quantity.Int(),
			RequiredQuantity: item.RequiredQuantity.Int(),
			ExpiryDate:       item.ExpiryDate,
			Description:      item.Description,
		})
	}
	sort.SliceStable(holdings, func(a, b int) bool {
		return holdings[a].Quantity > holdings[b].Quantity
	})
	return holdings
}

// ExpiryState classifies how close a medication is to its expiry date.
type ExpiryState string

const (
	ExpiryExpired  ExpiryState = "expired"  // past the date
	ExpiryCritical ExpiryState = "critical" // 0-7 days left
	ExpiryWarning  ExpiryState = "warning"  // 8-30 days left
	ExpiryGood     ExpiryState = "good"     // more than 30 days left
	ExpiryUnknown  ExpiryState = "unknown"  // no date, or unparsable
)

// ExpiryStatus holds the classification of a single expiry date.
type ExpiryStatus struct {
	State    ExpiryState
	DaysLeft int // meaningless when State is ExpiryUnknown
}

// CheckExpiry classifies an expiry date relative to now. It is total: any
// input, including nil and unparsable dates, yields a status.
func CheckExpiry(expiryDate *string, now time.Time) ExpiryStatus {
	if expiryDate == nil || *expiryDate == "" {
		return ExpiryStatus{State: ExpiryUnknown}
	}

	expiry, err := util.ParseDate(*expiryDate, now.Location())
	if err != nil {
		return ExpiryStatus{State: ExpiryUnknown}
	}

	daysLeft := int(math.Ceil(expiry.Sub(now).Hours() / 24))

	switch {
	case daysLeft < 0:
		return ExpiryStatus{State: ExpiryExpired, DaysLeft: daysLeft}
	case daysLeft <= 7:
		return ExpiryStatus{State: ExpiryCritical, DaysLeft: daysLeft}
	case daysLeft <= 30:
		return ExpiryStatus{State: ExpiryWarning, DaysLeft: daysLeft}
	default:
		return ExpiryStatus{State: ExpiryGood, DaysLeft: daysLeft}
	}
}

// ExpiringItem pairs an item with its expiry classification.
type ExpiringItem struct {
	models.InventoryItem
	Expiry ExpiryStatus
}

// ExpiringMedications filters to expired, critical, and warning items,
// sorted ascending by days remaining so the most urgent come first.
func ExpiringMedications(items []models.InventoryItem, now time.Time) []ExpiringItem {
	var expiring []ExpiringItem
	for _, item := range items {
		status := CheckExpiry(item.ExpiryDate, now)
		switch status.State {
		case ExpiryExpired, ExpiryCritical, ExpiryWarning:
			expiring = append(expiring, ExpiringItem{InventoryItem: item, Expiry: status})
		}
	}
	sort.SliceStable(expiring, func(a, b int) bool {
		return expiring[a].Expiry.DaysLeft < expiring[b].Expiry.DaysLeft
	})
	return expiring
}

// SortByShortageRatio orders items ascending by quantity/required_quantity
// so the most depleted stock surfaces first. Items with no required
// quantity have no defined ratio and sort last. The input is not modified.
func SortByShortageRatio(items []models.InventoryItem) []models.InventoryItem {
	sorted := make([]models.InventoryItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(a, b int) bool {
		aRequired := sorted[a].RequiredQuantity.Int()
		bRequired := sorted[b].RequiredQuantity.Int()
		if aRequired == 0 && bRequired == 0 {
			return false
		}
		if aRequired == 0 {
			return false
		}
		if bRequired == 0 {
			return true
		}
		aRatio := float64(sorted[a].Quantity) / float64(aRequired)
		bRatio := float64(sorted[b].Quantity) / float64(bRequired)
		return aRatio < bRatio
	})
	return sorted
}

// ShelterSummary aggregates one shelter's inventory.
type ShelterSummary struct {
	ShelterName     string
	MedicationCount int
	TotalQuantity   int
	TotalRequired   int
	Medications     []models.InventoryItem
}

// ShelterSummaries groups items by shelter in first-seen order.
func ShelterSummaries(items []models.InventoryItem) []ShelterSummary {
	index := make(map[string]int)
	var summaries []ShelterSummary
	for _, item := range items {
		if item.ShelterName == "" {
			continue
		}
		i, ok := index[item.ShelterName]
		if !ok {
			i = len(summaries)
			index[item.ShelterName] = i
			summaries = append(summaries, ShelterSummary{ShelterName: item.ShelterName})
		}
		s := &summaries[i]
		s.MedicationCount++
		s.TotalQuantity += item.Quantity.Int()
		s.TotalRequired += item.RequiredQuantity.Int()
		s.Medications = append(s.Medications, item)
	}
	return summaries
}

// OtherShelters lists shelters other than ownShelter that hold at least one
// medication in stock. Zero-quantity holdings are ignored entirely, and a
// shelter with nothing in stock is dropped.
func OtherShelters(items []models.InventoryItem, ownShelter string) []ShelterSummary {
	index := make(map[string]int)
	var summaries []ShelterSummary
	for _, item := range items {
		if item.ShelterName == "" || item.ShelterName == ownShelter || item.Quantity.Int() == 0 {
			continue
		}
		i, ok := index[item.ShelterName]
		if !ok {
			i = len(summaries)
			index[item.ShelterName] = i
			summaries = append(summaries, ShelterSummary{ShelterName: item.ShelterName})
		}
		s := &summaries[i]
		s.MedicationCount++
		s.TotalQuantity += item.Quantity.Int()
		s.TotalRequired += item.RequiredQuantity.Int()
		s.Medications = append(s.Medications, item)
	}
	return summaries
}

// MedicationSummary aggregates one medication's holdings across shelters.
type MedicationSummary struct {
	Name          string
	ShelterCount  int
	TotalQuantity int
	Shelters      []ShelterHolding
}

// MedicationSummaries lists medications held in stock by shelters other than
// ownShelter, grouped by medication in first-seen order. Medications nobody
// else stocks are dropped.
func MedicationSummaries(items []models.InventoryItem, ownShelter string) []MedicationSummary {
	index := make(map[string]int)
	var summaries []MedicationSummary
	for _, item := range items {
		if item.ShelterName == ownShelter || item.Quantity.Int() == 0 {
			continue
		}
		i, ok := index[item.MedicationName]
		if !ok {
			i = len(summaries)
			index[item.MedicationName] = i
			summaries = append(summaries, MedicationSummary{Name: item.MedicationName})
		}
		s := &summaries[i]
		s.TotalQuantity += item.Quantity.Int()
		s.Shelters = append(s.Shelters, ShelterHolding{
			ShelterName:      item.ShelterName,
			MedicationName:   item.MedicationName,
			Quantity:         item.Quantity.Int(),
			RequiredQuantity: item.RequiredQuantity.Int(),
			ExpiryDate:       item.ExpiryDate,
			Description:      item.Description,
		})
	}
	for i := range summaries {
		shelters := make(map[string]bool)
		for _, h := range summaries[i].Shelters {
			shelters[h.ShelterName] = true
		}
		summaries[i].ShelterCount = len(shelters)
	}
	return summaries
}

// ForShelter filters to the named shelter's items.
func ForShelter(items []models.InventoryItem, shelterName string) []models.InventoryItem {
	if shelterName == "" {
		return nil
	}
	var out []models.InventoryItem
	for _, item := range items {
		if item.ShelterName == shelterName {
			out = append(out, item)
		}
	}
	return out
}

// ExcludeShelter filters out the named shelter's items.
func ExcludeShelter(items []models.InventoryItem, shelterName string) []models.InventoryItem {
	var out []models.InventoryItem
	for _, item := range items {
		if item.ShelterName != shelterName {
			out = append(out, item)
		}
	}
	return out
}

// MatchSearch reports whether an item matches a case-insensitive search
// term in either its shelter name or medication name.
func MatchSearch(item models.InventoryItem, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(item.ShelterName), term) ||
		strings.Contains(strings.ToLower(item.MedicationName), term)
}

// InferOwnShelter picks the shelter of the first item in the list. This is
// a stand-in while the profile endpoint lacks a shelter field; ordering of
// the unfiltered list decides the answer. Returns "" for an empty list.
func InferOwnShelter(items []models.InventoryItem) string {
	for _, item := range items {
		if item.ShelterName != "" {
			return item.ShelterName
		}
	}
	return ""
}
