package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"pawfectBack/internal/models"
)

// CatalogService collapses platform-specific product id dialects into a
// canonical id and resolves it to an entitlement. Exact table lookups are the
// primary path; the keyword heuristic only catches store-console ids that have
// not been added to the table yet, and every heuristic hit is logged so the id
// can be promoted.
type CatalogService struct {
	products map[string]models.Entitlement
}

func NewCatalogService() *CatalogService {
	return &CatalogService{products: defaultProducts()}
}

func defaultProducts() map[string]models.Entitlement {
	return map[string]models.Entitlement{
		"superlike_single":  {Type: models.EntitlementSuperLike, Quantity: 1},
		"superlike_pack_10": {Type: models.EntitlementSuperLike, Quantity: 10},
		"superlike_pack_25": {Type: models.EntitlementSuperLike, Quantity: 25},
		"boost_single":      {Type: models.EntitlementBoost, Quantity: 1},
		"boost_pack_5":      {Type: models.EntitlementBoost, Quantity: 5},
		"boost_pack_10":     {Type: models.EntitlementBoost, Quantity: 10},
		"filter_single":     {Type: models.EntitlementFilter, Quantity: 1},
		"filter_pack_10":    {Type: models.EntitlementFilter, Quantity: 10},
		"photo_single":      {Type: models.EntitlementPhoto, Quantity: 1},
		"photo_pack_5":      {Type: models.EntitlementPhoto, Quantity: 5},
		"video_single":      {Type: models.EntitlementVideo, Quantity: 1},
		"video_pack_5":      {Type: models.EntitlementVideo, Quantity: 5},
		"gift_single":       {Type: models.EntitlementGift, Quantity: 1},
		"gift_pack_10":      {Type: models.EntitlementGift, Quantity: 10},
	}
}

// Normalize strips the iOS reverse-DNS prefix, the Android "iap_" prefix and
// the subscription "premium." prefix, then flattens dots to underscores.
func (c *CatalogService) Normalize(productID string) string {
	id := strings.ToLower(strings.TrimSpace(productID))
	if strings.HasPrefix(id, "com.") {
		if idx := strings.Index(id, ".iap."); idx >= 0 {
			id = id[idx+len(".iap."):]
		}
	}
	id = strings.TrimPrefix(id, "iap_")
	id = strings.TrimPrefix(id, "premium.")
	return strings.ReplaceAll(id, ".", "_")
}

// Resolve maps a platform product id to an entitlement. Unknown ids fail the
// purchase; there is no silent no-op credit.
func (c *CatalogService) Resolve(productID string) (models.Entitlement, error) {
	id := c.Normalize(productID)
	if id == "" {
		return models.Entitlement{}, fmt.Errorf("%w: empty product id", models.ErrUnknownProduct)
	}
	if ent, ok := c.products[id]; ok {
		return ent, nil
	}

	for _, entType := range []string{
		models.EntitlementSuperLike,
		models.EntitlementBoost,
		models.EntitlementFilter,
		models.EntitlementPhoto,
		models.EntitlementVideo,
		models.EntitlementGift,
	} {
		if !strings.Contains(id, entType) {
			continue
		}
		qty := quantityHint(id)
		log.Printf("[CATALOG] heuristic match for unknown product id %q -> %s x%d; add it to the catalog table", productID, entType, qty)
		return models.Entitlement{Type: entType, Quantity: qty}, nil
	}

	return models.Entitlement{}, fmt.Errorf("%w: %s", models.ErrUnknownProduct, productID)
}

// quantityHint takes the first numeric token of a canonical id, one otherwise.
func quantityHint(id string) int {
	for _, part := range strings.Split(id, "_") {
		if n, err := strconv.Atoi(part); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
