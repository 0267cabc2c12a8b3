package services

import (
	"errors"
	"testing"

	"pawfectBack/internal/models"
)

func TestCatalogResolve_NormalizationDeterminism(t *testing.T) {
	catalog := NewCatalogService()

	// Every platform dialect of the same product resolves identically.
	for _, id := range []string{
		"superlike_single",
		"com.pawfectmatch.iap.superlike.single",
		"iap_superlike_single",
	} {
		t.Run(id, func(t *testing.T) {
			ent, err := catalog.Resolve(id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ent.Type != models.EntitlementSuperLike || ent.Quantity != 1 {
				t.Errorf("resolved {%s, %d}, want {superlike, 1}", ent.Type, ent.Quantity)
			}
		})
	}
}

func TestCatalogResolve_ExactTable(t *testing.T) {
	catalog := NewCatalogService()

	tests := []struct {
		id       string
		wantType string
		wantQty  int
	}{
		{"superlike_pack_10", models.EntitlementSuperLike, 10},
		{"com.pawfectmatch.iap.boost.pack.5", models.EntitlementBoost, 5},
		{"iap_gift_single", models.EntitlementGift, 1},
		{"filter_pack_10", models.EntitlementFilter, 10},
		{"photo_pack_5", models.EntitlementPhoto, 5},
		{"video_single", models.EntitlementVideo, 1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			ent, err := catalog.Resolve(tt.id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ent.Type != tt.wantType || ent.Quantity != tt.wantQty {
				t.Errorf("resolved {%s, %d}, want {%s, %d}", ent.Type, ent.Quantity, tt.wantType, tt.wantQty)
			}
		})
	}
}

func TestCatalogResolve_HeuristicFallback(t *testing.T) {
	catalog := NewCatalogService()

	t.Run("unseen pack id", func(t *testing.T) {
		ent, err := catalog.Resolve("superlike_megapack_10_promo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ent.Type != models.EntitlementSuperLike || ent.Quantity != 10 {
			t.Errorf("resolved {%s, %d}, want {superlike, 10}", ent.Type, ent.Quantity)
		}
	})

	t.Run("unseen single defaults to one", func(t *testing.T) {
		ent, err := catalog.Resolve("boost_special")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ent.Type != models.EntitlementBoost || ent.Quantity != 1 {
			t.Errorf("resolved {%s, %d}, want {boost, 1}", ent.Type, ent.Quantity)
		}
	})
}

func TestCatalogResolve_UnknownProduct(t *testing.T) {
	catalog := NewCatalogService()

	for _, id := range []string{"mystery_box", "", "com.other.app.coins"} {
		t.Run("id="+id, func(t *testing.T) {
			if _, err := catalog.Resolve(id); !errors.Is(err, models.ErrUnknownProduct) {
				t.Fatalf("expected ErrUnknownProduct, got %v", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	catalog := NewCatalogService()

	tests := []struct {
		in   string
		want string
	}{
		{"com.pawfectmatch.iap.superlike.single", "superlike_single"},
		{"iap_boost_pack_5", "boost_pack_5"},
		{"premium.gold.monthly", "gold_monthly"},
		{"  SuperLike_Single ", "superlike_single"},
		{"video_single", "video_single"},
	}
	for _, tt := range tests {
		if got := catalog.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
