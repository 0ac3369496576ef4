package points

import (
	"testing"

	"github.com/faturai/faturai-backend/internal/models"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name         string
		amountCents  int64
		rate         float64
		tier         string
		categoryCode string
		want         int64
	}{
		{"one point per real", 10000, 1.0, "", "", 100},
		{"rate one and a half", 10000, 1.5, "", "", 150},
		{"floor, never round up", 199, 1.0, "", "", 1},
		{"sub-real charge earns nothing at rate 1", 99, 1.0, "", "", 0},
		{"gold tier supermarket bonus", 10000, 1.0, "gold", "SUPER", 150},
		{"gold tier no bonus category", 10000, 1.0, "gold", "REST", 100},
		{"black tier travel triples", 10000, 1.0, "black", "VIAGEM", 300},
		{"platinum restaurant doubles", 10000, 2.0, "platinum", "REST", 400},
		{"unknown tier means base rate", 10000, 1.0, "diamond", "SUPER", 100},
		{"zero amount", 0, 2.0, "", "", 0},
		{"refund earns nothing", -5000, 2.0, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := &models.Card{ConversionRate: tt.rate, Tier: tt.tier}
			if got := Calculate(tt.amountCents, card, tt.categoryCode); got != tt.want {
				t.Errorf("Calculate(%d, rate=%v, tier=%q, cat=%q) = %d, want %d",
					tt.amountCents, tt.rate, tt.tier, tt.categoryCode, got, tt.want)
			}
		})
	}
}

func TestCalculate_NilCard(t *testing.T) {
	if got := Calculate(10000, nil, "SUPER"); got != 0 {
		t.Errorf("Calculate with nil card = %d, want 0", got)
	}
}

func TestCalculateWithRate(t *testing.T) {
	if got := CalculateWithRate(10000, 2.5, "", ""); got != 250 {
		t.Errorf("CalculateWithRate(10000, 2.5) = %d, want 250", got)
	}
	if got := CalculateWithRate(10000, 1.2, "black", "LAZER"); got != 240 {
		t.Errorf("CalculateWithRate with black/LAZER bonus = %d, want 240", got)
	}
	if got := CalculateWithRate(-100, 2.5, "", ""); got != 0 {
		t.Errorf("CalculateWithRate with negative amount = %d, want 0", got)
	}
}

func TestCategoryBonus(t *testing.T) {
	tests := []struct {
		tier string
		code string
		want float64
	}{
		{"gold", "SUPER", 1.5},
		{"GOLD", "super", 1.5}, // case insensitive
		{"gold", "VIAGEM", 1.0},
		{"platinum", "VIAGEM", 2.0},
		{"black", "REST", 2.0},
		{"", "SUPER", 1.0},
		{"unknown", "SUPER", 1.0},
	}

	for _, tt := range tests {
		if got := CategoryBonus(tt.tier, tt.code); got != tt.want {
			t.Errorf("CategoryBonus(%q, %q) = %v, want %v", tt.tier, tt.code, got, tt.want)
		}
	}
}
