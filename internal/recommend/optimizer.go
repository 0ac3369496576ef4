package recommend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/faturai/faturai-backend/internal/core/points"
	"github.com/faturai/faturai-backend/internal/models"
)

const (
	optimizeWindow = 30 * 24 * time.Hour
	optimizeLimit  = 20
)

// TransactionSuggestion says a past purchase would have earned more points on
// another of the user's cards.
type TransactionSuggestion struct {
	TransactionID   uuid.UUID `json:"transaction_id"`
	MerchantName    string    `json:"merchant_name"`
	AmountCents     int64     `json:"amount_cents"`
	CurrentCardID   uuid.UUID `json:"current_card_id"`
	SuggestedCardID uuid.UUID `json:"suggested_card_id"`
	SuggestedBank   string    `json:"suggested_bank"`
	CurrentPoints   int64     `json:"current_points"`
	PotentialPoints int64     `json:"potential_points"`
	PointsGained    int64     `json:"points_gained"`
}

// OptimizeTransactions scans the user's largest recent purchases and flags the
// ones that would have earned more points on a different card they already
// own. Flagged transactions are persisted as recommended. The comparison is
// deterministic; no model call is involved.
func (s *Service) OptimizeTransactions(ctx context.Context, userID uuid.UUID) ([]TransactionSuggestion, error) {
	cards, err := s.cards.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(cards) < 2 {
		return nil, nil
	}

	since := time.Now().Add(-optimizeWindow)
	txs, err := s.transactions.LargestSince(userID, since, optimizeLimit)
	if err != nil {
		return nil, err
	}

	var suggestions []TransactionSuggestion
	var flagged []uuid.UUID
	for _, tx := range txs {
		code := ""
		if tx.Category != nil {
			code = tx.Category.Code
		}

		best, bestPoints := bestCardFor(cards, tx.AmountCents, code)
		if best == nil || best.ID == tx.Invoice.CardID || bestPoints <= tx.PointsEarned {
			continue
		}

		suggestions = append(suggestions, TransactionSuggestion{
			TransactionID:   tx.ID,
			MerchantName:    tx.MerchantName,
			AmountCents:     tx.AmountCents,
			CurrentCardID:   tx.Invoice.CardID,
			SuggestedCardID: best.ID,
			SuggestedBank:   best.BankName,
			CurrentPoints:   tx.PointsEarned,
			PotentialPoints: bestPoints,
			PointsGained:    bestPoints - tx.PointsEarned,
		})
		flagged = append(flagged, tx.ID)
	}

	if len(flagged) > 0 {
		if err := s.transactions.MarkRecommended(flagged); err != nil {
			return nil, err
		}
	}
	return suggestions, nil
}

// bestCardFor picks the card that yields the most points for a purchase,
// using each card's best reward program link.
func bestCardFor(cards []models.Card, amountCents int64, categoryCode string) (*models.Card, int64) {
	var best *models.Card
	var bestPoints int64 = -1
	for i := range cards {
		p := cardPoints(&cards[i], amountCents, categoryCode)
		if p > bestPoints {
			best = &cards[i]
			bestPoints = p
		}
	}
	return best, bestPoints
}

func cardPoints(card *models.Card, amountCents int64, categoryCode string) int64 {
	if len(card.RewardPrograms) == 0 {
		return points.Calculate(amountCents, card, categoryCode)
	}
	var max int64
	for _, link := range card.RewardPrograms {
		if p := points.CalculateWithRate(amountCents, link.ConversionRate, card.Tier, categoryCode); p > max {
			max = p
		}
	}
	return max
}
