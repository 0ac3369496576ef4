package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faturai/faturai-backend/internal/core/llm"
	"github.com/faturai/faturai-backend/internal/models"
	"github.com/faturai/faturai-backend/internal/repositories"
	"github.com/faturai/faturai-backend/internal/shared/logger"
)

const (
	// Spending history below these thresholds is too thin for a tailored
	// recommendation; two of the three checks must pass.
	minActiveCards     = 1
	minTransactions90d = 10
	minCategories90d   = 3
	historyWindow      = 90 * 24 * time.Hour

	topCategoriesLimit  = 5
	topMerchantsLimit   = 10
	monthlySeriesMonths = 6
	recommendationLimit = 3

	modelTimeout = 30 * time.Second
)

// CardSuggestion is one recommended card product.
type CardSuggestion struct {
	CardName           string  `json:"card_name"`
	Description        string  `json:"description"`
	ProjectedUpliftPct float64 `json:"projected_uplift_pct"`
	CostBenefit        string  `json:"cost_benefit"`
}

// Recommendation is the result of a card recommendation request. Tailored
// results carry the aggregates the model reasoned over; fallbacks carry a
// message explaining why.
type Recommendation struct {
	Recommendations []CardSuggestion             `json:"recommendations"`
	TopCategories   []repositories.CategorySpend `json:"top_categories,omitempty"`
	TopMerchants    []repositories.MerchantSpend `json:"top_merchants,omitempty"`
	Tailored        bool                         `json:"tailored"`
	Message         string                       `json:"message,omitempty"`
}

// Service produces card recommendations from spending history.
type Service struct {
	cards        repositories.CardRepo
	transactions repositories.TransactionRepo
	programs     repositories.RewardProgramRepo
	provider     llm.Provider // nil means always fall back to the static set
}

// NewService creates a recommendation service.
func NewService(cards repositories.CardRepo, transactions repositories.TransactionRepo, programs repositories.RewardProgramRepo, provider llm.Provider) *Service {
	return &Service{cards: cards, transactions: transactions, programs: programs, provider: provider}
}

// RecommendCards suggests card products for the user. When the spending
// history is too thin, or the model is unavailable or returns garbage, it
// degrades to a static starter set instead of failing the request.
func (s *Service) RecommendCards(ctx context.Context, userID uuid.UUID) (*Recommendation, error) {
	since := time.Now().Add(-historyWindow)

	activeCards, err := s.cards.CountActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	txCount, err := s.transactions.CountByUserSince(userID, since)
	if err != nil {
		return nil, err
	}
	catCount, err := s.transactions.DistinctCategoriesSince(userID, since)
	if err != nil {
		return nil, err
	}

	passed := 0
	if activeCards >= minActiveCards {
		passed++
	}
	if txCount >= minTransactions90d {
		passed++
	}
	if catCount >= minCategories90d {
		passed++
	}
	if passed < 2 {
		return fallbackRecommendation("histórico de gastos insuficiente para uma recomendação personalizada"), nil
	}

	if s.provider == nil {
		return fallbackRecommendation("recomendação personalizada indisponível no momento"), nil
	}

	rec, err := s.recommendByModel(ctx, userID, since)
	if err != nil {
		logger.LogWarn("card recommendation fell back to static set", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return fallbackRecommendation("recomendação personalizada indisponível: " + err.Error()), nil
	}
	return rec, nil
}

func (s *Service) recommendByModel(ctx context.Context, userID uuid.UUID, since time.Time) (*Recommendation, error) {
	topCategories, err := s.transactions.TopCategories(userID, since, topCategoriesLimit)
	if err != nil {
		return nil, err
	}
	topMerchants, err := s.transactions.TopMerchants(userID, since, topMerchantsLimit)
	if err != nil {
		return nil, err
	}
	monthly, err := s.transactions.MonthlySeries(userID, monthlySeriesMonths)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.ListActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	programs, err := s.programs.List()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, modelTimeout)
	defer cancel()

	raw, err := s.provider.GenerateResponse(ctx, recommendSystemPrompt,
		buildSpendingSummary(topCategories, topMerchants, monthly, cards, programs))
	if err != nil {
		return nil, fmt.Errorf("recommendation model call failed: %w", err)
	}

	suggestions, err := parseSuggestions(raw)
	if err != nil {
		return nil, err
	}
	return &Recommendation{
		Recommendations: suggestions,
		TopCategories:   topCategories,
		TopMerchants:    topMerchants,
		Tailored:        true,
	}, nil
}

const recommendSystemPrompt = `Você é um especialista em cartões de crédito brasileiros.
Com base no resumo de gastos, nos cartões atuais e no catálogo de programas de pontos, recomende até 3 cartões de crédito disponíveis no mercado brasileiro que maximizem o acúmulo de pontos para esse perfil.
Responda APENAS com um array JSON, sem texto adicional, no formato:
[{"card_name": "...", "description": "...", "projected_uplift_pct": 15.0, "cost_benefit": "..."}]`

func buildSpendingSummary(categories []repositories.CategorySpend, merchants []repositories.MerchantSpend, monthly []repositories.MonthlySpend, cards []models.Card, programs []models.RewardProgram) string {
	var b strings.Builder

	b.WriteString("Principais categorias de gasto (últimos 90 dias):\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s: R$ %.2f em %d transações\n",
			c.CategoryName, float64(c.TotalCents)/100, c.Count)
	}

	b.WriteString("\nPrincipais estabelecimentos:\n")
	for _, m := range merchants {
		fmt.Fprintf(&b, "- %s: R$ %.2f\n", m.MerchantName, float64(m.TotalCents)/100)
	}

	b.WriteString("\nGasto mensal:\n")
	for _, mo := range monthly {
		fmt.Fprintf(&b, "- %s: R$ %.2f\n", mo.Month, float64(mo.TotalCents)/100)
	}

	b.WriteString("\nCartões atuais:\n")
	for _, c := range cards {
		fmt.Fprintf(&b, "- %s final %s (tier %s, taxa %.2f pts/R$)\n",
			c.BankName, c.LastFour, c.Tier, c.ConversionRate)
	}

	b.WriteString("\nProgramas de pontos disponíveis:\n")
	for _, p := range programs {
		fmt.Fprintf(&b, "- %s\n", p.Name)
	}

	return b.String()
}

func parseSuggestions(raw string) ([]CardSuggestion, error) {
	cleaned := cleanModelJSON(raw)

	var suggestions []CardSuggestion
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse recommendations: %w", err)
	}

	valid := make([]CardSuggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		if strings.TrimSpace(sg.CardName) == "" {
			continue
		}
		valid = append(valid, sg)
		if len(valid) == recommendationLimit {
			break
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("model returned no usable recommendations")
	}
	return valid, nil
}

// cleanModelJSON strips markdown fences and surrounding prose, keeping the
// outermost JSON array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start != -1 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// fallbackRecommendation is the static starter set served when a tailored
// recommendation is not possible.
func fallbackRecommendation(message string) *Recommendation {
	return &Recommendation{
		Recommendations: []CardSuggestion{
			{
				CardName:    "Nubank Ultravioleta",
				Description: "cashback de 1% investido automaticamente, bom cartão de entrada para acúmulo",
				CostBenefit: "mensalidade de R$ 49,00, isenta com gasto mínimo",
			},
			{
				CardName:    "Itaú Click Platinum",
				Description: "sem anuidade e com acúmulo básico de pontos no programa iupp",
				CostBenefit: "isento de anuidade",
			},
			{
				CardName:    "C6 Carbon",
				Description: "2,5 pontos Átomos por dólar gasto, bom para quem concentra gastos no cartão",
				CostBenefit: "mensalidade de R$ 85,00, isenta com gasto mínimo",
			},
		},
		Tailored: false,
		Message:  message,
	}
}
