package extract

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"
)

// MockStrategy substitutes the external AI calls when no provider is
// configured, so the full pipeline stays exercisable in development. The
// output is deterministic per file key.
type MockStrategy struct{}

func NewMockStrategy() *MockStrategy { return &MockStrategy{} }

func (s *MockStrategy) Name() string { return "mock" }

func (s *MockStrategy) Supports(ext string) bool { return ext == "pdf" || imageExts[ext] }

func (s *MockStrategy) Timeout() time.Duration { return time.Second }

var mockMerchants = []struct {
	name     string
	category string
}{
	{"Supermercado Pão de Açúcar", "SUPER"},
	{"Posto Shell", "COMB"},
	{"iFood", "REST"},
	{"Netflix", "ASSIN"},
	{"Uber", "TRANS"},
	{"Farmácia Droga Raia", "SAUDE"},
	{"Amazon BR", "COMPRAS"},
	{"Smart Fit", "SAUDE"},
	{"Cinemark", "LAZER"},
	{"Livraria Cultura", "EDUC"},
}

func (s *MockStrategy) Extract(ctx context.Context, file RawFile) ([]RawTransaction, error) {
	h := fnv.New64a()
	h.Write([]byte(file.Key))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	count := 5 + rng.Intn(6) // 5-10 transactions
	base := time.Now().AddDate(0, -1, 0).Truncate(24 * time.Hour)

	txs := make([]RawTransaction, 0, count)
	for i := 0; i < count; i++ {
		m := mockMerchants[rng.Intn(len(mockMerchants))]
		txs = append(txs, RawTransaction{
			MerchantName: m.name,
			Date:         base.AddDate(0, 0, rng.Intn(28)),
			AmountCents:  int64(500 + rng.Intn(45000)), // R$5.00 - R$455.00
			Description:  fmt.Sprintf("compra simulada %d", i+1),
			CategoryCode: m.category,
		})
	}
	return txs, nil
}
