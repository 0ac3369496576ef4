package classify

// keywordTable maps lowercase merchant-name substrings to category codes.
// Checked before any external call; no I/O, always available.
var keywordTable = map[string]string{
	// Supermercados
	"supermercado":  "SUPER",
	"mercado":       "SUPER",
	"atacad":        "SUPER",
	"carrefour":     "SUPER",
	"pao de acucar": "SUPER",
	"extra":         "SUPER",
	"assai":         "SUPER",
	"hortifruti":    "SUPER",

	// Restaurantes e delivery
	"restaurante": "REST",
	"ifood":       "REST",
	"lanchonete":  "REST",
	"pizzaria":    "REST",
	"padaria":     "REST",
	"burger":      "REST",
	"mcdonald":    "REST",
	"cafe":        "REST",

	// Combustível
	"posto":     "COMB",
	"shell":     "COMB",
	"ipiranga":  "COMB",
	"petrobras": "COMB",

	// Transporte
	"uber":           "TRANS",
	"99app":          "TRANS",
	"99 tec":         "TRANS",
	"metro":          "TRANS",
	"estacionamento": "TRANS",
	"pedagio":        "TRANS",

	// Assinaturas e streaming
	"netflix":     "ASSIN",
	"spotify":     "ASSIN",
	"disney":      "ASSIN",
	"prime video": "ASSIN",
	"hbo":         "ASSIN",
	"assinatura":  "ASSIN",

	// Saúde
	"farmacia":    "SAUDE",
	"drogaria":    "SAUDE",
	"droga":       "SAUDE",
	"clinica":     "SAUDE",
	"academia":    "SAUDE",
	"smart fit":   "SAUDE",
	"laboratorio": "SAUDE",

	// Compras
	"amazon":        "COMPRAS",
	"mercado livre": "COMPRAS",
	"magazine":      "COMPRAS",
	"americanas":    "COMPRAS",
	"shopee":        "COMPRAS",
	"aliexpress":    "COMPRAS",

	// Lazer
	"cinema":   "LAZER",
	"cinemark": "LAZER",
	"teatro":   "LAZER",
	"show":     "LAZER",
	"ingresso": "LAZER",

	// Educação
	"livraria":     "EDUC",
	"escola":       "EDUC",
	"faculdade":    "EDUC",
	"universidade": "EDUC",
	"curso":        "EDUC",

	// Viagem
	"hotel":      "VIAGEM",
	"airbnb":     "VIAGEM",
	"latam":      "VIAGEM",
	"gol linhas": "VIAGEM",
	"azul":       "VIAGEM",
	"decolar":    "VIAGEM",
}
