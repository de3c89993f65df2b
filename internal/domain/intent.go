package domain

// IntentTag is the closed set of intents the assistant understands.
type IntentTag string

const (
	IntentSpecificClient  IntentTag = "specific_client"
	IntentCompareParts    IntentTag = "compare_parts"
	IntentCompareServices IntentTag = "compare_services"
	IntentCompareGeneral  IntentTag = "compare_general"
	IntentInsights        IntentTag = "insights"
	IntentCalculate       IntentTag = "calculate"
	IntentAverage         IntentTag = "average"
	IntentFinancial       IntentTag = "financial"
	IntentGreeting        IntentTag = "greeting"
	IntentThanks          IntentTag = "thanks"
	IntentHelp            IntentTag = "help"
	IntentHowClient       IntentTag = "how_client"
	IntentHowNF           IntentTag = "how_nf"
	IntentHowReport       IntentTag = "how_report"
	IntentHowGeneral      IntentTag = "how_general"
	IntentRecommendation  IntentTag = "recommendation"
	IntentCountClients    IntentTag = "count_clients"
	IntentCountParts      IntentTag = "count_parts"
	IntentCountServices   IntentTag = "count_services"
	IntentStats           IntentTag = "stats"
	IntentRecentClients   IntentTag = "recent_clients"
	IntentReports         IntentTag = "reports"
	IntentSearchClient    IntentTag = "search_client"
	IntentSearchPart      IntentTag = "search_part"
	IntentSearchService   IntentTag = "search_service"
	IntentCreateClient    IntentTag = "create_client"
	IntentCreatePart      IntentTag = "create_part"
	IntentCreateService   IntentTag = "create_service"
	IntentCreateReport    IntentTag = "create_report"
	IntentClients         IntentTag = "clients"
	IntentParts           IntentTag = "parts"
	IntentServices        IntentTag = "services"
	IntentGeneral         IntentTag = "general"
)

// IntentPayload carries the entities an intent was resolved from.
type IntentPayload struct {
	Customers []Customer `json:"customers,omitempty"`
	Numero    *int       `json:"numero,omitempty"`
}

// Intent is the classification result of one utterance. It is a plain value.
type Intent struct {
	Tag     IntentTag      `json:"tag"`
	Payload *IntentPayload `json:"payload,omitempty"`
}

// IsLiveFetch reports whether answering the intent requires fresh data from
// the catalog rather than the cached snapshot.
func (t IntentTag) IsLiveFetch() bool {
	switch t {
	case IntentSearchClient, IntentSearchPart, IntentSearchService,
		IntentStats, IntentParts, IntentServices,
		IntentCountClients, IntentCountParts, IntentCountServices,
		IntentRecentClients:
		return true
	}
	return false
}
