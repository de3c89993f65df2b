package service

import (
	"reflect"
	"testing"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
)

func TestClassifier_RuleOrder(t *testing.T) {
	want := []string{
		"specific_client", "compare", "insights", "value", "greeting", "thanks",
		"help", "how_to", "recommendation", "count", "recent", "action_verb", "topic",
	}
	if got := NewClassifier().Rules(); !reflect.DeepEqual(got, want) {
		t.Fatalf("rule order changed:\n got  %v\n want %v", got, want)
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()
	partRecent := []domain.ConversationTurn{{Speaker: domain.SpeakerUser, Text: "Qual a peça mais cara?"}}

	tests := []struct {
		name   string
		text   string
		recent []domain.ConversationTurn
		want   domain.IntentTag
	}{
		{"count clients", "quantos clientes temos?", nil, domain.IntentCountClients},
		{"count parts", "quantas peças tenho", nil, domain.IntentCountParts},
		{"count services", "quantos serviços existem", nil, domain.IntentCountServices},
		{"count without topic", "quantos registros", nil, domain.IntentStats},
		{"most expensive part", "qual a peça mais cara?", nil, domain.IntentCompareParts},
		{"cheapest service", "qual o serviço mais barato?", nil, domain.IntentCompareServices},
		{"compare general", "qual o maior valor?", nil, domain.IntentCompareGeneral},
		{"insights", "me dê uma análise", nil, domain.IntentInsights},
		{"average", "qual o preço médio das peças", nil, domain.IntentAverage},
		{"calculate", "quanto custam 3 peças?", nil, domain.IntentCalculate},
		{"financial", "qual o valor total?", nil, domain.IntentFinancial},
		{"greeting", "oi, tudo bem?", nil, domain.IntentGreeting},
		{"greeting only at start", "diga oi", nil, domain.IntentGeneral},
		{"thanks", "obrigado!", nil, domain.IntentThanks},
		{"help", "ajuda", nil, domain.IntentHelp},
		{"how client", "como cadastrar um cliente", nil, domain.IntentHowClient},
		{"how nf", "como emitir nota fiscal?", nil, domain.IntentHowNF},
		{"how report", "como faço um relatório", nil, domain.IntentHowReport},
		{"how general", "como funciona", nil, domain.IntentHowGeneral},
		{"recommendation", "alguma recomendação?", nil, domain.IntentRecommendation},
		{"recent clients", "clientes recentes", nil, domain.IntentRecentClients},
		{"recent reports", "últimos laudos", nil, domain.IntentReports},
		{"search client", "buscar cliente Silva", nil, domain.IntentSearchClient},
		{"search by context", "procurar filtro", partRecent, domain.IntentSearchPart},
		{"search without topic", "procurar filtro", nil, domain.IntentGeneral},
		{"create part", "cadastrar nova peça", nil, domain.IntentCreatePart},
		{"create report", "criar relatório", nil, domain.IntentCreateReport},
		{"topic services", "serviços", nil, domain.IntentServices},
		{"topic stats", "dashboard", nil, domain.IntentStats},
		{"topic parts", "estoque", nil, domain.IntentParts},
		{"fallthrough", "xyzzy", nil, domain.IntentGeneral},
		{"empty", "", nil, domain.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, &domain.Snapshot{}, tt.recent)
			if got.Tag != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got.Tag, tt.want)
			}
		})
	}
}

func TestClassifier_SpecificClientBeatsCompare(t *testing.T) {
	snap := &domain.Snapshot{Customers: customers("Silva")}

	got := NewClassifier().Classify("o Silva é o cliente mais caro?", snap, nil)

	if got.Tag != domain.IntentSpecificClient {
		t.Fatalf("expected specific_client, got %s", got.Tag)
	}
	if got.Payload == nil || len(got.Payload.Customers) != 1 || got.Payload.Customers[0].Name != "Silva" {
		t.Errorf("unexpected payload: %+v", got.Payload)
	}
}

func TestClassifier_CalculateCarriesNumber(t *testing.T) {
	got := NewClassifier().Classify("quanto custam 3 peças?", nil, nil)

	if got.Payload == nil || got.Payload.Numero == nil || *got.Payload.Numero != 3 {
		t.Fatalf("expected numero 3, got %+v", got.Payload)
	}
}

func TestClassifier_IsPure(t *testing.T) {
	c := NewClassifier()
	snap := &domain.Snapshot{
		Customers: customers("Acme", "Beta"),
		Parts:     []domain.Part{{ID: "1", Name: "A", SalePrice: domain.Money(10)}},
	}
	recent := []domain.ConversationTurn{{Speaker: domain.SpeakerUser, Text: "cliente novo"}}

	before := *snap
	beforeCustomers := append([]domain.Customer(nil), snap.Customers...)
	beforeRecent := append([]domain.ConversationTurn(nil), recent...)

	first := c.Classify("procurar Acme", snap, recent)
	second := c.Classify("procurar Acme", snap, recent)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input gave different intents: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(snap.Customers, beforeCustomers) || len(snap.Parts) != len(before.Parts) {
		t.Error("snapshot was modified")
	}
	if !reflect.DeepEqual(recent, beforeRecent) {
		t.Error("history was modified")
	}
}

func TestClassifier_Analyze(t *testing.T) {
	snap := &domain.Snapshot{Customers: customers("Acme")}
	recent := []domain.ConversationTurn{{Text: "Peça nova"}}

	intent, entities, signal := NewClassifier().Analyze("valor do Acme R$ 12,50", snap, recent)

	if intent.Tag != domain.IntentSpecificClient {
		t.Errorf("expected specific_client, got %s", intent.Tag)
	}
	if entities.MonetaryValue == nil || *entities.MonetaryValue != 12.5 {
		t.Errorf("expected monetary 12.5, got %v", entities.MonetaryValue)
	}
	if !signal.RecentPartTopic || signal.RecentCustomerTopic {
		t.Errorf("unexpected context signal: %+v", signal)
	}
}

func TestClassifier_UnrelatedWordsDoNotSetContext(t *testing.T) {
	c := NewClassifier()
	recent := []domain.ConversationTurn{{Speaker: domain.SpeakerAssistant, Text: "Fale com o departamento financeiro."}}

	if got := c.Classify("procurar filtro", nil, recent); got.Tag != domain.IntentGeneral {
		t.Errorf("expected %s, got %s", domain.IntentGeneral, got.Tag)
	}
}
