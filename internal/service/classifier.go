package service

import (
	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
)

// classifyInput is everything a rule may look at. Rules must not mutate it.
type classifyInput struct {
	norm     string
	entities domain.EntityExtraction
	context  domain.ContextSignal
}

// rule is one step of the cascade. build is only called after match held.
type rule struct {
	name  string
	match func(in *classifyInput) bool
	build func(in *classifyInput) domain.Intent
}

// Classifier resolves an utterance to an Intent by walking an ordered list of
// rules. The first rule whose predicate holds wins. It holds no state.
type Classifier struct {
	rules []rule
}

// NewClassifier returns the classifier with the console's rule order.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules()}
}

// Rules lists rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

// Classify is a pure function of its arguments.
func (c *Classifier) Classify(text string, snap *domain.Snapshot, recent []domain.ConversationTurn) domain.Intent {
	intent, _, _ := c.Analyze(text, snap, recent)
	return intent
}

// Analyze classifies text and also returns the entities and context signal
// the decision was based on.
func (c *Classifier) Analyze(text string, snap *domain.Snapshot, recent []domain.ConversationTurn) (domain.Intent, domain.EntityExtraction, domain.ContextSignal) {
	var customers []domain.Customer
	if snap != nil {
		customers = snap.Customers
	}

	in := &classifyInput{
		norm:     normalize(text),
		entities: ExtractEntities(text, customers),
		context:  AnalyzeContext(recent),
	}

	for _, r := range c.rules {
		if r.match(in) {
			return r.build(in), in.entities, in.context
		}
	}
	return domain.Intent{Tag: domain.IntentGeneral}, in.entities, in.context
}

func tag(t domain.IntentTag) func(*classifyInput) domain.Intent {
	return func(*classifyInput) domain.Intent { return domain.Intent{Tag: t} }
}

func defaultRules() []rule {
	return []rule{
		{
			name:  "specific_client",
			match: func(in *classifyInput) bool { return len(in.entities.CandidateCustomers) > 0 },
			build: func(in *classifyInput) domain.Intent {
				return domain.Intent{
					Tag:     domain.IntentSpecificClient,
					Payload: &domain.IntentPayload{Customers: in.entities.CandidateCustomers},
				}
			},
		},
		{
			name:  "compare",
			match: func(in *classifyInput) bool { return compareWords.matches(in.norm) },
			build: func(in *classifyInput) domain.Intent {
				switch {
				case partTopic.matches(in.norm):
					return domain.Intent{Tag: domain.IntentCompareParts}
				case serviceTopic.matches(in.norm):
					return domain.Intent{Tag: domain.IntentCompareServices}
				}
				return domain.Intent{Tag: domain.IntentCompareGeneral}
			},
		},
		{
			name:  "insights",
			match: func(in *classifyInput) bool { return analyticsWords.matches(in.norm) },
			build: tag(domain.IntentInsights),
		},
		{
			name:  "value",
			match: func(in *classifyInput) bool { return valueWords.matches(in.norm) },
			build: func(in *classifyInput) domain.Intent {
				switch {
				case in.entities.IntegerValue != nil:
					return domain.Intent{
						Tag:     domain.IntentCalculate,
						Payload: &domain.IntentPayload{Numero: in.entities.IntegerValue},
					}
				case averageWords.matches(in.norm):
					return domain.Intent{Tag: domain.IntentAverage}
				}
				return domain.Intent{Tag: domain.IntentFinancial}
			},
		},
		{
			name:  "greeting",
			match: func(in *classifyInput) bool { return greetingWords.leads(in.norm) },
			build: tag(domain.IntentGreeting),
		},
		{
			name:  "thanks",
			match: func(in *classifyInput) bool { return thanksWords.matches(in.norm) },
			build: tag(domain.IntentThanks),
		},
		{
			name:  "help",
			match: func(in *classifyInput) bool { return helpWords.matches(in.norm) },
			build: tag(domain.IntentHelp),
		},
		{
			name:  "how_to",
			match: func(in *classifyInput) bool { return howToWords.matches(in.norm) },
			build: func(in *classifyInput) domain.Intent {
				switch {
				case customerTopic.matches(in.norm):
					return domain.Intent{Tag: domain.IntentHowClient}
				case invoiceTopic.matches(in.norm):
					return domain.Intent{Tag: domain.IntentHowNF}
				case reportTopic.matches(in.norm):
					return domain.Intent{Tag: domain.IntentHowReport}
				}
				return domain.Intent{Tag: domain.IntentHowGeneral}
			},
		},
		{
			name:  "recommendation",
			match: func(in *classifyInput) bool { return recommendationWords.matches(in.norm) },
			build: tag(domain.IntentRecommendation),
		},
		{
			name:  "count",
			match: func(in *classifyInput) bool { return howManyWords.matches(in.norm) },
			build: func(in *classifyInput) domain.Intent {
				switch {
				case customerTopic.matches(in.norm):
					return domain.Intent{Tag: domain.IntentCountClients}
				case partTopic.matches(in.norm):
					return domain.Intent{Tag: domain.IntentCountParts}
				case serviceTopic.matches(in.norm):
					return domain.Intent{Tag: domain.IntentCountServices}
				}
				return domain.Intent{Tag: domain.IntentStats}
			},
		},
		{
			name:  "recent",
			match: func(in *classifyInput) bool { return recencyWords.matches(in.norm) },
			build: func(in *classifyInput) domain.Intent {
				if customerTopic.matches(in.norm) {
					return domain.Intent{Tag: domain.IntentRecentClients}
				}
				return domain.Intent{Tag: domain.IntentReports}
			},
		},
		{
			name:  "action_verb",
			match: func(in *classifyInput) bool { _, ok := resolveAction(in); return ok },
			build: func(in *classifyInput) domain.Intent {
				t, _ := resolveAction(in)
				return domain.Intent{Tag: t}
			},
		},
		{
			name:  "topic",
			match: func(in *classifyInput) bool { _, ok := resolveTopic(in.norm); return ok },
			build: func(in *classifyInput) domain.Intent {
				t, _ := resolveTopic(in.norm)
				return domain.Intent{Tag: t}
			},
		},
	}
}

// resolveAction maps a search/create verb to a sub-intent. An explicit topic
// keyword wins; otherwise the conversation context decides. A verb with no
// resolvable topic does not match.
func resolveAction(in *classifyInput) (domain.IntentTag, bool) {
	if searchVerbs.matches(in.norm) {
		switch {
		case customerTopic.matches(in.norm):
			return domain.IntentSearchClient, true
		case partTopic.matches(in.norm):
			return domain.IntentSearchPart, true
		case serviceTopic.matches(in.norm):
			return domain.IntentSearchService, true
		case in.context.RecentCustomerTopic:
			return domain.IntentSearchClient, true
		case in.context.RecentPartTopic:
			return domain.IntentSearchPart, true
		}
	}
	if createVerbs.matches(in.norm) {
		switch {
		case customerTopic.matches(in.norm):
			return domain.IntentCreateClient, true
		case partTopic.matches(in.norm):
			return domain.IntentCreatePart, true
		case serviceTopic.matches(in.norm):
			return domain.IntentCreateService, true
		case reportTopic.matches(in.norm):
			return domain.IntentCreateReport, true
		case in.context.RecentCustomerTopic:
			return domain.IntentCreateClient, true
		case in.context.RecentPartTopic:
			return domain.IntentCreatePart, true
		}
	}
	return "", false
}

func resolveTopic(norm string) (domain.IntentTag, bool) {
	switch {
	case customerTopic.matches(norm):
		return domain.IntentClients, true
	case statsTopic.matches(norm):
		return domain.IntentStats, true
	case partTopic.matches(norm):
		return domain.IntentParts, true
	case serviceTopic.matches(norm):
		return domain.IntentServices, true
	case reportTopic.matches(norm):
		return domain.IntentReports, true
	case financialTopic.matches(norm):
		return domain.IntentFinancial, true
	}
	return "", false
}
