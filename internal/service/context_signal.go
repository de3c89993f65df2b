package service

import (
	"strings"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
)

// ContextWindow is how many trailing turns feed the context signal.
const ContextWindow = 3

// The variants are listed explicitly; the analyzer does not fold case.
var (
	customerVariants = []string{"cliente", "Cliente", "CLIENTE"}
	partVariants     = []string{"peça", "Peça", "PEÇA", "peca", "Peca", "PECA"}
)

// AnalyzeContext reports which topics were mentioned in the last
// ContextWindow turns, from either speaker.
func AnalyzeContext(recent []domain.ConversationTurn) domain.ContextSignal {
	if len(recent) > ContextWindow {
		recent = recent[len(recent)-ContextWindow:]
	}

	var sig domain.ContextSignal
	for _, t := range recent {
		if containsAnyVariant(t.Text, customerVariants) {
			sig.RecentCustomerTopic = true
		}
		if containsAnyVariant(t.Text, partVariants) {
			sig.RecentPartTopic = true
		}
	}
	return sig
}

func containsAnyVariant(text string, variants []string) bool {
	for _, v := range variants {
		if strings.Contains(text, v) {
			return true
		}
	}
	return false
}
