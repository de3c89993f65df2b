package service

import (
	"strings"
	"unicode"
)

// ============================================================
// Lexicon: vocabulário fixo usado pelo classificador
// ============================================================
//
// Entries are matched against a normalized copy of the utterance (lowercase,
// punctuation folded to single spaces, padded with one space on each side).
// A plain entry must match whole words; an entry ending in "*" is a stem and
// matches any word that starts with it ("client*" matches "clientes").

type lexicon []string

var (
	customerTopic  = lexicon{"client*", "customer*"}
	partTopic      = lexicon{"peça*", "peca*", "part", "parts", "produto*", "estoque"}
	serviceTopic   = lexicon{"serviço*", "servico*", "service*"}
	reportTopic    = lexicon{"relatório*", "relatorio*", "report*", "laudo*"}
	invoiceTopic   = lexicon{"nf", "nfe", "nf e", "nota fiscal", "notas fiscais", "invoice*", "fatura*"}
	financialTopic = lexicon{"financ*", "faturamento", "receita*", "revenue", "dinheiro"}
	statsTopic     = lexicon{"estatística*", "estatistica*", "stats", "statistic*", "resumo", "dashboard", "visão geral", "visao geral", "overview"}

	compareWords = lexicon{
		"mais caro", "mais cara", "mais barat*", "maior", "menor", "melhor", "pior",
		"compar*", "ranking", "versus", "vs",
		"most expensive", "cheapest", "highest", "lowest", "best", "worst",
	}

	analyticsWords = lexicon{
		"análise", "analise", "analisar", "analy*",
		"tendência*", "tendencia*", "trend*",
		"padrão", "padrao", "padrões", "padroes", "pattern*", "insight*",
	}
	valueWords = lexicon{
		"quanto custa", "quanto custam", "quanto vale", "quanto é", "quanto e",
		"how much", "preço*", "preco*", "price*", "total", "valor*",
		"média", "media", "average",
	}
	averageWords = lexicon{"média", "media", "médio", "medio", "average"}

	greetingWords = lexicon{"oi", "olá", "ola", "bom dia", "boa tarde", "boa noite", "e aí", "e ai", "eai", "hello", "hi", "hey"}
	thanksWords   = lexicon{"obrigad*", "valeu", "grato", "grata", "agradeço", "agradeco", "thanks", "thank you", "thx"}
	helpWords     = lexicon{"ajuda", "ajude", "socorro", "help", "o que você faz", "o que voce faz", "what can you do", "comandos"}
	howToWords    = lexicon{"como", "how to", "how do", "how can"}

	recommendationWords = lexicon{"recomend*", "recommend*", "sugest*", "suggest*", "dica*", "conselho*", "o que devo", "should i"}
	howManyWords        = lexicon{"quantos", "quantas", "quantidade", "número de", "numero de", "how many", "number of"}
	recencyWords        = lexicon{"recente*", "último*", "ultimo*", "última*", "ultima*", "recent*", "latest", "novos"}

	searchVerbs = lexicon{
		"busca*", "procur*", "encontr*", "pesquis*", "localiz*",
		"mostr*", "list*", "search*", "find", "look up", "lookup", "show",
	}
	// searchFillers never narrow a search.
	searchFillers = lexicon{
		"com", "sem", "nome", "chamad*", "pode", "poderia", "por", "favor", "pelo", "pela",
		"para", "que", "qual", "quais", "algum*", "todos", "todas", "tem", "temos",
		"dos", "das", "uma", "mim", "meu", "minha", "esse", "essa", "este", "esta",
		"named", "called", "with", "for", "the", "all", "any",
	}
	createVerbs = lexicon{"criar", "crie", "cria", "cadastr*", "adicion*", "registr*", "novo", "nova", "create", "add", "new"}
)

// normalize lowercases text and folds everything that is not a letter or a
// digit into single spaces, padding the result with one space on each side.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

// matches reports whether the normalized text contains any lexicon entry.
func (l lexicon) matches(norm string) bool {
	for _, entry := range l {
		if matchEntry(norm, entry) {
			return true
		}
	}
	return false
}

// leads reports whether the normalized text starts with a lexicon entry.
func (l lexicon) leads(norm string) bool {
	for _, entry := range l {
		if stem, ok := strings.CutSuffix(entry, "*"); ok {
			if strings.HasPrefix(norm, " "+stem) {
				return true
			}
			continue
		}
		if strings.HasPrefix(norm, " "+entry+" ") {
			return true
		}
	}
	return false
}

// strip removes every word of the normalized text that a lexicon entry
// matches and returns the remaining words.
func (l lexicon) strip(words []string) []string {
	out := words[:0:0]
	for _, w := range words {
		if !l.matches(" " + w + " ") {
			out = append(out, w)
		}
	}
	return out
}

func matchEntry(norm, entry string) bool {
	if stem, ok := strings.CutSuffix(entry, "*"); ok {
		return strings.Contains(norm, " "+stem)
	}
	return strings.Contains(norm, " "+entry+" ")
}
