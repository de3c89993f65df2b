package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/observability"
	"github.com/boddenberg/ops-console-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/assistant")

// GenericErrorText is the only thing a user sees when a dispatch fails.
const GenericErrorText = "Desculpe, não consegui buscar essas informações agora. Tente novamente em instantes."

// Rand picks canned phrasings. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Console routes the assistant links to.
const (
	RouteClients    = "/clientes"
	RouteNewClient  = "/clientes/novo"
	RouteParts      = "/pecas"
	RouteNewPart    = "/pecas/nova"
	RouteServices   = "/servicos"
	RouteNewService = "/servicos/novo"
	RouteReports    = "/relatorios"
	RouteNewReport  = "/relatorios/novo"
	RouteInvoices   = "/notas-fiscais"
	RouteFinancial  = "/financeiro"
	RouteDashboard  = "/dashboard"
)

var (
	GreetingReplies = []string{
		"Olá! Como posso ajudar você hoje?",
		"Oi! Em que posso ser útil?",
		"Olá! Pergunte sobre clientes, peças, serviços ou relatórios.",
		"Oi! Estou aqui para ajudar com o console.",
	}
	ThanksReplies = []string{
		"Por nada! Precisando, é só chamar.",
		"Disponha! Estou por aqui.",
		"Fico feliz em ajudar!",
		"Imagina! Qualquer coisa, me avise.",
	}
)

// Dispatcher turns an Intent into a Response. Cached intents are answered
// from the snapshot; live-fetch intents read the catalog again. Dispatch never
// returns an error: every failure becomes one generic error Response and one
// call to Diagnostics.
type Dispatcher struct {
	catalog     port.CatalogFetcher
	diagnostics port.Diagnostics
	rand        Rand
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewDispatcher creates the dispatcher. A nil rnd uses the global source.
func NewDispatcher(
	catalog port.CatalogFetcher,
	diagnostics port.Diagnostics,
	rnd Rand,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Dispatcher {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Dispatcher{
		catalog:     catalog,
		diagnostics: diagnostics,
		rand:        rnd,
		metrics:     metrics,
		logger:      logger,
	}
}

// Dispatch answers intent. snap is the session snapshot used by cached
// intents; live-fetch intents ignore it.
func (d *Dispatcher) Dispatch(ctx context.Context, intent domain.Intent, text string, snap *domain.Snapshot) (resp domain.Response) {
	ctx, span := tracer.Start(ctx, "Dispatcher.Dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("intent", string(intent.Tag)))

	live := intent.Tag.IsLiveFetch()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			resp = d.fail(ctx, intent.Tag, fmt.Errorf("panic: %v", r))
		}
		d.metrics.IncrDispatch(live, resp.Error)
		d.metrics.RecordRequestDuration("dispatch", time.Since(start))
		d.logger.Debug("intent dispatched",
			zap.String("intent", string(intent.Tag)),
			zap.Bool("live", live),
			zap.Bool("error", resp.Error),
		)
	}()

	if live {
		r, err := d.dispatchLive(ctx, intent, text)
		if err != nil {
			return d.fail(ctx, intent.Tag, err)
		}
		return r
	}
	return d.dispatchCached(intent, snap)
}

func (d *Dispatcher) fail(ctx context.Context, t domain.IntentTag, err error) domain.Response {
	d.diagnostics.LogError(ctx, &domain.ErrDispatch{Intent: t, Err: err})
	return domain.Response{Text: GenericErrorText, Error: true}
}

// ============================================================
// Cached intents
// ============================================================

func (d *Dispatcher) dispatchCached(intent domain.Intent, snap *domain.Snapshot) domain.Response {
	if snap == nil {
		snap = &domain.Snapshot{}
	}
	in := Summarize(snap)

	switch intent.Tag {
	case domain.IntentGreeting:
		return domain.Response{Text: GreetingReplies[d.rand.Intn(len(GreetingReplies))]}
	case domain.IntentThanks:
		return domain.Response{Text: ThanksReplies[d.rand.Intn(len(ThanksReplies))]}
	case domain.IntentHelp:
		return domain.Response{Text: helpText}

	case domain.IntentSpecificClient:
		return specificClientResponse(intent.Payload)

	case domain.IntentCompareParts:
		return compareParts(in)
	case domain.IntentCompareServices:
		return compareServices(in)
	case domain.IntentCompareGeneral:
		return compareGeneral(in)

	case domain.IntentInsights:
		return insightsResponse(in)
	case domain.IntentAverage:
		return domain.Response{Text: fmt.Sprintf(
			"Preço médio das peças: %s (%d itens). Preço médio dos serviços: %s (%d itens).",
			brl(in.AvgPartPrice), in.Parts, brl(in.AvgService), in.Services,
		)}
	case domain.IntentFinancial:
		return domain.Response{
			Text: fmt.Sprintf(
				"Valor de catálogo: peças somam %s e serviços somam %s. Distribuição: %.1f%% peças, %.1f%% serviços.",
				brl(in.PartsTotal), brl(in.ServicesTotal), in.PartsShare, in.ServicesShare,
			),
			Action: &domain.ActionLink{Label: "Abrir financeiro", Route: RouteFinancial},
		}
	case domain.IntentCalculate:
		return calculateResponse(intent.Payload, in)
	case domain.IntentRecommendation:
		return recommendationResponse(in)

	case domain.IntentHowClient:
		return domain.Response{
			Text:   "Para cadastrar um cliente, abra Clientes, clique em \"Novo cliente\", preencha nome, CNPJ/CPF e contato e salve.",
			Action: &domain.ActionLink{Label: "Novo cliente", Route: RouteNewClient},
		}
	case domain.IntentHowNF:
		return domain.Response{
			Text:   "Para emitir uma nota fiscal, abra Notas Fiscais, escolha o cliente, adicione peças e serviços e confirme a emissão.",
			Action: &domain.ActionLink{Label: "Notas fiscais", Route: RouteInvoices},
		}
	case domain.IntentHowReport:
		return domain.Response{
			Text:   "Para criar um relatório técnico, abra Relatórios, clique em \"Novo relatório\", selecione o cliente e descreva o atendimento.",
			Action: &domain.ActionLink{Label: "Novo relatório", Route: RouteNewReport},
		}
	case domain.IntentHowGeneral:
		return domain.Response{Text: "Posso explicar como cadastrar clientes, emitir notas fiscais ou criar relatórios. Sobre qual deles você quer saber?"}

	case domain.IntentClients:
		return domain.Response{
			Text:   fmt.Sprintf("Há %d clientes carregados. Pergunte por um nome ou peça para buscar.", in.Customers),
			Action: &domain.ActionLink{Label: "Ver clientes", Route: RouteClients},
		}
	case domain.IntentReports:
		return domain.Response{
			Text:   "Os relatórios técnicos mais recentes estão na tela de Relatórios.",
			Action: &domain.ActionLink{Label: "Ver relatórios", Route: RouteReports},
		}
	case domain.IntentCreateClient:
		return createResponse("cliente", "Novo cliente", RouteNewClient)
	case domain.IntentCreatePart:
		return createResponse("peça", "Nova peça", RouteNewPart)
	case domain.IntentCreateService:
		return createResponse("serviço", "Novo serviço", RouteNewService)
	case domain.IntentCreateReport:
		return createResponse("relatório", "Novo relatório", RouteNewReport)
	}

	return domain.Response{Text: "Não entendi muito bem. Você pode perguntar, por exemplo, \"quantos clientes temos?\" ou \"qual a peça mais cara?\"."}
}

const helpText = "Posso ajudar com:\n" +
	"• Clientes: \"quantos clientes temos?\", \"buscar cliente Silva\"\n" +
	"• Peças e serviços: \"qual a peça mais cara?\", \"preço médio dos serviços\"\n" +
	"• Análises: \"análise do catálogo\", \"recomendações\"\n" +
	"• Como fazer: \"como emitir nota fiscal?\", \"como criar relatório?\""

func specificClientResponse(p *domain.IntentPayload) domain.Response {
	if p == nil || len(p.Customers) == 0 {
		return domain.Response{Text: "Não encontrei esse cliente."}
	}
	if len(p.Customers) > 1 {
		names := make([]string, len(p.Customers))
		for i, c := range p.Customers {
			names[i] = c.DisplayName()
		}
		return domain.Response{
			Text:   fmt.Sprintf("Encontrei %d clientes com esse nome: %s. Qual deles?", len(names), strings.Join(names, ", ")),
			Action: &domain.ActionLink{Label: "Ver clientes", Route: RouteClients},
		}
	}

	c := p.Customers[0]
	var b strings.Builder
	b.WriteString(c.DisplayName())
	if c.LegalName != "" && c.LegalName != c.DisplayName() {
		fmt.Fprintf(&b, " (%s)", c.LegalName)
	}
	if c.TaxID != "" {
		fmt.Fprintf(&b, "\nCNPJ/CPF: %s", c.TaxID)
	}
	if c.Phone != "" {
		fmt.Fprintf(&b, "\nTelefone: %s", c.Phone)
	}
	if c.Email != "" {
		fmt.Fprintf(&b, "\nE-mail: %s", c.Email)
	}
	if c.Address != "" {
		fmt.Fprintf(&b, "\nEndereço: %s", c.Address)
	}
	return domain.Response{
		Text:   b.String(),
		Action: &domain.ActionLink{Label: "Abrir cliente", Route: RouteClients + "/" + c.ID},
	}
}

func compareParts(in Insights) domain.Response {
	if in.TopPart == nil {
		return domain.Response{Text: "Ainda não há peças cadastradas para comparar."}
	}
	return domain.Response{
		Text: fmt.Sprintf("Peça mais cara: %s (%s). Mais barata: %s (%s).",
			in.TopPart.Name, brl(PartPrice(*in.TopPart)),
			in.CheapPart.Name, brl(PartPrice(*in.CheapPart))),
		Action: &domain.ActionLink{Label: "Ver peças", Route: RouteParts},
	}
}

func compareServices(in Insights) domain.Response {
	if in.TopService == nil {
		return domain.Response{Text: "Ainda não há serviços cadastrados para comparar."}
	}
	return domain.Response{
		Text: fmt.Sprintf("Serviço mais caro: %s (%s). Mais barato: %s (%s).",
			in.TopService.Name, brl(ServicePrice(*in.TopService)),
			in.CheapService.Name, brl(ServicePrice(*in.CheapService))),
		Action: &domain.ActionLink{Label: "Ver serviços", Route: RouteServices},
	}
}

func compareGeneral(in Insights) domain.Response {
	var parts []string
	if in.TopPart != nil {
		parts = append(parts, fmt.Sprintf("peça mais cara: %s (%s)", in.TopPart.Name, brl(PartPrice(*in.TopPart))))
	}
	if in.TopService != nil {
		parts = append(parts, fmt.Sprintf("serviço mais caro: %s (%s)", in.TopService.Name, brl(ServicePrice(*in.TopService))))
	}
	if len(parts) == 0 {
		return domain.Response{Text: "Não há peças nem serviços para comparar ainda."}
	}
	return domain.Response{Text: "Comparativo do catálogo: " + strings.Join(parts, "; ") + "."}
}

func insightsResponse(in Insights) domain.Response {
	var b strings.Builder
	fmt.Fprintf(&b, "Análise do catálogo: %d clientes, %d peças e %d serviços.", in.Customers, in.Parts, in.Services)
	fmt.Fprintf(&b, "\nPreço médio: peças %s, serviços %s.", brl(in.AvgPartPrice), brl(in.AvgService))
	if in.TopPart != nil {
		fmt.Fprintf(&b, "\nPeça de maior valor: %s (%s).", in.TopPart.Name, brl(PartPrice(*in.TopPart)))
	}
	if in.TopService != nil {
		fmt.Fprintf(&b, "\nServiço de maior valor: %s (%s).", in.TopService.Name, brl(ServicePrice(*in.TopService)))
	}
	fmt.Fprintf(&b, "\nDistribuição do valor de catálogo: %.1f%% peças, %.1f%% serviços.", in.PartsShare, in.ServicesShare)
	return domain.Response{
		Text:   b.String(),
		Action: &domain.ActionLink{Label: "Abrir dashboard", Route: RouteDashboard},
	}
}

func calculateResponse(p *domain.IntentPayload, in Insights) domain.Response {
	if p == nil || p.Numero == nil {
		return domain.Response{Text: "Informe uma quantidade para eu calcular, por exemplo \"quanto custam 3 peças?\"."}
	}
	n := float64(*p.Numero)
	return domain.Response{Text: fmt.Sprintf(
		"Estimativa para %d unidades: %s em peças (média de %s cada) ou %s em serviços (média de %s cada).",
		*p.Numero, brl(n*in.AvgPartPrice), brl(in.AvgPartPrice), brl(n*in.AvgService), brl(in.AvgService),
	)}
}

func recommendationResponse(in Insights) domain.Response {
	switch {
	case in.Customers == 0:
		return domain.Response{
			Text:   "Comece cadastrando seus clientes: com eles posso sugerir ações mais úteis.",
			Action: &domain.ActionLink{Label: "Novo cliente", Route: RouteNewClient},
		}
	case in.Parts == 0 && in.Services == 0:
		return domain.Response{
			Text:   "Cadastre peças e serviços para acompanhar valores e emitir notas fiscais mais rápido.",
			Action: &domain.ActionLink{Label: "Nova peça", Route: RouteNewPart},
		}
	case in.ServicesShare < 30:
		return domain.Response{Text: fmt.Sprintf(
			"Serviços representam só %.1f%% do valor de catálogo. Vale revisar a tabela de serviços ou criar pacotes com peças.",
			in.ServicesShare,
		)}
	}
	return domain.Response{Text: fmt.Sprintf(
		"Catálogo equilibrado (%.1f%% peças, %.1f%% serviços). Revise periodicamente a margem das peças de maior valor.",
		in.PartsShare, in.ServicesShare,
	)}
}

func createResponse(what, label, route string) domain.Response {
	return domain.Response{
		Text:   fmt.Sprintf("Claro! Abra o formulário para cadastrar um(a) novo(a) %s.", what),
		Action: &domain.ActionLink{Label: label, Route: route},
	}
}

// brl formats v as a price with two decimals and a dot separator.
func brl(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

// ============================================================
// Live-fetch intents
// ============================================================

// liveData holds the arrays fetched for one dispatch.
type liveData struct {
	customers []domain.Customer
	parts     []domain.Part
	services  []domain.Service
}

func (d *Dispatcher) fetch(ctx context.Context, customers, parts, services bool) (*liveData, error) {
	ctx, span := tracer.Start(ctx, "Dispatcher.fetch")
	defer span.End()

	var data liveData
	g, gCtx := errgroup.WithContext(ctx)

	if customers {
		d.goFetch(g, "customers", func() (err error) {
			data.customers, err = d.catalog.ListCustomers(gCtx)
			return err
		})
	}
	if parts {
		d.goFetch(g, "parts", func() (err error) {
			data.parts, err = d.catalog.ListParts(gCtx)
			return err
		})
	}
	if services {
		d.goFetch(g, "services", func() (err error) {
			data.services, err = d.catalog.ListServices(gCtx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// goFetch runs one catalog read on g. A panic in the adapter is turned into
// an error, since it happens outside the goroutine that Dispatch recovers in.
func (d *Dispatcher) goFetch(g *errgroup.Group, what string, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
			if err != nil {
				d.metrics.IncrExternalError(what)
				err = fmt.Errorf("%s fetch: %w", what, err)
			}
		}()
		return fn()
	})
}

func (d *Dispatcher) dispatchLive(ctx context.Context, intent domain.Intent, text string) (domain.Response, error) {
	switch intent.Tag {
	case domain.IntentCountClients:
		data, err := d.fetch(ctx, true, false, false)
		if err != nil {
			return domain.Response{}, err
		}
		return domain.Response{
			Text:   fmt.Sprintf("Você tem %d clientes cadastrados.", len(data.customers)),
			Action: &domain.ActionLink{Label: "Ver clientes", Route: RouteClients},
		}, nil

	case domain.IntentCountParts:
		data, err := d.fetch(ctx, false, true, false)
		if err != nil {
			return domain.Response{}, err
		}
		return domain.Response{
			Text:   fmt.Sprintf("Você tem %d peças cadastradas.", len(data.parts)),
			Action: &domain.ActionLink{Label: "Ver peças", Route: RouteParts},
		}, nil

	case domain.IntentCountServices:
		data, err := d.fetch(ctx, false, false, true)
		if err != nil {
			return domain.Response{}, err
		}
		return domain.Response{
			Text:   fmt.Sprintf("Você tem %d serviços cadastrados.", len(data.services)),
			Action: &domain.ActionLink{Label: "Ver serviços", Route: RouteServices},
		}, nil

	case domain.IntentStats:
		data, err := d.fetch(ctx, true, true, true)
		if err != nil {
			return domain.Response{}, err
		}
		return domain.Response{
			Text: fmt.Sprintf("Resumo atual: %d clientes, %d peças e %d serviços cadastrados.",
				len(data.customers), len(data.parts), len(data.services)),
			Action: &domain.ActionLink{Label: "Abrir dashboard", Route: RouteDashboard},
		}, nil

	case domain.IntentParts:
		data, err := d.fetch(ctx, false, true, false)
		if err != nil {
			return domain.Response{}, err
		}
		text := fmt.Sprintf("Você tem %d peças cadastradas.", len(data.parts))
		if top, ok := MaxBy(data.parts, PartPrice); ok {
			text += fmt.Sprintf(" A mais cara é %s (%s).", top.Name, brl(PartPrice(top)))
		}
		return domain.Response{Text: text, Action: &domain.ActionLink{Label: "Ver peças", Route: RouteParts}}, nil

	case domain.IntentServices:
		data, err := d.fetch(ctx, false, false, true)
		if err != nil {
			return domain.Response{}, err
		}
		text := fmt.Sprintf("Você tem %d serviços cadastrados.", len(data.services))
		if top, ok := MaxBy(data.services, ServicePrice); ok {
			text += fmt.Sprintf(" O mais caro é %s (%s).", top.Name, brl(ServicePrice(top)))
		}
		return domain.Response{Text: text, Action: &domain.ActionLink{Label: "Ver serviços", Route: RouteServices}}, nil

	case domain.IntentRecentClients:
		data, err := d.fetch(ctx, true, false, false)
		if err != nil {
			return domain.Response{}, err
		}
		if len(data.customers) == 0 {
			return domain.Response{Text: "Ainda não há clientes cadastrados."}, nil
		}
		recent := lastN(data.customers, 5)
		return domain.Response{
			Text:   "Clientes mais recentes: " + joinNames(recent, domain.Customer.DisplayName) + ".",
			Action: &domain.ActionLink{Label: "Ver clientes", Route: RouteClients},
		}, nil

	case domain.IntentSearchClient:
		data, err := d.fetch(ctx, true, false, false)
		if err != nil {
			return domain.Response{}, err
		}
		return searchResponse(text, data.customers, domain.Customer.DisplayName, "clientes", RouteClients), nil

	case domain.IntentSearchPart:
		data, err := d.fetch(ctx, false, true, false)
		if err != nil {
			return domain.Response{}, err
		}
		return searchResponse(text, data.parts, func(p domain.Part) string { return p.Name }, "peças", RouteParts), nil

	case domain.IntentSearchService:
		data, err := d.fetch(ctx, false, false, true)
		if err != nil {
			return domain.Response{}, err
		}
		return searchResponse(text, data.services, func(s domain.Service) string { return s.Name }, "serviços", RouteServices), nil
	}

	return domain.Response{}, fmt.Errorf("no live handler for intent %q", intent.Tag)
}

// searchTerms returns the words of text that are not assistant vocabulary.
func searchTerms(text string) []string {
	words := strings.Fields(normalize(text))
	for _, l := range []lexicon{searchVerbs, searchFillers, customerTopic, partTopic, serviceTopic} {
		words = l.strip(words)
	}
	terms := words[:0:0]
	for _, w := range words {
		if len([]rune(w)) >= 3 {
			terms = append(terms, w)
		}
	}
	return terms
}

func searchResponse[T any](text string, items []T, name func(T) string, noun, route string) domain.Response {
	action := &domain.ActionLink{Label: "Ver " + noun, Route: route}
	terms := searchTerms(text)

	var found []T
	if len(terms) > 0 {
		for _, it := range items {
			n := strings.ToLower(name(it))
			for _, t := range terms {
				if strings.Contains(n, t) {
					found = append(found, it)
					break
				}
			}
		}
	}

	switch {
	case len(found) > 0:
		return domain.Response{
			Text:   fmt.Sprintf("Encontrei %d %s: %s.", len(found), noun, joinNames(firstN(found, 5), name)),
			Action: action,
		}
	case len(terms) > 0:
		return domain.Response{
			Text:   fmt.Sprintf("Não encontrei %s com \"%s\" entre os %d cadastrados.", noun, strings.Join(terms, " "), len(items)),
			Action: action,
		}
	case len(items) == 0:
		return domain.Response{Text: fmt.Sprintf("Não há %s cadastrados.", noun), Action: action}
	}
	return domain.Response{
		Text:   fmt.Sprintf("Há %d %s cadastrados. Alguns: %s.", len(items), noun, joinNames(firstN(items, 5), name)),
		Action: action,
	}
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func lastN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[len(items)-n:]
	}
	return items
}

func joinNames[T any](items []T, name func(T) string) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = name(it)
	}
	return strings.Join(names, ", ")
}
