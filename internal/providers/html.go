package providers

import (
	"log/slog"

	"github.com/dharmasatrya/flightcrawl/internal/crawler"
	"github.com/dharmasatrya/flightcrawl/internal/models"
	"github.com/dharmasatrya/flightcrawl/internal/parser"
)

type HTMLProvider struct {
	name         string
	waitSelector string
	parser       *parser.HTMLParser
}

func NewHTMLProvider(name string, logger *slog.Logger) *HTMLProvider {
	p := parser.NewHTMLParser(logger)
	return &HTMLProvider{
		name:         name,
		waitSelector: p.ContainerSelector,
		parser:       p,
	}
}

func (p *HTMLProvider) Name() string {
	return p.name
}

func (p *HTMLProvider) WaitSelector() string {
	return p.waitSelector
}

func (p *HTMLProvider) BuildURL(template string, combo models.DateCombination) (string, error) {
	return BuildURL(template, combo)
}

func (p *HTMLProvider) Parse(res *crawler.Result) (*parser.Result, error) {
	out, err := p.parser.Parse(res.HTML)
	if err != nil {
		return nil, NewProviderError(p.name, err)
	}
	return out, nil
}
