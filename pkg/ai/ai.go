package ai

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ruanvs/investec-agent/pkg/config"
	"github.com/ruanvs/investec-agent/pkg/investec"
	"github.com/ruanvs/investec-agent/pkg/prometheus"
	"github.com/ruanvs/investec-agent/pkg/utils"
)

// prompt is the soul of the assistant. It never contains account data -
// everything live comes through tools.
//
//go:embed ai.prompt
var prompt string

// the model decides when to stop using tools, but we do not trust it
// with an unbounded loop
const safetyLoopLimit = 10

func renderPrompt() string {
	return strings.ReplaceAll(prompt, "${datetime}", utils.FormatDate(time.Now()))
}

type Provider interface {
	GetResponse(history []ChatMessage) (Response, error)
}

type Ai struct {
	provider  string
	providers map[string]Provider
}

func NewAi(ctx context.Context, conf *config.Config, client *investec.Client, m *prometheus.Monitor, l *logrus.Logger) *Ai {
	return &Ai{
		provider: conf.AIProvider,
		providers: map[string]Provider{
			"openai":    NewOpenAi(ctx, conf, client, m, l),
			"anthropic": NewAnthropic(ctx, conf, client, m, l),
		},
	}
}

func (ai *Ai) GetResponse(history []ChatMessage) (Response, error) {
	p, ok := ai.providers[ai.provider]
	if !ok {
		return Response{}, fmt.Errorf("unknown provider: %s", ai.provider)
	}

	return p.GetResponse(history)
}

type ChatMessage struct {
	Text string `json:"text"`
	From string `json:"from"` // me means the user. Anything else is the assistant
}

type Response struct {
	Text string `json:"text"`
	Cost Cost   `json:"cost"`
}

type Cost struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

type SchemaType uint8

const (
	SchemaTypeObject SchemaType = iota
	SchemaTypeArray
	SchemaTypeBoolean
	SchemaTypeInteger
	SchemaTypeString
)

type Tool struct {
	Name        string
	Description string
	HasSchema   bool
	Schema      Property

	Fn func(string) (string, error)
}

type Property struct {
	Type        SchemaType
	Description string
	Properties  map[string]Property
	Enum        []interface{} // depends on the type
	Required    []string
}

// GetEnumAsStrings returns the Enum field as a slice of strings.
// it is useful for services which does support strings only (like Anthropic)
// basically we convert all values to strings
func (d *Property) GetEnumAsStrings() []string {
	if d.Enum == nil {
		return nil
	}

	ret := make([]string, len(d.Enum))
	for i, v := range d.Enum {
		ret[i] = fmt.Sprint(v)
	}

	return ret
}

const Me = "me" // user
