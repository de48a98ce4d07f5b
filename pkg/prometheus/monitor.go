package prometheus

import "github.com/prometheus/client_golang/prometheus"

// Monitor represents a Prometheus monitor
// It contains Prometheus registry and all available metrics
type Monitor struct {
	Registry *prometheus.Registry

	InvestecRequests      *prometheus.CounterVec
	InvestecTokenRefresh  *prometheus.CounterVec
	ChatRequests          *prometheus.CounterVec
	AnthropicInputTokens  *prometheus.CounterVec
	AnthropicOutputTokens *prometheus.CounterVec
	OpenAiInputTokens     *prometheus.CounterVec
	OpenAiOutputTokens    *prometheus.CounterVec
}

// New creates a new Monitor
func New() *Monitor {
	reg := prometheus.NewRegistry()
	monitor := &Monitor{
		Registry: reg,

		InvestecRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investec_api_requests_total",
			Help: "Requests against the Investec API by operation and status",
		}, []string{"operation", "status"}),

		InvestecTokenRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investec_token_refresh_total",
			Help: "OAuth2 token refreshes by result",
		}, []string{"result"}),

		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_chat_requests_total",
			Help: "Chat requests handled by the agent",
		}, []string{}),

		AnthropicInputTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_anthropic_input_tokens",
			Help: "Total number of input tokens billed by Anthropic",
		}, []string{}),

		AnthropicOutputTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_anthropic_output_tokens",
			Help: "Total number of output tokens billed by Anthropic",
		}, []string{}),

		OpenAiInputTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_openai_input_tokens",
			Help: "Total number of input tokens billed by OpenAI",
		}, []string{}),

		OpenAiOutputTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_openai_output_tokens",
			Help: "Total number of output tokens billed by OpenAI",
		}, []string{}),
	}

	reg.MustRegister(
		monitor.InvestecRequests,
		monitor.InvestecTokenRefresh,
		monitor.ChatRequests,
		monitor.AnthropicInputTokens,
		monitor.AnthropicOutputTokens,
		monitor.OpenAiInputTokens,
		monitor.OpenAiOutputTokens,
	)

	return monitor
}
