package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ruanvs/investec-agent/pkg/ai"
	"github.com/ruanvs/investec-agent/pkg/config"
	"github.com/ruanvs/investec-agent/pkg/prometheus"
	"github.com/ruanvs/investec-agent/pkg/store"
	"github.com/ruanvs/investec-agent/pkg/utils"
)

type HandlerRepository struct {
	ai      *ai.Ai
	storage store.Storage
	config  *config.Config
	monitor *prometheus.Monitor
	logger  *logrus.Logger

	startedAt time.Time
}

const defaultConversation = "default"

func conversationID(r *http.Request) string {
	if id := r.Header.Get("X-Conversation-Id"); id != "" {
		return id
	}

	return defaultConversation
}

func (hr *HandlerRepository) chatHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth != hr.config.Password {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		type input struct {
			Message string `json:"message"`
		}

		var data input
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			http.Error(w, "Could not read post body", http.StatusBadRequest)
			return
		}

		if data.Message == "" {
			http.Error(w, "Message is empty", http.StatusBadRequest)
			return
		}

		hr.monitor.ChatRequests.WithLabelValues().Inc()

		id := conversationID(r)
		conversation, err := hr.storage.GetConversation(id)
		if err != nil {
			hr.logger.Warnf("Could not load conversation %s: %v", id, err)
			http.Error(w, "Could not load conversation", http.StatusInternalServerError)
			return
		}

		history := make([]ai.ChatMessage, 0, len(conversation)+1)
		for _, msg := range conversation {
			from := "bot"
			if msg.Author == store.ConversationMessageAuthorUser {
				from = ai.Me
			}
			history = append(history, ai.ChatMessage{Text: msg.Message, From: from})
		}
		history = append(history, ai.ChatMessage{Text: data.Message, From: ai.Me})

		resp, err := hr.ai.GetResponse(history)
		if err != nil {
			hr.logger.Warnf("could not get response because %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		err = hr.storage.AddConversationMessage(id, store.ConversationMessage{
			ID:      uuid.New().String(),
			Message: data.Message,
			At:      time.Now(),
			Author:  store.ConversationMessageAuthorUser,
		})
		if err != nil {
			hr.logger.Errorf("Could not store user message: %v", err)
		}

		err = hr.storage.AddConversationMessage(id, store.ConversationMessage{
			ID:      uuid.New().String(),
			Message: resp.Text,
			At:      time.Now(),
			Author:  store.ConversationMessageAuthorBot,
		})
		if err != nil {
			hr.logger.Errorf("Could not store bot message: %v", err)
		}

		output, err := json.Marshal(resp)
		if err != nil {
			http.Error(w, "Could not marshal data", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err = w.Write(output); err != nil {
			hr.logger.Errorf("Could not write response: %v", err)
		}
	}
}

func (hr *HandlerRepository) chatResetHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth != hr.config.Password {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id := conversationID(r)
		if err := hr.storage.ResetConversation(id); err != nil {
			hr.logger.Errorf("Could not reset conversation %s: %v", id, err)
			http.Error(w, "Could not reset conversation", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(utils.GetOkJSON()); err != nil {
			hr.logger.Errorf("Could not write response: %v", err)
		}
	}
}

func (hr *HandlerRepository) statusHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		type output struct {
			Uptime   string `json:"uptime"`
			Provider string `json:"provider"`
			Sandbox  bool   `json:"sandbox"`
		}

		data := output{
			Uptime:   durafmt.Parse(time.Since(hr.startedAt)).LimitFirstN(2).String(),
			Provider: hr.config.AIProvider,
			Sandbox:  hr.config.UseSandbox,
		}

		res, err := json.Marshal(data)
		if err != nil {
			http.Error(w, "Could not marshal data to JSON", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err = w.Write(res); err != nil {
			hr.logger.Errorf("Could not write response: %v", err)
		}
	}
}

func (hr *HandlerRepository) healthHandler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(utils.GetOkJSON()); err != nil {
			hr.logger.Errorf("Could not write response: %v", err)
		}
	}
}

// metricsHandler returns HTTP handler for metrics endpoint
func (hr *HandlerRepository) metricsHandler() http.Handler {
	return promhttp.HandlerFor(
		hr.monitor.Registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			Registry:          hr.monitor.Registry,
		},
	)
}
