package realtime

import (
	"chat-client/contract"
	"encoding/json"
)

// Subprotocol is the graphql-ws protocol name negotiated during the upgrade.
const Subprotocol = "graphql-transport-ws"

const (
	typeConnectionInit = "connection_init"
	typeConnectionAck  = "connection_ack"
	typePing           = "ping"
	typePong           = "pong"
	typeSubscribe      = "subscribe"
	typeNext           = "next"
	typeError          = "error"
	typeComplete       = "complete"
)

type message struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type nextPayload struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

func initMessage(params map[string]any) (message, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return message{}, err
	}
	return message{Type: typeConnectionInit, Payload: payload}, nil
}

func subscribeMessage(sub contract.Subscription) (message, error) {
	payload, err := json.Marshal(subscribePayload{
		OperationName: sub.OperationName,
		Query:         sub.Query,
		Variables:     sub.Variables,
	})
	if err != nil {
		return message{}, err
	}
	return message{ID: sub.ID, Type: typeSubscribe, Payload: payload}, nil
}

func errorMessages(errs []graphqlError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}
