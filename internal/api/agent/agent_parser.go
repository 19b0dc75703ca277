package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

const (
	paramOrigin = "origin"
	paramBudget = "budget"
	paramAdults = "adults"
)

// requiredParams are asked for in this order.
var requiredParams = []string{paramOrigin, paramBudget, paramAdults}

// cleanJSONResponse strips markdown code fences around a model response.
func cleanJSONResponse(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func parseReply(text string) (*types.AgentReply, error) {
	var reply types.AgentReply
	if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse agent reply: %w", err)
	}
	if strings.TrimSpace(reply.Message) == "" {
		return nil, fmt.Errorf("agent reply has no message")
	}
	return &reply, nil
}

// FallbackReply is returned when the extractor cannot produce a reply.
func FallbackReply() *types.AgentReply {
	return &types.AgentReply{
		Message:       "I'm having trouble understanding. Could you rephrase that?",
		MissingParams: append([]string(nil), requiredParams...),
		NextQuestion:  ptr(questionFor(paramOrigin, types.TripParams{})),
	}
}

// MissingParams lists the required parameters not yet known, in asking order.
func MissingParams(p types.TripParams) []string {
	missing := []string{}
	if p.Origin == nil || strings.TrimSpace(*p.Origin) == "" {
		missing = append(missing, paramOrigin)
	}
	if p.Budget == nil || *p.Budget <= 0 {
		missing = append(missing, paramBudget)
	}
	if p.Adults == nil || *p.Adults < 1 {
		missing = append(missing, paramAdults)
	}
	return missing
}

func questionFor(param string, p types.TripParams) string {
	switch param {
	case paramOrigin:
		return "Where will you be flying from?"
	case paramBudget:
		q := "What's your budget per person for flights?"
		if known := knownSoFar(p); known != "" {
			q += " (" + known + ")"
		}
		return q
	case paramAdults:
		return "How many adults are traveling?"
	}
	return ""
}

func knownSoFar(p types.TripParams) string {
	var parts []string
	if p.TripType != nil {
		parts = append(parts, *p.TripType+" trip")
	}
	if p.OriginSeason != nil {
		parts = append(parts, "during "+*p.OriginSeason)
	}
	if p.Children != nil && *p.Children > 0 {
		parts = append(parts, fmt.Sprintf("with %d children", *p.Children))
	}
	return strings.Join(parts, ", ")
}

// searchSummary describes a complete parameter set in one sentence.
func searchSummary(p types.TripParams) string {
	var parts []string
	if p.Adults != nil && *p.Adults > 0 {
		travelers := plural(*p.Adults, "adult", "adults")
		if p.Children != nil && *p.Children > 0 {
			travelers += " + " + plural(*p.Children, "child", "children")
		}
		parts = append(parts, travelers)
	}
	if p.Origin != nil {
		parts = append(parts, "from "+*p.Origin)
	}
	if p.TripType != nil {
		parts = append(parts, "for a "+*p.TripType+" trip")
	}
	if p.Budget != nil {
		parts = append(parts, fmt.Sprintf("within $%s/person budget", formatAmount(*p.Budget)))
	}
	if p.OriginSeason != nil {
		parts = append(parts, "during "+*p.OriginSeason)
	}
	return "I'll search for " + strings.Join(parts, ", ") + "."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

func ptr[T any](v T) *T { return &v }
