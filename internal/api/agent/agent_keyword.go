package agent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

var _ Extractor = (*KeywordExtractor)(nil)

// tripTypes are tried in order; the first one mentioned wins.
var tripTypes = []string{"beach", "ski", "skiing", "culture", "food", "adventure", "shopping", "nature", "romance", "honeymoon", "luxury"}

var (
	wordPattern   = regexp.MustCompile(`[a-z]+`)
	amountPattern = regexp.MustCompile(`\$\s*(\d[\d,]*(?:\.\d+)?)`)
	numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	adultsPattern = regexp.MustCompile(`(\d+)\s+adults?\b`)
	originPattern = regexp.MustCompile(`(?i)\bfrom\s+([a-z][a-z .'-]*?)\s*(?:\bto\b|,|\.|!|\?|$)`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// KeywordExtractor understands a fixed vocabulary and needs no remote model.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

func (k *KeywordExtractor) Name() string { return "keyword" }

func (k *KeywordExtractor) Extract(_ context.Context, session *types.AgentSession, message string) (*types.AgentReply, error) {
	params := session.Params
	applyKeywords(&params, message)
	applyAnswer(&params, session.PendingParam, message)

	missing := MissingParams(params)
	if len(missing) == 0 {
		return &types.AgentReply{
			Message:         "Perfect! " + searchSummary(params) + "\n\nLet me find the best flights for you...",
			ReadyToSearch:   true,
			ExtractedParams: params,
			MissingParams:   missing,
		}, nil
	}

	question := questionFor(missing[0], params)
	return &types.AgentReply{
		Message:         question,
		ExtractedParams: params,
		MissingParams:   missing,
		NextQuestion:    &question,
	}, nil
}

func applyKeywords(p *types.TripParams, message string) {
	lower := strings.ToLower(message)
	words := map[string]bool{}
	for _, w := range wordPattern.FindAllString(lower, -1) {
		words[w] = true
	}

	for _, tt := range tripTypes {
		if words[tt] {
			if tt == "skiing" {
				tt = "ski"
			}
			p.TripType = ptr(tt)
			break
		}
	}

	switch {
	case words["summer"]:
		p.OriginSeason = ptr(string(types.SeasonSummer))
	case words["winter"]:
		p.OriginSeason = ptr(string(types.SeasonWinter))
	case words["spring"]:
		p.OriginSeason = ptr(string(types.SeasonSpring))
	case words["fall"], words["autumn"]:
		p.OriginSeason = ptr(string(types.SeasonFall))
	}

	if words["family"] || words["kids"] || words["children"] {
		if p.Adults == nil {
			p.Adults = ptr(2)
		}
		if p.Children == nil {
			p.Children = ptr(2)
		}
	}

	switch {
	case words["cheap"] || words["budget"]:
		p.Budget = ptr(500.0)
	case words["luxury"] || words["premium"]:
		p.Budget = ptr(2000.0)
	}
	if m := amountPattern.FindStringSubmatch(message); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			p.Budget = &v
		}
	}

	switch {
	case words["business"]:
		p.CabinClass = ptr(string(types.CabinBusiness))
	case strings.Contains(lower, "first class"):
		p.CabinClass = ptr(string(types.CabinFirst))
	case p.CabinClass == nil:
		p.CabinClass = ptr(string(types.CabinEconomy))
	}

	if words["direct"] || words["nonstop"] {
		p.Stops = ptr(string(types.StopsDirectOnly))
	}

	switch {
	case strings.Contains(lower, "school break") || strings.Contains(lower, "summer vacation"):
		p.SchoolCalendar = ptr("US/Canada: Summer Break")
	case strings.Contains(lower, "spring break"):
		p.SchoolCalendar = ptr("US/Canada: Spring Break")
	case strings.Contains(lower, "winter break") || words["christmas"]:
		p.SchoolCalendar = ptr("US/Canada: Winter Break")
	}

	if m := adultsPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			p.Adults = &n
		}
	}
	if m := originPattern.FindStringSubmatch(message); m != nil {
		if origin := strings.TrimSpace(m[1]); origin != "" {
			p.Origin = &origin
		}
	}
}

// applyAnswer treats message as the answer to the question asked last turn.
func applyAnswer(p *types.TripParams, pending, message string) {
	answer := strings.TrimSpace(message)
	if answer == "" {
		return
	}
	switch pending {
	case paramOrigin:
		if p.Origin != nil {
			return
		}
		origin := strings.TrimSpace(strings.TrimRight(answer, ".!?"))
		if len(strings.Fields(origin)) <= 4 {
			p.Origin = &origin
		}
	case paramBudget:
		if m := numberPattern.FindString(answer); m != "" {
			if v, ok := parseAmount(m); ok {
				p.Budget = &v
			}
		}
	case paramAdults:
		if m := numberPattern.FindString(answer); m != "" {
			if n, err := strconv.Atoi(strings.ReplaceAll(m, ",", "")); err == nil && n > 0 {
				p.Adults = &n
			}
			return
		}
		for _, w := range wordPattern.FindAllString(strings.ToLower(answer), -1) {
			if n, ok := numberWords[w]; ok {
				p.Adults = &n
				return
			}
		}
	}
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
