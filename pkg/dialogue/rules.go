package dialogue

import (
	"fmt"
	"strings"
)

// Intent names the rule that produced a reply.
type Intent string

const (
	IntentGreeting          Intent = "GREETING"
	IntentNameSelfReference Intent = "NAME_SELF_REFERENCE"
	IntentNameQuestion      Intent = "NAME_QUESTION"
	IntentHelp              Intent = "HELP"
	IntentWeather           Intent = "WEATHER"
	IntentTimeDate          Intent = "TIME_DATE"
	IntentScheduling        Intent = "SCHEDULING"
	IntentGratitude         Intent = "GRATITUDE"
	IntentFarewell          Intent = "FAREWELL"
	IntentContactInfo       Intent = "CONTACT_INFO"
	IntentFallback          Intent = "FALLBACK"
)

// Precedence is the evaluation order of the rule table. The first matching rule
// wins, so a rule must come before any broader rule that would also match its
// inputs (name-with-self-reference before the bare name question).
var Precedence = []Intent{
	IntentGreeting,
	IntentNameSelfReference,
	IntentNameQuestion,
	IntentHelp,
	IntentWeather,
	IntentTimeDate,
	IntentScheduling,
	IntentGratitude,
	IntentFarewell,
	IntentContactInfo,
	IntentFallback,
}

// Reply texts
const (
	ReplyGreeting          = "Hello! I'm your AI calling agent. How can I help you today? I can answer questions, gather information, or just have a conversation with you."
	ReplyNameSelfReference = "Nice to meet you! I'll remember that. How can I assist you today?"
	ReplyNameQuestion      = "I'm an AI calling agent, here to help you. May I ask your name?"
	ReplyHelp              = "I'm here to help! I can answer questions, gather information about various topics, or assist with scheduling. What would you like to know?"
	ReplyWeather           = "I'd be happy to help with weather information. What location are you interested in?"
	ReplyScheduling        = "I can help you with scheduling. What date and time would work best for you?"
	ReplyGratitude         = "You're welcome! Is there anything else I can help you with?"
	ReplyFarewell          = "Goodbye! Feel free to reach out anytime you need assistance. Have a great day!"
	ReplyContactInfo       = "Thank you for sharing that information. I've noted it. Is there anything else you'd like to tell me?"
	ReplyFallback          = "I understand. Could you tell me more about that? I'm here to listen and help with any information you need."

	// Voice-friendly layouts for the time/date reply.
	SpokenTimeLayout = "3:04:05 PM"
	SpokenDateLayout = "1/2/2006"
)

// Predicate decides whether a normalized utterance matches a rule.
type Predicate func(normalized string) bool

// Producer builds the reply for a matched turn.
type Producer func(turn Turn) string

// Rule pairs a predicate with a reply producer.
type Rule struct {
	Intent  Intent
	Match   Predicate
	Produce Producer
}

// Rules returns the rule table in Precedence order. The fallback rule is last
// and matches everything.
func Rules() []Rule {
	return []Rule{
		{IntentGreeting, containsAny("hello", "hi"), static(ReplyGreeting)},
		{IntentNameSelfReference, allOf(containsAny("name"), containsAny("my name", "i'm", "i am")), static(ReplyNameSelfReference)},
		{IntentNameQuestion, containsAny("name"), static(ReplyNameQuestion)},
		{IntentHelp, containsAny("help"), static(ReplyHelp)},
		{IntentWeather, containsAny("weather"), static(ReplyWeather)},
		{IntentTimeDate, containsAny("time", "date"), spokenClock},
		{IntentScheduling, containsAny("schedule", "appointment"), static(ReplyScheduling)},
		{IntentGratitude, containsAny("thank"), static(ReplyGratitude)},
		{IntentFarewell, containsAny("bye", "goodbye"), static(ReplyFarewell)},
		{IntentContactInfo, containsAny("email", "phone", "address"), static(ReplyContactInfo)},
		{IntentFallback, always, static(ReplyFallback)},
	}
}

func containsAny(needles ...string) Predicate {
	return func(normalized string) bool {
		for _, n := range needles {
			if strings.Contains(normalized, n) {
				return true
			}
		}
		return false
	}
}

func allOf(preds ...Predicate) Predicate {
	return func(normalized string) bool {
		for _, p := range preds {
			if !p(normalized) {
				return false
			}
		}
		return true
	}
}

func always(string) bool { return true }

func static(reply string) Producer {
	return func(Turn) string { return reply }
}

func spokenClock(turn Turn) string {
	return fmt.Sprintf("The current time is %s and today's date is %s.",
		turn.Now.Format(SpokenTimeLayout), turn.Now.Format(SpokenDateLayout))
}
