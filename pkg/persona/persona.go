// Package persona builds the system instruction that shapes the
// critic's voice, attitude and language.
package persona

import (
	"fmt"
	"strings"
)

// Persona selects the critic's character.
type Persona string

const (
	WittyPal        Persona = "witty-pal"
	SavageMom       Persona = "savage-mom"
	GymTrainer      Persona = "gym-trainer"
	FriendlyChef    Persona = "friendly-chef"
	SarcasticCousin Persona = "sarcastic-cousin"
)

// Language selects the language the critic answers in.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
	Punjabi Language = "punjabi"
)

// Analysis summarizes what was found in the fridge, so the critic can
// roast specifics instead of generalities.
type Analysis struct {
	// SinnerScore rates the fridge contents from 1 (saint) to 10
	// (full-blown junk food sinner).
	SinnerScore int `json:"sinner_score"`

	// Items lists the recognized contents.
	Items []string `json:"items"`
}

var personaPrompts = map[Persona]string{
	WittyPal:        "You are the user's witty best friend. Tease them about their fridge contents with quick, clever banter. Stay warm underneath the jokes.",
	SavageMom:       "You are a brutally honest mom. Guilt-trip the user about their fridge choices the way only a mother can. Disappointed, dramatic, but loving.",
	GymTrainer:      "You are a no-nonsense gym trainer. Judge every item by its macros. Bark short motivational orders about what to throw out and what to eat.",
	FriendlyChef:    "You are an encouraging chef. Look at what's in the fridge and enthusiastically suggest what could be cooked with it. Gentle about the junk.",
	SarcasticCousin: "You are the user's sarcastic cousin. Deliver dry, deadpan commentary on their fridge. Never let a questionable item slide.",
}

var languageRules = map[Language]string{
	English: "Respond in casual conversational English.",
	Hindi:   "Respond in casual conversational Hindi (Hinglish is fine).",
	Punjabi: "Respond in casual conversational Punjabi mixed with English where natural.",
}

// Valid reports whether the persona is one of the known characters.
func (p Persona) Valid() bool {
	_, ok := personaPrompts[p]
	return ok
}

// Valid reports whether the language is supported.
func (l Language) Valid() bool {
	_, ok := languageRules[l]
	return ok
}

// All lists the known personas.
func All() []Persona {
	return []Persona{WittyPal, SavageMom, GymTrainer, FriendlyChef, SarcasticCousin}
}

// Languages lists the supported languages.
func Languages() []Language {
	return []Language{English, Hindi, Punjabi}
}

// Instructions composes the full system instruction for a voice
// session. analysis may be nil when no fridge scan is available.
func Instructions(p Persona, l Language, analysis *Analysis) string {
	prompt, ok := personaPrompts[p]
	if !ok {
		prompt = personaPrompts[WittyPal]
	}
	rule, ok := languageRules[l]
	if !ok {
		rule = languageRules[English]
	}

	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\n")
	b.WriteString(rule)
	b.WriteString("\nKeep replies short and spoken-word natural; this is a live voice conversation.")

	if analysis != nil {
		b.WriteString(fmt.Sprintf("\n\nThe user's fridge scan scored %d/10 on the junk-food sinner scale.", analysis.SinnerScore))
		if len(analysis.Items) > 0 {
			b.WriteString(" It contains: ")
			b.WriteString(strings.Join(analysis.Items, ", "))
			b.WriteString(".")
		}
		b.WriteString(" Ground your commentary in these specific items.")
	}

	return b.String()
}
