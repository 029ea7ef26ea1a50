// Package suggest generates follow-up question suggestions from the latest
// exchange. Topic keywords in the answer or question select fixed candidate
// pools; the final pick of three is randomized without replacement.
package suggest

import (
	"math/rand/v2"
	"strings"
)

// MaxSuggestions is the upper bound on suggestions returned per exchange.
const MaxSuggestions = 3

// topicPools maps a topic keyword to its fixed candidate follow-ups. Keyword
// matching is case-insensitive substring search over both answer and question.
var topicPools = map[string][]string{
	"brahmi": {
		"What is the history of Brahmi script?",
		"How is Brahmi script used today?",
		"What are the characteristics of Brahmi script?",
	},
	"ocr": {
		"How does OCR work?",
		"What are the different types of OCR?",
		"How accurate is OCR technology?",
	},
	"tamil": {
		"What is Tamil OCR?",
		"How is Tamil script recognized?",
		"What are the challenges in Tamil OCR?",
	},
	"script": {
		"What are the different Indian scripts?",
		"How are scripts transcribed?",
		"What is script transliteration?",
	},
}

// genericPool is used when no topic keyword matched.
var genericPool = []string{
	"Can you tell me more about this?",
	"What are the key features?",
	"How does this relate to other topics?",
}

// topicOrder keeps pool construction deterministic for a given set of matches.
var topicOrder = []string{"brahmi", "ocr", "tamil", "script"}

// WelcomeQuestions are the starter prompts attached to the seeded welcome
// message of every new conversation.
func WelcomeQuestions() []string {
	return []string{
		"What is Brahmi script?",
		"How does Tamil OCR work?",
		"What are the different types of scripts?",
	}
}

// Pool returns the full candidate pool for the given answer and question,
// before random selection. Exposed for tests asserting membership.
func Pool(answer, question string) []string {
	lowerAnswer := strings.ToLower(answer)
	lowerQuestion := strings.ToLower(question)

	var pool []string
	for _, topic := range topicOrder {
		if strings.Contains(lowerAnswer, topic) || strings.Contains(lowerQuestion, topic) {
			pool = append(pool, topicPools[topic]...)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, genericPool...)
	}
	return pool
}

// Generate returns up to three follow-up suggestions drawn at random, without
// replacement, from the candidate pool for this exchange.
func Generate(answer, question string) []string {
	pool := Pool(answer, question)

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if len(pool) > MaxSuggestions {
		pool = pool[:MaxSuggestions]
	}
	return pool
}
