package writing

import "math/rand/v2"

// Prompts are the topics offered for a daily writing exercise.
var Prompts = []string{
	"Beschreibe deine letzte Geschäftsverhandlung",
	"Was ist deine Meinung zur aktuellen Wirtschaftslage?",
	"Erzähle von einem spannenden Fußballspiel",
	"Wie würdest du ein neues Projekt im Team vorschlagen?",
	"Beschreibe einen politischen Konflikt aus türkischer Perspektive",
}

// RandomPrompt picks one of Prompts.
func RandomPrompt() string {
	return Prompts[rand.IntN(len(Prompts))]
}
