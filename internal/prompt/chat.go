package prompt

import (
	"encoding/json"
	"fmt"
	"maturitymap/internal/model"
	"strings"
)

// ChatGreeting opens every follow-up conversation
const ChatGreeting = "Hello! I'm MaturityBot. I have your assessment results and can help you analyze them. What would you like to know?"

// ChatSuggestions are offered before the first question
var ChatSuggestions = []string{
	"Why is my Governance score low?",
	`Explain the "Infrastructure" category.`,
	"Give me more ideas on how to improve training.",
}

// BuildChatPrompt asks the chat model to answer one question about a result
func BuildChatPrompt(result *model.AssessmentResult, question string) (string, error) {
	if result == nil {
		return "", fmt.Errorf("build chat prompt: no assessment result")
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("build chat prompt: %w", err)
	}

	var b strings.Builder
	b.WriteString(`You are "MaturityBot," an expert AI assistant for a healthcare AI readiness assessment tool called MaturityMap.` + "\n")
	b.WriteString("Your personality is helpful, professional, and concise.\n")
	b.WriteString("You have been provided with the user's assessment results as a JSON object.\n")
	b.WriteString("Your task is to answer the user's question based *only* on the provided results data.\n")
	b.WriteString("Do not invent new recommendations or scores.\n")
	b.WriteString("Keep your answers brief and to the point.\n\n")
	b.WriteString("Here are the user's assessment results:\n")
	b.WriteString("```json\n")
	b.Write(data)
	b.WriteString("\n```\n\n")
	b.WriteString("Here is the user's question:\n")
	fmt.Fprintf(&b, "%q\n\n", strings.TrimSpace(question))
	b.WriteString("Please provide a helpful answer.")

	return b.String(), nil
}
