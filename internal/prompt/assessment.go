// Package prompt builds the text and response schema sent to the
// generative-AI service.
package prompt

import (
	"fmt"
	"maturitymap/internal/model"
	"strings"
)

// MissingAnswer stands in for a question with no recorded answer
const MissingAnswer = "(no answer recorded)"

// Schema is a structured-output schema in the generateContent dialect
type Schema map[string]any

// BuildPrompt turns the answers and organization into the assessment request.
// Questions are emitted in catalog order.
func BuildPrompt(questions []model.Question, answers model.AnswerSet, org model.OrganizationContext) string {
	var b strings.Builder

	b.WriteString("As an expert in AI adoption for the healthcare industry, please analyze the following AI maturity assessment answers for a healthcare organization.\n")
	fmt.Fprintf(&b, "The organization identifies as: %s.\n", org.OrgType)
	b.WriteString("The answers are based on a questionnaire. The available answers for each question vary.\n\n")
	b.WriteString("Here are the answers provided by the user:\n\n")

	for _, q := range questions {
		answer := MissingAnswer
		if v, ok := answers[q.ID]; ok {
			answer = string(v)
		}
		fmt.Fprintf(&b, "- Category: %s\n", q.Category)
		fmt.Fprintf(&b, "  Question: %s\n", q.Text)
		fmt.Fprintf(&b, "  Answer: %s\n\n", answer)
	}

	b.WriteString("Based on these answers, provide a comprehensive AI maturity assessment. The output must be a JSON object that strictly adheres to the provided schema.\n")
	fmt.Fprintf(&b, "Calculate a numerical score (0-100) for each of the %d categories and an overall maturity score (0-100).\n", len(model.Categories()))
	b.WriteString("A score of 100 represents the highest level of maturity.\n")
	b.WriteString("Provide a brief, insightful summary for the overall score and for each category score.\n")
	b.WriteString("Finally, provide a list of 3-5 actionable recommendations prioritized by High, Medium, or Low, to help the healthcare organization advance its AI maturity. The recommendations should be specific and practical for a healthcare context.")

	return b.String()
}

// AssessmentSchema is the response shape requested for an assessment
func AssessmentSchema() Schema {
	categories := make([]string, 0, 10)
	for _, c := range model.Categories() {
		categories = append(categories, string(c))
	}

	return Schema{
		"type": "OBJECT",
		"properties": map[string]any{
			"overallScore": map[string]any{
				"type":        "NUMBER",
				"description": "Overall score from 0 to 100.",
			},
			"summary": map[string]any{
				"type":        "STRING",
				"description": "A brief summary of the overall assessment.",
			},
			"categoryScores": map[string]any{
				"type":        "ARRAY",
				"description": "An array of scores for each category.",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"category": map[string]any{
							"type":        "STRING",
							"enum":        categories,
							"description": "The AI maturity category.",
						},
						"score": map[string]any{
							"type":        "NUMBER",
							"description": "The score for this category from 0 to 100.",
						},
						"summary": map[string]any{
							"type":        "STRING",
							"description": "A brief summary for this category's score.",
						},
					},
					"required": []string{"category", "score", "summary"},
				},
			},
			"recommendations": map[string]any{
				"type":        "ARRAY",
				"description": "A list of actionable recommendations.",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"priority": map[string]any{
							"type":        "STRING",
							"enum":        []string{string(model.PriorityHigh), string(model.PriorityMedium), string(model.PriorityLow)},
							"description": "Priority of the recommendation.",
						},
						"description": map[string]any{
							"type":        "STRING",
							"description": "The detailed recommendation text.",
						},
					},
					"required": []string{"priority", "description"},
				},
			},
		},
		"required": []string{"overallScore", "summary", "categoryScores", "recommendations"},
	}
}
