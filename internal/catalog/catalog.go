// Package catalog holds the fixed AI-maturity questionnaire.
package catalog

import "maturitymap/internal/model"

var questions = []model.Question{
	{
		ID:          1,
		Text:        "Have you conducted any AI pilot projects in the last year?",
		Category:    model.CategoryAwareness,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo},
		Elaboration: "A pilot project is a small-scale, preliminary study to evaluate the feasibility, cost, and potential challenges of a full-scale AI project before a major commitment.",
	},
	{
		ID:          2,
		Text:        "Do you have dedicated AI infrastructure (e.g., servers, cloud) in place?",
		Category:    model.CategoryInfra,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo},
		Elaboration: "This includes specialized hardware like GPUs, scalable cloud computing resources (e.g., AWS, GCP, Azure), and data storage solutions designed for large datasets.",
	},
	{
		ID:          3,
		Text:        "Is your healthcare data organized and accessible for AI use?",
		Category:    model.CategoryDataAccess,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo, model.AnswerPartially},
		Elaboration: "Consider if your data is centralized, de-identified where necessary, and available in standardized formats (e.g., FHIR, OMOP) for analytics teams.",
	},
	{
		ID:          4,
		Text:        "Do you have an AI governance policy or team?",
		Category:    model.CategoryGovernance,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo, model.AnswerInDevelopment},
		Elaboration: "This refers to a formal framework or committee responsible for the ethical, legal, and operational oversight of AI initiatives within your organization.",
	},
	{
		ID:          5,
		Text:        "Have staff received AI literacy or technical training?",
		Category:    model.CategoryTraining,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo, model.AnswerPlanned},
		Elaboration: "This includes any formal or informal training, from basic 'What is AI?' workshops for clinicians to advanced technical training for IT staff.",
	},
	{
		ID:          6,
		Text:        "Is AI currently used in daily operations (e.g., diagnostics)?",
		Category:    model.CategoryWorkflow,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo, model.AnswerOccasionally},
		Elaboration: "Consider any AI tool that is part of a regular, established workflow, such as AI-assisted medical imaging analysis or administrative task automation.",
	},
	{
		ID:          7,
		Text:        "Have you scaled AI solutions across multiple departments?",
		Category:    model.CategoryScaling,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo, model.AnswerPartially},
		Elaboration: "'Scaling' means taking a successful AI pilot from one area (e.g., radiology) and successfully deploying it in other departments or for broader use cases.",
	},
	{
		ID:          8,
		Text:        "Are your AI systems compliant with HIPAA or similar regulations?",
		Category:    model.CategoryCompliance,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo, model.AnswerInProgress},
		Elaboration: "This includes ensuring patient data privacy, security of AI models, and auditable trails for AI-driven decisions in clinical settings.",
	},
	{
		ID:          9,
		Text:        "Do you experiment with new AI technologies (e.g., chatbots)?",
		Category:    model.CategoryInnovation,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo, model.AnswerRarely},
		Elaboration: "This refers to exploring emerging AI technologies, even if they don't have an immediate project. Examples include generative AI for note-taking or patient-facing chatbots.",
	},
	{
		ID:          10,
		Text:        "Does your AI improve patient outcomes or partnerships?",
		Category:    model.CategoryEcosystem,
		Options:     []model.AnswerValue{model.AnswerYes, model.AnswerNo, model.AnswerSomewhat},
		Elaboration: "Consider if you have measured the impact of your AI. This could be through improved diagnostic accuracy, reduced wait times, or new collaborations with tech partners.",
	},
}

var categoryDescriptions = map[model.Category]string{
	model.CategoryAwareness:  "Assessing your organization's initial exposure to AI and early-stage experimentation.",
	model.CategoryInfra:      "Evaluating the readiness of your technical backbone, including hardware and cloud capabilities.",
	model.CategoryDataAccess: "Gauging how effectively your organization can access, manage, and utilize data for AI initiatives.",
	model.CategoryGovernance: "Reviewing the policies, ethics, and oversight mechanisms you have in place for AI.",
	model.CategoryTraining:   "Measuring the level of AI literacy and technical skills within your workforce.",
	model.CategoryWorkflow:   "Analyzing how seamlessly AI tools are incorporated into daily clinical and operational workflows.",
	model.CategoryScaling:    "Determining your ability to expand successful AI pilots across multiple departments and functions.",
	model.CategoryCompliance: "Checking adherence to healthcare regulations like HIPAA and ensuring robust data security.",
	model.CategoryInnovation: "Assessing the culture of experimentation and the adoption of cutting-edge AI technologies.",
	model.CategoryEcosystem:  "Evaluating how your AI initiatives affect patient outcomes, partnerships, and community health.",
}

// Questions returns a copy of the questionnaire in presentation order
func Questions() []model.Question {
	out := make([]model.Question, len(questions))
	for i, q := range questions {
		q.Options = append([]model.AnswerValue(nil), q.Options...)
		out[i] = q
	}
	return out
}

// Len is the number of questions a complete answer set must cover
func Len() int {
	return len(questions)
}

// Lookup finds a question by id
func Lookup(id int) (model.Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			q.Options = append([]model.AnswerValue(nil), q.Options...)
			return q, true
		}
	}
	return model.Question{}, false
}

// CategoryDescription returns the one-line explanation of a category
func CategoryDescription(c model.Category) string {
	return categoryDescriptions[c]
}

// CategoryDescriptions returns a copy of all category descriptions
func CategoryDescriptions() map[model.Category]string {
	out := make(map[model.Category]string, len(categoryDescriptions))
	for k, v := range categoryDescriptions {
		out[k] = v
	}
	return out
}
