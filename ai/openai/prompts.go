package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/juris/ai"
)

const classificationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "jurisdiction": {
      "type": "string",
      "pattern": "^([a-z_]+(/[a-z_]+){0,2})?$"
    },
    "practice_area": {
      "type": "string",
      "pattern": "^([a-z_]+(/[a-z_]+){0,2})?$"
    },
    "intent": {
      "type": "string"
    },
    "depth": {
      "type": "string"
    },
    "temporal": {
      "type": "string"
    },
    "confidence": {
      "type": "integer",
      "minimum": 1,
      "maximum": 10
    }
  },
  "required": ["jurisdiction", "practice_area", "intent", "depth", "temporal", "confidence"],
  "additionalProperties": false
}`

const classificationPromptTemplate = `Analyze the given legal research query and return its structured interpretation as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "jurisdiction" is a path of up to three lowercase segments (country/state/city) joined by "/",
  using underscores for spaces, e.g. "united_states/texas/austin". Use "" when the query names no place.
- "practice_area" is a path of up to three lowercase segments (primary/secondary/specific) joined by "/",
  e.g. "litigation/commercial". Use "" when the query names no area of law.
- Include only levels the query states or clearly implies. Never invent deeper levels.
- "intent" must be exactly one of: %s. Use "discovery" for broad survey questions,
  "deep_dive" for questions about one specific rule or holding, otherwise "general".
- "depth" must be exactly one of: %s. Use "shallow" when the query asks about nationwide or
  state-wide law in general, "deep" when it targets a specific locality, otherwise "auto".
- "temporal" must be exactly one of: %s. Use "recent" for current/latest law,
  "historical" for questions about how the law used to be.
- "confidence" is an integer from 1 (guessing) to 10 (explicit in the query) rating the
  jurisdiction and practice_area placements.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example (explicit place and area):
Input: "expert witness requirements in texas commercial litigation"
Output:
{
  "jurisdiction": "united_states/texas",
  "practice_area": "litigation/commercial",
  "intent": "general",
  "depth": "auto",
  "temporal": "none",
  "confidence": 9
}

Example (recency hint, no place):
Input: "latest non-compete enforceability rulings"
Output:
{
  "jurisdiction": "",
  "practice_area": "employment/non_compete",
  "intent": "discovery",
  "depth": "auto",
  "temporal": "recent",
  "confidence": 7
}

Example (local deep dive):
Input: "how does austin regulate short-term rentals"
Output:
{
  "jurisdiction": "united_states/texas/austin",
  "practice_area": "real_estate/land_use",
  "intent": "deep_dive",
  "depth": "deep",
  "temporal": "none",
  "confidence": 8
}

Example (historical question):
Input: "what did ohio corporate veil piercing doctrine look like before 2000"
Output:
{
  "jurisdiction": "united_states/ohio",
  "practice_area": "corporate",
  "intent": "general",
  "depth": "auto",
  "temporal": "historical",
  "confidence": 8
}

Example (no signal):
Input: "statute of limitations"
Output:
{
  "jurisdiction": "",
  "practice_area": "",
  "intent": "general",
  "depth": "auto",
  "temporal": "none",
  "confidence": 2
}`

// buildSystemPrompt creates the system prompt with the label vocabularies embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(classificationPromptTemplate,
		classificationResponseSchema,
		strings.Join(ai.IntentLabels, ", "),
		strings.Join(ai.DepthLabels, ", "),
		strings.Join(ai.TemporalLabels, ", "))
}
