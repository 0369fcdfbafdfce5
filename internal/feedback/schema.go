package feedback

import "github.com/nikhilbhutani/kidspeak/internal/llm"

func stringList(desc string) *llm.Schema {
	return &llm.Schema{Type: llm.TypeArray, Description: desc, Items: &llm.Schema{Type: llm.TypeString}}
}

func commonProperties() map[string]*llm.Schema {
	return map[string]*llm.Schema{
		"feedback":         {Type: llm.TypeString, Description: "One or two encouraging sentences for the child."},
		"issues":           stringList("Specific sounds that need work."),
		"tips":             stringList("Short practice tips."),
		"detectedLanguage": {Type: llm.TypeString, Description: "ISO 639-1 code of the language spoken."},
		"languageMatch":    {Type: llm.TypeBoolean, Description: "True only if the child spoke the target language."},
	}
}

// AudioSchema is the response shape for scoring a recording.
var AudioSchema = func() *llm.Schema {
	props := commonProperties()
	props["score"] = &llm.Schema{Type: llm.TypeInteger, Description: "Pronunciation score from 0 to 100."}
	props["transcript"] = &llm.Schema{Type: llm.TypeString, Description: "What the child said."}
	return &llm.Schema{
		Type:       llm.TypeObject,
		Properties: props,
		Required:   []string{"score", "transcript", "feedback", "issues", "tips", "detectedLanguage", "languageMatch"},
	}
}()

// TextSchema is the response shape for explaining a transcript.
var TextSchema = &llm.Schema{
	Type:       llm.TypeObject,
	Properties: commonProperties(),
	Required:   []string{"feedback", "issues", "tips", "detectedLanguage", "languageMatch"},
}
