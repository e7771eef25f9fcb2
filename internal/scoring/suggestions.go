package scoring

import "strings"

var sectionSuggestions = map[string]string{
	"education":      "Add an Education section listing your degrees, institutions and graduation years.",
	"skills":         "Add a dedicated Skills section that lists the tools and technologies relevant to the role.",
	"experience":     "Add an Experience section describing previous roles with measurable achievements.",
	"projects":       "Add a Projects section highlighting work that demonstrates your skills in practice.",
	"certifications": "Add a Certifications section to show relevant credentials and courses.",
}

const completeResumeSuggestion = "Your resume covers all key sections. Mirror the job description's keywords in your bullet points to optimize it further."

// suggestImprovements emits one suggestion per missing section header, in
// vocabulary order, or a single optimization hint when none is missing.
func suggestImprovements(text string, sections vocabulary) []string {
	var out []string
	for _, s := range sections.terms {
		if strings.Contains(text, s) {
			continue
		}
		out = append(out, sectionSuggestion(s))
	}
	if len(out) == 0 {
		out = append(out, completeResumeSuggestion)
	}
	return out
}

func sectionSuggestion(section string) string {
	if msg, ok := sectionSuggestions[section]; ok {
		return msg
	}
	return "Add a " + section + " section to your resume."
}
