package generation

import (
	"fmt"

	domgen "github.com/kailas-cloud/scriptforge/internal/domain/generation"
)

const sceneSystemPrompt = `You are a professional screenwriter. Your job is to intelligently structure and combine content from training data to create compelling scenes.

Available Training Content:
%s

Your Role:
- Use the training data above as your PRIMARY source of actual content
- Intelligently combine, adapt, and structure this content
- Maintain the style and tone of the training data
- Create coherent, engaging scenes
- Only generate new content if absolutely necessary to fill gaps

Instructions:
- Extract dialogue, descriptions, and action from training data
- Combine them intelligently based on the user's prompt
- Maintain screenplay format and structure
- Keep the authentic voice from the training data`

const outlineSystemPrompt = `You are a professional screenwriter. Your job is to intelligently structure and combine content from training data to create compelling movie outlines.

Available Training Content:
%s

Your Role:
- Use the training data above as your PRIMARY source of actual content
- Intelligently combine, adapt, and structure this content into a 3-act outline
- Maintain the style and tone of the training data
- Create coherent, engaging plot structures
- Only generate new content if absolutely necessary to fill gaps

Instructions:
- Extract plot points, character arcs, themes, and scenes from training data
- Combine them intelligently based on the user's prompt
- Structure into a compelling 3-act outline
- Keep the authentic voice from the training data`

const (
	sceneUserPrompt = "Create a compelling script scene about: %s\n\n" +
		"Use the training data above as your primary content source. Structure it intelligently into a complete scene."
	outlineUserPrompt = "Create a compelling 3-act movie outline about: %s\n\n" +
		"Use the training data above as your primary content source. Structure it intelligently into a complete outline."
)

// buildMessages renders the system and user messages for an output type.
func buildMessages(outputType domgen.OutputType, prompt, excerpts string) (system, user string) {
	if outputType == domgen.Outline {
		return fmt.Sprintf(outlineSystemPrompt, excerpts), fmt.Sprintf(outlineUserPrompt, prompt)
	}
	return fmt.Sprintf(sceneSystemPrompt, excerpts), fmt.Sprintf(sceneUserPrompt, prompt)
}
