package fallback

import "github.com/cespare/xxhash/v2"

// fillerChoices is the size of every filler list; Index picks within it.
const fillerChoices = 5

// Index selects a filler slot from the prompt. xxhash is stable across processes and
// platforms, so the same prompt always gets the same filler.
func Index(prompt string) int {
	return int(xxhash.Sum64String(prompt) % fillerChoices)
}

var (
	sceneDescriptions = [fillerChoices]string{
		"A dimly lit room with shadows dancing on the walls",
		"A bustling city street filled with the sounds of life",
		"A quiet forest clearing where sunlight filters through leaves",
		"A modern office building with floor-to-ceiling windows",
		"A cozy coffee shop with the aroma of fresh brew",
	}

	dialogueLines = [fillerChoices]string{
		"I never thought it would come to this.",
		"Sometimes the hardest choices are the right ones.",
		"We all have our secrets, don't we?",
		"The past has a way of catching up with us.",
		"What if everything we know is wrong?",
	}

	responseLines = [fillerChoices]string{
		"You don't understand what's at stake.",
		"I wish it were that simple.",
		"Maybe we're asking the wrong questions.",
		"The truth is more complicated than that.",
		"Some things are better left unsaid.",
	}

	actionLines = [fillerChoices]string{
		"Character looks out the window, lost in thought.",
		"A moment of silence hangs heavy in the air.",
		"Character paces back and forth, clearly agitated.",
		"The tension in the room is palpable.",
		"Character takes a deep breath, steeling themselves.",
	}

	characterDescriptions = [fillerChoices]string{
		"A determined individual with a mysterious past",
		"Someone who has seen too much and learned too little",
		"A person caught between duty and desire",
		"An outsider looking for their place in the world",
		"A character with secrets that could change everything",
	}

	plotPoints = [fillerChoices]string{
		"A discovery that changes everything",
		"A betrayal that shatters trust",
		"A choice that defines character",
		"A revelation that explains the past",
		"A decision that shapes the future",
	}

	themes = [fillerChoices]string{
		"Redemption and forgiveness",
		"Truth versus lies",
		"The price of ambition",
		"Love and sacrifice",
		"Identity and self-discovery",
	}

	genres = [fillerChoices]string{
		"Drama", "Thriller", "Romance", "Mystery", "Action",
	}
)

const (
	defaultHeading           = "INT. LOCATION - DAY"
	defaultCharacter         = "CHARACTER NAME"
	defaultResponseCharacter = "ANOTHER CHARACTER"
)
