package models

// Canned texts used whenever the generation backend is unavailable or returns
// something unusable. The interview must keep flowing on these alone.

// DefaultBackgroundQuestion opens the interview when the background-question
// generator cannot run.
const DefaultBackgroundQuestion = "Welcome to this interview! To start, please briefly introduce your background and how it relates to today's topic."

// DefaultRatingMetrics is the fallback metric list when outline analysis
// fails or produces nothing usable.
var DefaultRatingMetrics = []string{
	"Completeness of answers",
	"Depth of reflection",
	"Logical clarity",
	"Personal insight",
	"Expressiveness",
}

// DefaultProbingQuestions is the pool the deeper-question generator picks
// from when it cannot generate a tailored follow-up.
var DefaultProbingQuestions = []string{
	"Could you explain the point you just made in more detail?",
	"What do you think is the deeper cause behind this?",
	"How has this experience affected you?",
	"How did you arrive at that conclusion?",
	"In the long run, what changes do you expect this to bring?",
}

// Fallback connective phrases for moving between key questions.
const (
	DefaultTransition    = "Alright, let's move on to the next topic."
	DefaultClosingRemark = "Thank you for sharing. Let's continue to the next part."
)

// DefaultExplanation fills the explanations vector when the backend output
// cannot be repaired into a usable one.
const DefaultExplanation = "The interview did not contain enough information for a reliable assessment of this metric."

// DefaultLowScore expresses "insufficient signal" in a points vector. A low
// score is preferred over a fabricated high one.
const DefaultLowScore = 3

// Follow-up ceilings per question. The background phase gets a shorter leash.
const (
	BackgroundFollowUpCap = 2
	QuestionFollowUpCap   = 4
)

// DeflectionPhrases mark an answer as off-topic in the heuristic fallback.
var DeflectionPhrases = []string{
	"don't know",
	"no idea",
	"not sure",
	"change the subject",
	"by the way",
	"anyway,",
	"speaking of which",
}
