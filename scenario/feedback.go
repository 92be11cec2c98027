package scenario

const (
	CategoryExcellent = "excellent"
	CategoryGood      = "good"
	CategoryFair      = "fair"
	CategoryPoor      = "poor"
)

type band struct {
	min      int
	category string
	feedback string
}

// Ordered from the highest threshold down.
var bands = []band{
	{90, CategoryExcellent, "Excellent work. Your decisions were lawful, proportionate and safe throughout the scenario."},
	{70, CategoryGood, "Good job. Most of your decisions were sound; review the scenes you missed to close the gaps."},
	{50, CategoryFair, "Fair result. Several decisions need work; go through the explanations and try the scenario again."},
	{0, CategoryPoor, "This scenario needs more practice. Study the relevant laws and procedures before your next attempt."},
}

// Categorize turns an achieved score into a whole percentage (rounded down),
// a category and feedback text.
func Categorize(score, maxScore int) (int, string, string) {
	percentage := 0
	if maxScore > 0 {
		percentage = score * 100 / maxScore
	}
	for _, b := range bands {
		if percentage >= b.min {
			return percentage, b.category, b.feedback
		}
	}
	last := bands[len(bands)-1]
	return percentage, last.category, last.feedback
}
