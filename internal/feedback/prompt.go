package feedback

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a helpful and encouraging quiz assistant. Your goal is to provide feedback on a user's answer to a puzzle or riddle.`

func buildUserMessage(in Input) string {
	var b strings.Builder

	b.WriteString(`Analyze the user's answer and compare it to the expert's answer. Determine if the user's answer is correct. The user's answer doesn't have to be an exact match to be considered correct, as long as it captures the main idea.

Then, provide a short, single-sentence feedback message.
- If the answer is correct, be encouraging (e.g., "Great job!", "That's exactly right!", "You nailed it!").
- If the answer is incorrect, be gentle and provide a subtle hint without giving away the answer (e.g., "Not quite, think about...", "You're on the right track, but consider...").
`)
	fmt.Fprintf(&b, "\nProblem:\n%s\n", in.Problem)
	fmt.Fprintf(&b, "\nExpert Answer:\n%s\n", in.ExpertAnswer)
	fmt.Fprintf(&b, "\nUser's Answer:\n%s\n", in.UserAnswer)

	return b.String()
}
