package generation

import (
	"fmt"
)

// Token limits per request kind
const (
	ReplyMaxTokens = 100
	DMMaxTokens    = 150
)

const replySystemPrompt = `You are %s, a %s.

YOUR PROFILE:
Bio: %s
Writing Style: %s

INSTRUCTIONS:
1. Be helpful, authentic, and concise (under 30 words).
2. Strictly follow the "Writing Style" defined above.
3. Do NOT sound robotic or like a customer support bot.
%s
Return ONLY the reply text.`

const replyUserPrompt = `CONTEXT:
My Post: "%s"
User Comment (%s): "%s"

Write a reply to this comment.`

const dmSystemPrompt = `You are %s. Style: %s`

const dmUserPrompt = `TASK:
Write a direct message (DM) to %s sending them a file they requested.

FILE DETAILS:
Name: %s
URL: %s

INSTRUCTIONS:
1. Keep it super short and friendly (1-2 sentences).
2. Mention that here is the %s they asked for.
3. IMPORTANT: You MUST include the exact URL (%s) at the very end of the message.`

func replyCompletion(req ReplyRequest) completion {
	goal := ""
	if req.CustomInstruction != "" {
		goal = fmt.Sprintf("4. Additional Goal: %s\n", req.CustomInstruction)
	}
	p := req.Persona
	return completion{
		system:    fmt.Sprintf(replySystemPrompt, p.Name, p.Title, p.Bio, p.WritingStyle, goal),
		user:      fmt.Sprintf(replyUserPrompt, req.PostContent, req.CommenterName, req.CommentText),
		maxTokens: ReplyMaxTokens,
	}
}

func directMessageCompletion(req DirectMessageRequest) completion {
	return completion{
		system: fmt.Sprintf(dmSystemPrompt, req.Persona.Name, req.Persona.WritingStyle),
		user: fmt.Sprintf(dmUserPrompt, req.CommenterName, req.AssetName, req.AssetURL,
			req.AssetName, req.AssetURL),
		maxTokens: DMMaxTokens,
	}
}
