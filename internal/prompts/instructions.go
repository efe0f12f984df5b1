package prompts

const mirrorInstructions = `Generate the complete rewritten contract (File 1) that protects the user's interests while keeping non-negotiable terms intact.
Output the full contract text in a clear, professional format suitable for a .docx file.`

const redlineInstructions = `Create a detailed redline comparison (File 2) showing:
- Original text (marked for deletion)
- New text (marked for addition)
- A side-by-side comparison of each changed clause
Format this as a clean, print-ready comparison document.`

const negotiationInstructions = `Create a comprehensive negotiation guide (File 3) that includes:
1. A summary of all changes made
2. Why each change protects the user's interests
3. Which items are negotiable and which are not
4. How to present each change to the other party
5. Talking points and rationale for each change
6. A recommended negotiation order
Format this as a clear, actionable guide.`

const actionItemsSpec = `For each action item found, provide:
- Type: one of expiration, payment_due, audit_due, renewal, notice_period, other
- Description: a brief description of the action item
- Due Date: the specific date in YYYY-MM-DD format
- Days Until Due: the number of days until the deadline
- Priority: one of high, medium, low
- Action Required: what the user needs to do

Number each item with an "ACTION ITEM N:" header. If there are no action items, respond with exactly "No action items found."

Example:
ACTION ITEM 1:
Type: expiration
Description: Contract expires on December 31, 2024
Due Date: 2024-12-31
Days Until Due: 5
Priority: high
Action Required: Review and decide on renewal or termination

ACTION ITEM 2:
Type: payment_due
Description: Quarterly payment due on January 15, 2025
Due Date: 2025-01-15
Days Until Due: 8
Priority: medium
Action Required: Ensure payment is processed before the due date`

var instructions = map[Stage]string{
	StageMirror:      mirrorInstructions,
	StageRedline:     redlineInstructions,
	StageNegotiation: negotiationInstructions,
	StageActionItems: actionItemsSpec,
}

// Instructions returns the stage-specific instructions appended to a shared prompt.
// StageClassify has no appended instructions and returns ErrInvalidStage.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
