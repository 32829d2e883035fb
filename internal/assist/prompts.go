package assist

import (
	"fmt"
	"strings"

	"github.com/EmpoweredVote/Ledger-Backend/internal/taxonomy"
)

const ocrSystemPrompt = `You are an OCR assistant that extracts todo tasks from notebook images.

Instructions:
1. Look for any text that appears to be a task or todo item
2. Common task indicators: checkboxes (☐, □, [ ], etc.), bullet points (•, -, *), numbers, or lines starting with action words
3. Extract each task as a clean, actionable item
4. Remove any checkmarks, bullet points, or formatting symbols
5. Convert handwriting to clean, readable text
6. If a task is crossed out or marked as complete, skip it
7. Only return actual tasks, not headers, dates, or other non-task text

Return the tasks as a JSON array of strings. Each task should be a clean, actionable item.

Example output:
["Buy groceries", "Call dentist", "Finish project report", "Schedule meeting"]

If no tasks are found, return an empty array.`

const ocrUserPrompt = "Please extract all todo tasks from this notebook image. Look for any items that appear to be tasks, whether they have checkboxes, bullet points, or are just listed as things to do."

const expenseTranscribePrompt = "Transcribe the expense in the format: Amount, Description, Category, Subcategory and Date"

const todoTranscribePrompt = "Transcribe the todo task. The user is describing a task they want to add to their todo list."

const todoSystemPrompt = `Extract the todo task from the user's transcription. Return only the task description as a clean, concise string. Remove any prefixes like "add", "create", "new", "todo", "task", "remind me to", "i need to", "i want to". Just return the actual task description. If the user says something like "add buy groceries", return "Buy groceries". If they say "remind me to call mom", return "Call mom". Only return the task text, nothing else.`

// expenseSystemPrompt lists the user's live category and subcategory names
// so the model can only answer with known ones.
func expenseSystemPrompt(cfg taxonomy.Config, merged map[string][]string) string {
	var b strings.Builder
	b.WriteString(`Extract the following fields from the user transcription text and return a JSON object in this format: {"amount": number, "description": string (1-2 words as label), "category": string, "subcategory": string}. `)
	b.WriteString(`If the subcategory is unclear use "Other", but try to understand it from the text first; "Other" is the last resort. Only return the JSON object, nothing else. `)

	names := cfg.CategoryNames()
	fmt.Fprintf(&b, "Category and subcategory must be from these lists: Categories: %s.", strings.Join(names, ", "))
	for _, c := range names {
		subs := merged[c]
		if len(subs) == 0 {
			subs = cfg.Subcategories(c)
		}
		fmt.Fprintf(&b, " Subcategories for %s: %s.", c, strings.Join(subs, ", "))
	}
	return b.String()
}
