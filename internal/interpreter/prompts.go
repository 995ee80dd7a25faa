package interpreter

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PromptManager loads prompt templates from a directory, falling back to
// built-in defaults when a file is missing. Templates use {schema},
// {page}, {pending}, {report} and {results} placeholders.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// Get returns the template for a named prompt.
func (pm *PromptManager) Get(name string) string {
	if pm.Directory != "" {
		path := filepath.Join(pm.Directory, name+".md")
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data)
		}
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read prompt file %s: %v", path, err)
		}
	}
	return defaultPrompts[name]
}

// Render substitutes placeholder values into a template.
func Render(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}

var defaultPrompts = map[string]string{
	"entry": `You are Movi, an intelligent transport management assistant with access to a database.

{schema}

CURRENT PAGE CONTEXT:
---------------------
The user is currently on the **{page}** page.

Behave as a context-aware agent:
- If on 'busDashboard': prioritize live trip data, vehicle assignments, and driver status.
- If on 'manageRoute': focus on creating, updating, or analyzing routes and paths.
- If on 'home': provide summaries, daily overviews, or insights.
Adapt your responses and SQL accordingly.

IMPORTANT INSTRUCTIONS:

1. For READ/QUERY operations (How many, What's the status, List, Show):
   - Use execute_sql_query tool with appropriate SELECT statements
   - Analyze results and provide clear answers

2. For WRITE operations (Create, Assign, Remove, Delete, Update, Modify):
   - IDENTIFY the operation type but DO NOT execute yet
   - Respond with: "I understand you want to [action]. Let me check if there are any consequences first."

3. SQL Guidelines:
   - Use proper JOINs when querying across tables
   - For "not assigned": LEFT JOIN Deployments and WHERE vehicle_id IS NULL
   - Use LIKE for partial text matching`,

	"analyze": `Analyze the user's request and determine:

1. Is this a WRITE operation (INSERT, UPDATE, DELETE) that modifies the database?
2. Does this operation need consequence checking?
   - YES if it affects: vehicles/drivers assigned to trips, trips with bookings, active routes
   - NO if it's: reading data (SELECT queries), simple inserts with no dependencies

You MUST respond with ONLY a valid JSON object, no extra text:
{
    "is_write_operation": true,
    "has_consequences": true,
    "sql_query": "UPDATE Deployments SET vehicle_id = NULL WHERE vehicle_id = 'V007'",
    "reasoning": "Removing vehicle from trips with bookings"
}`,

	"consequences": `The user wants to perform this operation:
Pending SQL: {pending}

Your task: Query the database to check for consequences.

{schema}

Check:
1. Will this affect any trips with bookings (booking_status_percentage > 0)?
2. Are there scheduled trips that will be impacted?
3. What are the specific consequences?

Use execute_sql_query to gather information. Be specific about booking percentages and affected trips.`,

	"summarize": `Summarize the consequences of this pending operation for an operations manager.

Pending SQL: {pending}

CONSEQUENCE CHECK RESULTS:
{results}

Be specific about booking percentages, affected trip names, and record counts.`,

	"confirm": `Based on the consequence analysis results below, generate a clear confirmation message.

CONSEQUENCE CHECK RESULTS:
{report}

Format: "I can [action]. However, please be aware: [specific consequences with numbers]. Do you want to proceed? (yes/no)"

Be specific about:
- Exact booking percentages
- Trip names affected
- What will happen (bookings cancelled, trip-sheet will fail, etc.)
- Number of affected records`,

	"respond": `Based on the query results, provide a clear, concise answer to the user's question.

QUERY RESULTS:
{results}

If data was retrieved:
- Summarize the results in natural language
- Include specific numbers and details
- Format lists clearly

Be direct and helpful.`,
}
