package translate

import (
	"fmt"
	"strings"

	"github.com/lucidata/lucidata/internal/schema"
)

const promptTemplate = `
Given the following PostgreSQL database schema:

%s

Translate this natural language question into a valid SQL query:
"%s"

Return the answer in the following format:
SQL: <the SQL query>
EXPLANATION: <brief explanation of how the query works>
CONFIDENCE: <a number from 0 to 1 indicating confidence>

Make sure the SQL is valid PostgreSQL syntax, contains no syntax errors, and would run correctly against the described database.
`

// BuildPrompt renders the prompt sent to the model. The question passes
// through verbatim; the three labeled output fields are the contract Parse
// depends on. Pure function.
func BuildPrompt(question string, desc schema.Descriptor) string {
	return fmt.Sprintf(promptTemplate, formatSchema(desc), question)
}

func formatSchema(desc schema.Descriptor) string {
	if len(desc) == 0 {
		return "No schema available."
	}

	lines := make([]string, 0, len(desc))
	for _, table := range desc {
		columns := make([]string, 0, len(table.Columns))
		for _, column := range table.Columns {
			columns = append(columns, column.Name+" "+column.Type)
		}
		lines = append(lines, fmt.Sprintf("Table: %s (%s)", table.Name, strings.Join(columns, ", ")))
	}
	return strings.Join(lines, "\n")
}
