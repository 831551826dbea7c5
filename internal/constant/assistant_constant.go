package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// History wire types, kept compatible with the previous frontend contract.
	HistoryTypeHuman = "human"
	HistoryTypeAI    = "ai"
)

// SystemPolicyPrompt governs tool selection. It is the only configuration
// behind routing: nothing in code double-checks that the model honored it.
const SystemPolicyPrompt = `You are a powerful and helpful AI assistant. Your primary goal is to answer the user's question directly using your own knowledge.

However, you have access to specialized tools for specific types of queries. You should only use these tools when the user's question is clearly about one of the following topics:

1.  **` + "`search_documents`" + `**: Use this tool ONLY for questions about:
    - Autonomous vehicles, self-driving cars, and automotive technology
    - Renewable energy systems, sustainable energy, and green technology
    - AI and cybersecurity, artificial intelligence security risks and rewards
    - Plant care, gardening, house plant propagation and growing
    - Technical engineering topics and related documentation

2.  **` + "`query_database`" + `**: Use this tool ONLY for questions about specific users, their account details, balances, or status.

For all other questions (e.g., greetings, jokes, general knowledge), answer directly without using any tools.

**Crucially, when you do use a tool, you MUST base your final answer exclusively on the information returned by that tool.** Do not add any information from your own knowledge. If the context from the tool is not sufficient, state that the answer could not be found in the provided documents or database.

You have access to the conversation history, so you can refer to previous messages and maintain context across the conversation.`

// UsersTableSchema is the literal relational schema handed to the
// text-to-SQL model. Must stay in sync with internal/model/user_model.go.
const UsersTableSchema = `CREATE TABLE users (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT UNIQUE NOT NULL,
    balance NUMERIC(10, 2) DEFAULT 0.00,
    active BOOLEAN DEFAULT TRUE
);`

// TextToSQLPromptTemplate expects the schema and the user question, in order.
// The read-only instruction here is advisory; the hard guarantee is the
// statement check in pkg/tools before execution.
const TextToSQLPromptTemplate = `Based on the following database schema, convert the user's question into a valid PostgreSQL query.
IMPORTANT: You are a read-only assistant. You must only generate SELECT queries. Do not generate any statements that modify the database, like INSERT, UPDATE, DELETE, DROP, or ALTER.
Only output the SQL query and nothing else.

Schema:
%s

User Question: "%s"

SQL Query:`

// SynthesisDocumentsTemplate expects the user question and the raw JSON
// returned by the document search tool.
const SynthesisDocumentsTemplate = `Answer the user's question based on the following document excerpts.
Keep your answer concise and directly reference the source documents.
If the excerpts are not sufficient to answer, say that the answer could not be found in the provided documents.

User Question: %s

Documents:
%s`

// SynthesisDatabaseTemplate expects the user question and the raw JSON
// returned by the database query tool.
const SynthesisDatabaseTemplate = `Answer the user's question based on the following database query results.
Format the answer clearly. If the result is a list, present it as a list.
If the results are not sufficient to answer, say that the answer could not be found in the database.

User Question: %s

Database Result:
%s`
