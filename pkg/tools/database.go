package tools

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/pkg/llm"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DatabaseQuery translates a natural-language question to SQL via the model
// and executes it against the relational store. Only SELECT statements are
// executed; the prompt's read-only instruction alone is not trusted.
type DatabaseQuery struct {
	llm      llm.Provider
	db       *gorm.DB
	sqlModel string // model override for the translation call
	cache    *redis.Client
	logger   *log.Logger
}

var _ Runner = &DatabaseQuery{}

func NewDatabaseQuery(
	provider llm.Provider,
	db *gorm.DB,
	sqlModel string,
	cache *redis.Client,
	logger *log.Logger,
) *DatabaseQuery {
	return &DatabaseQuery{
		llm:      provider,
		db:       db,
		sqlModel: sqlModel,
		cache:    cache,
		logger:   logger,
	}
}

const sqlCacheTTL = 1 * time.Hour

func (t *DatabaseQuery) Run(ctx context.Context, naturalLanguageQuery string) json.RawMessage {
	sqlQuery, err := t.translate(ctx, naturalLanguageQuery)
	if err != nil {
		return errorJSON(fmt.Sprintf("An error occurred: %v", err))
	}

	if !IsSelectStatement(sqlQuery) {
		t.logger.Printf("[DB] rejected non-SELECT statement: %q", sqlQuery)
		return errorJSON("Generated statement is not a read-only SELECT; refusing to execute.")
	}

	rows, err := t.db.WithContext(ctx).Raw(sqlQuery).Rows()
	if err != nil {
		return errorJSON(fmt.Sprintf("An error occurred: %v", err))
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return errorJSON(fmt.Sprintf("An error occurred: %v", err))
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return errorJSON(fmt.Sprintf("An error occurred: %v", err))
		}
		results = append(results, FormatRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return errorJSON(fmt.Sprintf("An error occurred: %v", err))
	}

	if len(results) == 0 {
		b, _ := json.Marshal(map[string]string{
			"result": "Query executed successfully, but no results were found.",
		})
		return b
	}

	b, err := json.Marshal(results)
	if err != nil {
		return errorJSON(fmt.Sprintf("An error occurred: %v", err))
	}
	return b
}

// translate produces one SQL statement for the question, consulting the
// redis cache first. The cache is best-effort: an unreachable redis only
// costs an extra model call.
func (t *DatabaseQuery) translate(ctx context.Context, question string) (string, error) {
	cacheKey := fmt.Sprintf("texttosql:%x", sha256.Sum256([]byte(question)))

	if t.cache != nil {
		if cached, err := t.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			t.logger.Printf("[DB] SQL cache hit for question")
			return cached, nil
		}
	}

	prompt := fmt.Sprintf(constant.TextToSQLPromptTemplate, constant.UsersTableSchema, question)

	opts := []llm.Option{llm.WithTemperature(0)}
	if t.sqlModel != "" {
		opts = append(opts, llm.WithModel(t.sqlModel))
	}
	raw, err := t.llm.Generate(ctx, prompt, opts...)
	if err != nil {
		return "", err
	}

	sqlQuery := StripCodeFence(raw)
	t.logger.Printf("[DB] generated SQL: %s", sqlQuery)

	if t.cache != nil {
		if err := t.cache.Set(ctx, cacheKey, sqlQuery, sqlCacheTTL).Err(); err != nil {
			t.logger.Printf("[DB] SQL cache write failed: %v", err)
		}
	}

	return sqlQuery, nil
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)\\s*```")

// StripCodeFence unwraps a surrounding markdown code fence if present,
// otherwise returns the trimmed input unchanged.
func StripCodeFence(s string) string {
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

var writeKeywordRe = regexp.MustCompile(`\b(INSERT|UPDATE|DELETE|MERGE|DROP|ALTER|CREATE|TRUNCATE|GRANT|REVOKE|COPY)\b`)

// IsSelectStatement reports whether the statement is a single read-only
// SELECT (or a CTE resolving to one). Statement stacking via semicolons is
// rejected, and so is any data-modifying keyword anywhere in the body:
// postgres allows WITH d AS (DELETE ...) SELECT, so the leading keyword
// alone proves nothing.
func IsSelectStatement(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	// Allow one trailing semicolon, nothing after it.
	trimmed = strings.TrimSuffix(trimmed, ";")
	if strings.Contains(trimmed, ";") {
		return false
	}
	upper := strings.ToUpper(strings.TrimSpace(trimmed))
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return false
	}
	return !writeKeywordRe.MatchString(upper)
}

// FormatRow maps one row to column name -> JSON-safe value. Drivers hand
// numerics and text back as []byte; those become strings, as do any other
// values without a native JSON representation.
func FormatRow(columns []string, values []interface{}) map[string]interface{} {
	row := make(map[string]interface{}, len(columns))
	for i, col := range columns {
		row[col] = normalizeValue(values[i])
	}
	return row
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case bool, int64, float64, string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
