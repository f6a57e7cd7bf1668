package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/treasury/internal/bounty"
	"github.com/roach88/treasury/internal/budget"
	"github.com/roach88/treasury/internal/runtime"
	"github.com/roach88/treasury/internal/store"
	"github.com/roach88/treasury/internal/types"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Trace for debugging context; nil for state assertions
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nCalls:\n")
		for _, ev := range e.Trace {
			if ev.Type != TraceBlock {
				fmt.Fprintf(&buf, "  [%d.%d] %s %s -> %s\n", ev.Block, ev.Index, ev.Origin, ev.Method, ev.Result)
			}
		}
	}
	return buf.String()
}

// assertEventEmitted checks that some call emitted the event with a payload
// containing assertion.Payload.
func assertEventEmitted(trace []TraceEvent, events []TraceEntry, assertion Assertion) error {
	want, err := normalize(assertion.Payload)
	if err != nil {
		return fmt.Errorf("event_emitted payload: %w", err)
	}
	for _, ev := range events {
		if ev.Name != assertion.Event {
			continue
		}
		got, err := normalize(ev.Payload)
		if err != nil {
			return err
		}
		if matchSubset(got, want) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertEventEmitted,
		Expected: fmt.Sprintf("event %s with payload %v", assertion.Event, assertion.Payload),
		Actual:   "not emitted",
		Trace:    trace,
	}
}

// assertEventOrder checks that the events appear in the specified order.
// Events don't need to be consecutive.
func assertEventOrder(trace []TraceEvent, events []TraceEntry, assertion Assertion) error {
	pos := 0
	for _, want := range assertion.Events {
		found := false
		for pos < len(events) {
			name := events[pos].Name
			pos++
			if name == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("events in order: %v", assertion.Events),
				Actual:   fmt.Sprintf("%s missing or out of order", want),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertEventCount checks that the event was emitted exactly Count times.
func assertEventCount(trace []TraceEvent, events []TraceEntry, assertion Assertion) error {
	count := 0
	for _, ev := range events {
		if ev.Name == assertion.Event {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Event),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertView compares a runtime view, encoded as JSON, with Expect.
func assertView(kind, subject string, view any, found bool, assertion Assertion) error {
	if !found {
		if exists, ok := assertion.Expect["exists"]; ok && exists == false {
			return nil
		}
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("%s to exist", subject),
			Actual:   "not found",
		}
	}

	got, err := normalize(view)
	if err != nil {
		return err
	}
	fields, _ := got.(map[string]any)
	for key, want := range assertion.Expect {
		if key == "exists" {
			if want != true {
				return &AssertionError{Type: kind, Expected: fmt.Sprintf("%s not to exist", subject), Actual: "found"}
			}
			continue
		}
		actual, ok := fields[key]
		if !ok {
			return &AssertionError{
				Type:     kind,
				Expected: fmt.Sprintf("%s field %q to exist", subject, key),
				Actual:   fmt.Sprintf("fields: %v", sortedKeys(fields)),
			}
		}
		wantN, err := normalize(want)
		if err != nil {
			return err
		}
		if !matchSubset(actual, wantN) {
			return &AssertionError{
				Type:     kind,
				Expected: fmt.Sprintf("%s %s = %v", subject, key, want),
				Actual:   fmt.Sprintf("%s %s = %v", subject, key, actual),
			}
		}
	}
	return nil
}

func assertAccount(rt *runtime.Runtime, a Assertion) error {
	acct := rt.Account(types.AccountID(a.Account))
	return assertView(AssertAccount, "account "+a.Account, acct, true, a)
}

func assertBudget(rt *runtime.Runtime, a Assertion) error {
	v, ok := rt.Budget(budget.BudgetType(a.Budget))
	return assertView(AssertBudget, "budget "+a.Budget, v, ok, a)
}

func assertRecipient(rt *runtime.Runtime, a Assertion) error {
	v, ok := rt.Recipient(budget.BudgetType(a.Budget), types.MemberID(*a.User))
	return assertView(AssertRecipient, fmt.Sprintf("recipient %d of %s", *a.User, a.Budget), v, ok, a)
}

func assertBounty(rt *runtime.Runtime, a Assertion) error {
	v, ok := rt.Bounty(bounty.BountyID(*a.Bounty))
	if len(a.Expect) == 0 {
		a.Expect = map[string]any{"exists": true}
	}
	return assertView(AssertBounty, fmt.Sprintf("bounty %d", *a.Bounty), v, ok, a)
}

// assertFinalState checks that exactly one row of a log table matches Where
// and carries the Expect values. Queries are parameterized; identifiers are
// validated against validIdentifier.
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := st.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	if !rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "row not found",
		}
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	if rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actualRow := make(map[string]any, len(columns))
	for i, col := range columns {
		actualRow[col] = values[i]
	}

	for _, key := range sortedKeys(assertion.Expect) {
		expected := assertion.Expect[key]
		actual, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, columns),
			}
		}
		if !stateValuesEqual(expected, actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expected, expected),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actual, actual),
			}
		}
	}
	return nil
}

// buildWhereClause constructs a parameterized WHERE clause. Keys are sorted
// for determinism.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := sortedKeys(where)
	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, where[key])
	}
	return strings.Join(clauses, " AND "), args, nil
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	parts := make([]string, 0, len(where))
	for _, k := range sortedKeys(where) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// stateValuesEqual compares a YAML value with a column value. SQLite
// returns integers as int64 and text as string or []byte.
func stateValuesEqual(expected, actual any) bool {
	if b, ok := actual.([]byte); ok {
		actual = string(b)
	}
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	switch exp := expected.(type) {
	case string:
		s, ok := actual.(string)
		return ok && exp == s
	case int:
		n, ok := actual.(int64)
		return ok && int64(exp) == n
	case int64:
		n, ok := actual.(int64)
		return ok && exp == n
	case uint64:
		n, ok := actual.(int64)
		return ok && n >= 0 && exp == uint64(n)
	case bool:
		if b, ok := actual.(bool); ok {
			return exp == b
		}
		n, ok := actual.(int64)
		return ok && exp == (n != 0)
	}
	return reflect.DeepEqual(expected, actual)
}

// normalize re-encodes v through JSON so YAML values, IR values and runtime
// views compare alike: numbers become json.Number strings.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// matchSubset reports whether actual contains expected: objects match on
// the expected keys, everything else must be equal.
func matchSubset(actual, expected any) bool {
	switch exp := expected.(type) {
	case nil:
		return true
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, v := range exp {
			av, exists := act[k]
			if !exists || !matchSubset(av, v) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(actual, expected)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AssertionContext provides what assertions read besides the trace.
type AssertionContext struct {
	Runtime *runtime.Runtime
	Store   *store.Store
	Ctx     context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	events := result.events()

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertEventEmitted:
			err = assertEventEmitted(result.Trace, events, assertion)
		case AssertEventOrder:
			err = assertEventOrder(result.Trace, events, assertion)
		case AssertEventCount:
			err = assertEventCount(result.Trace, events, assertion)
		case AssertAccount, AssertBudget, AssertRecipient, AssertBounty:
			if actx == nil || actx.Runtime == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a runtime", i, assertion.Type)
				break
			}
			switch assertion.Type {
			case AssertAccount:
				err = assertAccount(actx.Runtime, assertion)
			case AssertBudget:
				err = assertBudget(actx.Runtime, assertion)
			case AssertRecipient:
				err = assertRecipient(actx.Runtime, assertion)
			default:
				err = assertBounty(actx.Runtime, assertion)
			}
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires database context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
