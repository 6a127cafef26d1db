package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascheman/oc-templates2helm/internal/diag"
)

func strptr(s string) *string { return &s }

func TestDeclareAndResolve(t *testing.T) {
	r := New(diag.Discard())
	r.Declare("DB_HOST", "database host", strptr("postgres.local"))

	v := r.Resolve("DB_HOST")
	assert.Equal(t, "DB_HOST", v.Name)
	assert.Equal(t, "database host", v.Description)
	assert.Equal(t, "postgres.local", v.Value)
	assert.True(t, v.HasValue)
	assert.Empty(t, v.Replacement)
}

func TestDeclareWithoutValue(t *testing.T) {
	r := New(diag.Discard())
	r.Declare("DB_PASSWORD", "", nil)

	v := r.Resolve("DB_PASSWORD")
	assert.False(t, v.HasValue)
	assert.Empty(t, v.Value)
}

func TestDeclareEmptyValueIsSet(t *testing.T) {
	r := New(diag.Discard())
	r.Declare("SUFFIX", "", strptr(""))

	v := r.Resolve("SUFFIX")
	assert.True(t, v.HasValue)
	assert.Empty(t, v.Value)
}

func TestDeclareOverwrites(t *testing.T) {
	r := New(diag.Discard())
	r.Declare("DB_HOST", "first", strptr("one"))
	r.Declare("DB_HOST", "second", nil)

	v := r.Resolve("DB_HOST")
	assert.Equal(t, "second", v.Description)
	assert.False(t, v.HasValue)
	assert.Equal(t, 1, r.Len())
}

func TestResolveAutoCreatesUndeclared(t *testing.T) {
	logger, records := diag.NewCollector()
	r := New(logger)

	v := r.Resolve("UNDECLARED")
	assert.Equal(t, "UNDECLARED", v.Name)
	assert.False(t, v.HasValue)

	warnings := records.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "not declared")

	r.Resolve("UNDECLARED")
	assert.Len(t, records.Warnings(), 1, "second resolve must not warn again")
}

func TestReplacementNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "NAME", "name"},
		{"two words", "DB_HOST", "dbHost"},
		{"three words", "A_B_C", "aBC"},
		{"digit after underscore", "PORT_8080", "port8080"},
		{"trailing underscore kept", "TRAILING_", "trailing_"},
		{"double underscore keeps one", "DOUBLE__X", "double_X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(diag.Discard())
			r.Declare(tt.in, "", nil)
			assert.Equal(t, tt.want, r.EnsureReplacementName(tt.in))
		})
	}
}

func TestEnsureReplacementNameIdempotent(t *testing.T) {
	r := New(diag.Discard())
	r.Declare("DB_HOST", "", nil)

	first := r.EnsureReplacementName("DB_HOST")
	second := r.EnsureReplacementName("DB_HOST")
	assert.Equal(t, "dbHost", first)
	assert.Equal(t, first, second)
	assert.Equal(t, first, r.Resolve("DB_HOST").Replacement)
}

func TestEnsureReplacementNameAutoCreates(t *testing.T) {
	logger, records := diag.NewCollector()
	r := New(logger)

	assert.Equal(t, "newVar", r.EnsureReplacementName("NEW_VAR"))
	assert.Len(t, records.Warnings(), 1)
}

func TestApplyOverrides(t *testing.T) {
	logger, records := diag.NewCollector()
	r := New(logger)
	r.Declare("DB_HOST", "", strptr("from-template"))
	r.Declare("DB_PASSWORD", "", nil)

	r.ApplyOverrides(map[string]string{
		"DB_HOST":      "from-override",
		"DB_PASSWORD":  "secret",
		"NOT_DECLARED": "ignored",
	})

	assert.Equal(t, "from-template", r.Resolve("DB_HOST").Value, "declared defaults win")
	v := r.Resolve("DB_PASSWORD")
	assert.True(t, v.HasValue)
	assert.Equal(t, "secret", v.Value)

	warnings := records.Warnings()
	require.Len(t, warnings, 1, "only the displaced override warns")
	assert.Contains(t, warnings[0], "override ignored")
	assert.Equal(t, 2, r.Len(), "unknown override keys create no variables")
}

func TestApplyOverridesFirstSeenWins(t *testing.T) {
	logger, records := diag.NewCollector()
	r := New(logger)
	r.Declare("DB_PASSWORD", "", nil)

	r.ApplyOverrides(map[string]string{"DB_PASSWORD": "from-specific"})
	r.ApplyOverrides(map[string]string{"DB_PASSWORD": "from-common"})

	assert.Equal(t, "from-specific", r.Resolve("DB_PASSWORD").Value)
	assert.Len(t, records.Warnings(), 1)
}

func TestNamesAndAllSorted(t *testing.T) {
	r := New(diag.Discard())
	r.Declare("ZULU", "", nil)
	r.Declare("ALPHA", "", nil)
	r.Declare("MIKE", "", nil)

	assert.Equal(t, []string{"ALPHA", "MIKE", "ZULU"}, r.Names())

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "ALPHA", all[0].Name)
	assert.Equal(t, "ZULU", all[2].Name)
}

func TestResolveReturnsCopy(t *testing.T) {
	r := New(diag.Discard())
	r.Declare("DB_HOST", "", strptr("original"))

	v := r.Resolve("DB_HOST")
	v.Value = "mutated"
	assert.Equal(t, "original", r.Resolve("DB_HOST").Value)
}
